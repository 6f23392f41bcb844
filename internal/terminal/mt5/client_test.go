package mt5

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func gatewayStub(t *testing.T, handlers map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
}

func TestHistoryDealsShiftsServerTime(t *testing.T) {
	srv := gatewayStub(t, map[string]any{
		"/history_deals": []map[string]any{
			{"position_id": 1, "entry": 0, "type": 0, "time": 1748770800, "symbol": "XAUUSD", "volume": 0.01, "price": 2400.0},
		},
	})
	defer srv.Close()

	c := New(Params{BaseURL: srv.URL, UTCOffset: 10800})
	deals, err := c.HistoryDeals(context.Background(), time.Unix(0, 0), time.Now())
	if err != nil {
		t.Fatalf("HistoryDeals: %v", err)
	}
	if len(deals) != 1 {
		t.Fatalf("got %d deals", len(deals))
	}
	if deals[0].Time != 1748770800-10800 {
		t.Errorf("Time = %d, want server time shifted back by 10800s", deals[0].Time)
	}
}

func TestLoginRejected(t *testing.T) {
	srv := gatewayStub(t, map[string]any{
		"/login": map[string]any{"authorized": false, "error": "invalid password"},
	})
	defer srv.Close()

	c := New(Params{BaseURL: srv.URL})
	err := c.Login(context.Background(), 12345, "bad", "Broker-Demo")
	if err == nil {
		t.Fatal("expected error for rejected login")
	}
}

func TestPointSizeUnknownSymbol(t *testing.T) {
	srv := gatewayStub(t, map[string]any{
		"/symbol_info": map[string]any{"found": false},
	})
	defer srv.Close()

	c := New(Params{BaseURL: srv.URL})
	if _, err := c.PointSize(context.Background(), "NOPE"); err == nil {
		t.Fatal("expected error for unknown symbol")
	}
}

func TestSymbolExists(t *testing.T) {
	srv := gatewayStub(t, map[string]any{
		"/symbol_info": map[string]any{"found": true, "visible": true, "point": 0.01},
	})
	defer srv.Close()

	c := New(Params{BaseURL: srv.URL})
	ok, err := c.SymbolExists(context.Background(), "XAUUSD")
	if err != nil || !ok {
		t.Fatalf("SymbolExists = %v, %v", ok, err)
	}

	point, err := c.PointSize(context.Background(), "XAUUSD")
	if err != nil || point != 0.01 {
		t.Fatalf("PointSize = %v, %v", point, err)
	}
}

func TestGatewayErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "terminal not initialized", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(Params{BaseURL: srv.URL})
	if _, err := c.AccountInfo(context.Background()); err == nil {
		t.Fatal("expected error on 503 from gateway")
	}
}
