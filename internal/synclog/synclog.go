package synclog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"mt5-bridge/internal/types"
)

var mu sync.Mutex

type Entry struct {
	Time         string         `json:"time"`
	Nickname     string         `json:"nickname"`
	AccountID    int64          `json:"account_id"`
	Deals        int            `json:"deals"`
	ClosedTrades int            `json:"closed_trades"`
	Profit       float64        `json:"profit"`
	WinRate      float64        `json:"win_rate"`
	Error        string         `json:"error,omitempty"`
	Extra        map[string]any `json:"extra,omitempty"`
}

func logDir() string {
	if v := os.Getenv("BRIDGE_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func dailyFilepath(t time.Time) string {
	return filepath.Join(logDir(), t.UTC().Format("2006-01-02")+".txt")
}

// Append writes one JSON line to today's journal file.
func Append(e Entry) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().UTC()
	e.Time = now.Format("2006-01-02 15:04:05")
	p := dailyFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(e)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// Record journals one sync result.
func Record(res *types.SyncResult) error {
	return Append(Entry{
		Nickname:     res.Nickname,
		AccountID:    res.AccountID,
		Deals:        res.DealCount,
		ClosedTrades: res.ClosedTrades,
		Profit:       res.Record.TotalProfit,
		WinRate:      res.Record.WinRate,
	})
}

// Failure journals a failed sync attempt.
func Failure(p types.Participant, err error) error {
	return Append(Entry{
		Nickname:  p.Nickname,
		AccountID: p.AccountID,
		Error:     err.Error(),
	})
}

// CompressOlder gzips journal files older than retentionDays and removes
// the originals. Zero or negative retention disables compression.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	root := logDir()
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil {
			return nil
		}
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		if !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		if _, e2 := os.Stat(gz); e2 == nil {
			// Already compressed in a previous pass.
			_ = os.Remove(p)
			return nil
		}
		if err := compressFile(p, gz); err != nil {
			return nil
		}
		_ = os.Remove(p)
		return nil
	})
}

func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := gzip.NewWriter(out)
	if _, err := io.Copy(zw, in); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
