// Package terminal holds helpers shared by terminal implementations.
package terminal

import (
	"context"
	"fmt"
	"sync"
)

// SymbolChecker reports whether a symbol is known to (and selectable on)
// the connected terminal.
type SymbolChecker interface {
	SymbolExists(ctx context.Context, symbol string) (bool, error)
}

// Resolver maps a canonical symbol to whatever name the connected broker
// actually lists it under. Brokers suffix or rename instruments
// (XAUUSD, XAUUSDm, GOLD, ...), so resolution walks a prioritized
// candidate list and takes the first match. Results are cached per
// resolver, which is scoped to one terminal session.
type Resolver struct {
	checker SymbolChecker

	mu    sync.Mutex
	cache map[string]string
}

func NewResolver(checker SymbolChecker) *Resolver {
	return &Resolver{
		checker: checker,
		cache:   make(map[string]string),
	}
}

// Resolve returns the first candidate the terminal recognizes. The
// candidate list must start with the canonical name, which keys the
// cache.
func (r *Resolver) Resolve(ctx context.Context, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", fmt.Errorf("no symbol candidates given")
	}
	canonical := candidates[0]

	r.mu.Lock()
	if cached, ok := r.cache[canonical]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	for _, candidate := range candidates {
		ok, err := r.checker.SymbolExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check symbol %s: %w", candidate, err)
		}
		if ok {
			r.mu.Lock()
			r.cache[canonical] = candidate
			r.mu.Unlock()
			return candidate, nil
		}
	}
	return "", fmt.Errorf("none of %v resolve on this terminal", candidates)
}
