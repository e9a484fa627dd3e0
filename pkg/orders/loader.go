// Package orders loads and renders the per-user order list.
package orders

import (
	"context"
	"sync"

	"github.com/interlux/shopchat/pkg/logger"
	"github.com/interlux/shopchat/pkg/transport"
)

// Fetcher is the part of the transport the loader needs.
type Fetcher interface {
	FetchOrders(ctx context.Context, userID string) ([]transport.Order, error)
}

// Loader keeps the last non-empty order list. Failed or empty fetches leave
// it untouched.
type Loader struct {
	fetcher Fetcher
	current []transport.Order
	mu      sync.RWMutex
}

func NewLoader(fetcher Fetcher) *Loader {
	return &Loader{fetcher: fetcher}
}

// Load fetches the orders for userID. It reports whether the current list
// was replaced; errors are logged, never returned.
func (l *Loader) Load(ctx context.Context, userID string) ([]transport.Order, bool) {
	if userID == "" {
		return l.Current(), false
	}

	list, err := l.fetcher.FetchOrders(ctx, userID)
	if err != nil {
		logger.WarnCF("orders", "Could not load orders", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return l.Current(), false
	}
	if len(list) == 0 {
		logger.DebugCF("orders", "No orders for user", map[string]interface{}{
			"user_id": userID,
		})
		return l.Current(), false
	}

	l.mu.Lock()
	l.current = list
	l.mu.Unlock()

	logger.InfoCF("orders", "Orders loaded", map[string]interface{}{
		"user_id": userID,
		"count":   len(list),
	})
	return list, true
}

// Current returns a copy of the last successfully loaded list.
func (l *Loader) Current() []transport.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.current == nil {
		return nil
	}
	out := make([]transport.Order, len(l.current))
	copy(out, l.current)
	return out
}
