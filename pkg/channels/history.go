package channels

import (
	"sync"
	"time"

	"github.com/interlux/shopchat/pkg/transport"
)

// Past this many entries, Put sweeps out expired ones.
const historySweepThreshold = 100

type historyEntry struct {
	messages []transport.ChatMessage
	updated  time.Time
}

// historyCache remembers the latest backend history per user id so a
// reloaded page can replay the conversation.
type historyCache struct {
	ttl     time.Duration
	now     func() time.Time
	entries map[string]historyEntry
	mu      sync.Mutex
}

func newHistoryCache(ttl time.Duration) *historyCache {
	return &historyCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]historyEntry),
	}
}

func (h *historyCache) Put(userID string, messages []transport.ChatMessage) {
	if userID == "" || len(messages) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[userID] = historyEntry{
		messages: append([]transport.ChatMessage(nil), messages...),
		updated:  h.now(),
	}
	if len(h.entries) > historySweepThreshold {
		h.sweepLocked()
	}
}

func (h *historyCache) Get(userID string) []transport.ChatMessage {
	if userID == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.entries[userID]
	if !ok {
		return nil
	}
	if h.now().Sub(e.updated) > h.ttl {
		delete(h.entries, userID)
		return nil
	}
	return append([]transport.ChatMessage(nil), e.messages...)
}

func (h *historyCache) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *historyCache) sweepLocked() {
	now := h.now()
	for id, e := range h.entries {
		if now.Sub(e.updated) > h.ttl {
			delete(h.entries, id)
		}
	}
}
