package channels

import (
	"context"
	"html/template"
	"strings"
	"sync"
	"unicode"

	"github.com/interlux/shopchat/pkg/formatter"
	"github.com/interlux/shopchat/pkg/orders"
	"github.com/interlux/shopchat/pkg/transport"
	"github.com/interlux/shopchat/pkg/widget"
)

const (
	eventAppend  = "append"
	eventRemove  = "remove"
	eventOrders  = "orders"
	eventSession = "session"
	eventBusy    = "busy"
	eventError   = "error"
)

const loadingHTML = `<div class="loading"></div>`

// event is what the page script consumes, over the websocket or as part of
// a /api/send response.
type event struct {
	Type    string `json:"type"`
	ID      int    `json:"id,omitempty"`
	Role    string `json:"role,omitempty"`
	HTML    string `json:"html,omitempty"`
	Pending bool   `json:"pending,omitempty"`
	UserID  string `json:"user_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// htmlView renders controller updates into events. User text is escaped;
// bot replies go through the formatter.
type htmlView struct {
	emit func(event)
}

func (v htmlView) Append(m widget.Message) {
	ev := event{Type: eventAppend, ID: m.ID, Role: m.Role, Pending: m.Pending}
	switch {
	case m.Pending:
		ev.HTML = loadingHTML
	case m.Role == transport.RoleUser:
		ev.HTML = template.HTMLEscapeString(m.Content)
	default:
		ev.HTML = formatter.Format(m.Content)
	}
	v.emit(ev)
}

func (v htmlView) Remove(id int) {
	v.emit(event{Type: eventRemove, ID: id})
}

func (v htmlView) ShowOrders(list []transport.Order) {
	v.emit(event{Type: eventOrders, HTML: orders.RenderHTML(list)})
}

// eventBuffer collects events for a single HTTP response.
type eventBuffer struct {
	mu     sync.Mutex
	events []event
}

func (b *eventBuffer) emit(ev event) {
	b.mu.Lock()
	b.events = append(b.events, ev)
	b.mu.Unlock()
}

func (b *eventBuffer) drain() []event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.events
	b.events = nil
	if out == nil {
		out = []event{}
	}
	return out
}

// browserStore is the session store for one browser: the id it already had
// comes from its cookie, and a newly assigned id is handed to onSave so the
// browser can keep it.
type browserStore struct {
	userID string
	onSave func(string)
}

func (s *browserStore) Load(context.Context) (string, error) {
	return s.userID, nil
}

func (s *browserStore) Save(_ context.Context, userID string) error {
	s.userID = userID
	if s.onSave != nil {
		s.onSave(userID)
	}
	return nil
}

// sanitizeString drops control characters other than tab and newline and
// caps the result at maxLen runes.
func sanitizeString(s string, maxLen int) string {
	var b strings.Builder
	b.Grow(len(s))
	n := 0
	for _, r := range s {
		if unicode.IsControl(r) && r != '\t' && r != '\n' {
			continue
		}
		if r == unicode.ReplacementChar {
			continue
		}
		if maxLen > 0 && n >= maxLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	return strings.TrimSpace(b.String())
}
