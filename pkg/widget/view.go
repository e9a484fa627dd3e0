package widget

import "github.com/interlux/shopchat/pkg/transport"

// Message is one entry on the display list. Pending marks the loading
// placeholder shown while a send is in flight.
type Message struct {
	ID      int
	Role    string
	Content string
	Pending bool
}

// View is whatever shows the conversation: a browser connection, a
// terminal, a test recorder.
type View interface {
	Append(msg Message)
	Remove(id int)
	ShowOrders(list []transport.Order)
}

// NopView discards everything.
type NopView struct{}

func (NopView) Append(Message)               {}
func (NopView) Remove(int)                   {}
func (NopView) ShowOrders([]transport.Order) {}
