// Package widget holds the chat widget's state and control flow,
// independent of how it is displayed.
package widget

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/interlux/shopchat/pkg/logger"
	"github.com/interlux/shopchat/pkg/session"
	"github.com/interlux/shopchat/pkg/transport"
)

// FallbackReply is shown in place of a bot reply when a send fails.
const FallbackReply = "Sorry, an error occurred. Please try again later."

// ErrBusy is returned by Send while another send is still outstanding.
var ErrBusy = errors.New("widget: a message is already being sent")

type ChatSender interface {
	SendMessage(ctx context.Context, text, userID string) (*transport.ChatReply, error)
}

type OrderLoader interface {
	Load(ctx context.Context, userID string) ([]transport.Order, bool)
}

type Controller struct {
	session *session.Session
	chat    ChatSender
	orders  OrderLoader
	view    View
	sending *semaphore.Weighted

	mu       sync.Mutex
	nextID   int
	messages []Message
	history  []transport.ChatMessage
}

func New(sess *session.Session, chat ChatSender, orders OrderLoader, view View) *Controller {
	if view == nil {
		view = NopView{}
	}
	return &Controller{
		session: sess,
		chat:    chat,
		orders:  orders,
		view:    view,
		sending: semaphore.NewWeighted(1),
	}
}

// Init restores the stored user id and, if there is one, loads its orders.
func (c *Controller) Init(ctx context.Context) error {
	id, err := c.session.Restore(ctx)
	if err != nil {
		logger.WarnCF("widget", "Could not restore session", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	if id != "" {
		c.loadOrders(ctx, id)
	}
	return nil
}

// Send posts one user message and shows the reply. A failed send shows
// FallbackReply and returns the transport error; the session and history are
// left as they were.
func (c *Controller) Send(ctx context.Context, text string) error {
	text = sanitizeInput(text)
	if text == "" {
		return nil
	}
	if !c.sending.TryAcquire(1) {
		return ErrBusy
	}
	defer c.sending.Release(1)

	c.push(transport.RoleUser, text, false)
	placeholder := c.push(transport.RoleBot, "", true)

	reply, err := c.chat.SendMessage(ctx, text, c.session.UserID())
	c.remove(placeholder.ID)

	if err != nil {
		logger.ErrorCF("widget", "Send failed", map[string]interface{}{
			"error": err.Error(),
		})
		c.push(transport.RoleBot, FallbackReply, false)
		return err
	}

	c.push(transport.RoleBot, reply.Reply, false)
	c.adoptUserID(ctx, reply.UserID)

	c.mu.Lock()
	c.history = reply.History
	c.mu.Unlock()
	return nil
}

func (c *Controller) adoptUserID(ctx context.Context, id string) {
	if id == "" {
		return
	}

	assigned, err := c.session.Assign(ctx, id)
	if err != nil {
		logger.WarnCF("widget", "Could not persist user id", map[string]interface{}{
			"user_id": id,
			"error":   err.Error(),
		})
	}
	if assigned {
		c.loadOrders(ctx, id)
		return
	}

	if current := c.session.UserID(); current != id {
		logger.WarnCF("widget", "Ignoring different user id from backend", map[string]interface{}{
			"current":  current,
			"received": id,
		})
	}
}

func (c *Controller) loadOrders(ctx context.Context, id string) bool {
	if c.orders == nil {
		return false
	}
	list, ok := c.orders.Load(ctx, id)
	if ok {
		c.view.ShowOrders(list)
	}
	return ok
}

// RefreshOrders reloads the orders for the current user id. It reports
// whether a non-empty list was shown.
func (c *Controller) RefreshOrders(ctx context.Context) bool {
	id := c.session.UserID()
	if id == "" {
		return false
	}
	return c.loadOrders(ctx, id)
}

// Replay shows a previously recorded conversation, e.g. after a page reload.
func (c *Controller) Replay(history []transport.ChatMessage) {
	for _, m := range history {
		role := transport.RoleBot
		if m.Role == transport.RoleUser {
			role = transport.RoleUser
		}
		c.push(role, m.Content, false)
	}

	c.mu.Lock()
	c.history = append([]transport.ChatMessage(nil), history...)
	c.mu.Unlock()
}

func (c *Controller) push(role, content string, pending bool) Message {
	c.mu.Lock()
	c.nextID++
	msg := Message{ID: c.nextID, Role: role, Content: content, Pending: pending}
	c.messages = append(c.messages, msg)
	c.mu.Unlock()

	c.view.Append(msg)
	return msg
}

func (c *Controller) remove(id int) {
	c.mu.Lock()
	for i, m := range c.messages {
		if m.ID == id {
			c.messages = append(c.messages[:i], c.messages[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	c.view.Remove(id)
}

// Messages returns the current display list.
func (c *Controller) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

// History returns the conversation history last reported by the backend.
func (c *Controller) History() []transport.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]transport.ChatMessage(nil), c.history...)
}

func (c *Controller) UserID() string {
	return c.session.UserID()
}
