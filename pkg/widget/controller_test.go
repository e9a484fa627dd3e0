package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interlux/shopchat/pkg/session"
	"github.com/interlux/shopchat/pkg/transport"
)

type fakeChat struct {
	mu      sync.Mutex
	replies []*transport.ChatReply
	err     error
	gotIDs  []string
	started chan struct{}
	release chan struct{}
}

func (f *fakeChat) SendMessage(ctx context.Context, text, userID string) (*transport.ChatReply, error) {
	f.mu.Lock()
	f.gotIDs = append(f.gotIDs, userID)
	var reply *transport.ChatReply
	if len(f.replies) > 0 {
		reply = f.replies[0]
		f.replies = f.replies[1:]
	}
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return reply, nil
}

type fakeLoader struct {
	mu    sync.Mutex
	calls []string
	list  []transport.Order
}

func (f *fakeLoader) Load(ctx context.Context, userID string) ([]transport.Order, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, userID)
	return f.list, len(f.list) > 0
}

func (f *fakeLoader) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type recordingView struct {
	mu     sync.Mutex
	events []string
	orders [][]transport.Order
}

func (v *recordingView) Append(m Message) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, fmt.Sprintf("append %d %s pending=%t %q", m.ID, m.Role, m.Pending, m.Content))
}

func (v *recordingView) Remove(id int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, fmt.Sprintf("remove %d", id))
}

func (v *recordingView) ShowOrders(list []transport.Order) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.orders = append(v.orders, list)
}

func reply(text, id string) *transport.ChatReply {
	return &transport.ChatReply{
		Reply:  text,
		UserID: id,
		History: []transport.ChatMessage{
			{Role: transport.RoleUser, Content: "q"},
			{Role: transport.RoleBot, Content: text},
		},
	}
}

func TestSend_FirstAssignmentLoadsOrdersOnce(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore("")
	chat := &fakeChat{replies: []*transport.ChatReply{reply("hi", "u-1"), reply("again", "u-1")}}
	loader := &fakeLoader{list: []transport.Order{{ID: "1", Status: "paid"}}}
	view := &recordingView{}

	c := New(session.New(store), chat, loader, view)
	require.NoError(t, c.Init(ctx))
	assert.Empty(t, loader.Calls(), "no stored id means no order load at init")

	require.NoError(t, c.Send(ctx, "hello"))
	assert.Equal(t, []string{"u-1"}, loader.Calls())
	assert.Equal(t, "u-1", c.UserID())
	persisted, _ := store.Load(ctx)
	assert.Equal(t, "u-1", persisted)
	assert.Len(t, view.orders, 1)

	require.NoError(t, c.Send(ctx, "hello again"))
	assert.Equal(t, []string{"u-1"}, loader.Calls(), "same id must not trigger another load")
	assert.Equal(t, []string{"", "u-1"}, chat.gotIDs)
}

func TestInit_StoredIDLoadsOrders(t *testing.T) {
	ctx := context.Background()
	chat := &fakeChat{replies: []*transport.ChatReply{reply("hi", "stored")}}
	loader := &fakeLoader{}

	c := New(session.New(session.NewMemoryStore("stored")), chat, loader, nil)
	require.NoError(t, c.Init(ctx))
	assert.Equal(t, []string{"stored"}, loader.Calls())

	require.NoError(t, c.Send(ctx, "hello"))
	assert.Equal(t, []string{"stored"}, loader.Calls())
	assert.Equal(t, []string{"stored"}, chat.gotIDs)
}

func TestSend_DifferentLaterIDIgnored(t *testing.T) {
	ctx := context.Background()
	chat := &fakeChat{replies: []*transport.ChatReply{reply("a", "u-1"), reply("b", "u-2")}}
	loader := &fakeLoader{}

	c := New(session.New(nil), chat, loader, nil)
	require.NoError(t, c.Send(ctx, "one"))
	require.NoError(t, c.Send(ctx, "two"))

	assert.Equal(t, "u-1", c.UserID())
	assert.Equal(t, []string{"u-1"}, loader.Calls())
}

func TestSend_EventSequence(t *testing.T) {
	view := &recordingView{}
	c := New(session.New(nil), &fakeChat{replies: []*transport.ChatReply{reply("Hello!", "")}}, nil, view)

	require.NoError(t, c.Send(context.Background(), "  hi  "))

	assert.Equal(t, []string{
		`append 1 user pending=false "hi"`,
		`append 2 bot pending=true ""`,
		`remove 2`,
		`append 3 bot pending=false "Hello!"`,
	}, view.events)

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[0].Content)
	assert.Equal(t, "Hello!", msgs[1].Content)
	assert.Len(t, c.History(), 2)
}

func TestSend_ErrorShowsFallback(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore("")
	chat := &fakeChat{err: &transport.NetworkError{Op: "send message", URL: "http://x/chat", Err: errors.New("refused")}}
	loader := &fakeLoader{}
	view := &recordingView{}

	c := New(session.New(store), chat, loader, view)
	err := c.Send(ctx, "hello")
	require.Error(t, err)
	assert.True(t, errors.Is(err, transport.ErrNetwork))

	assert.Equal(t, `append 3 bot pending=false "`+FallbackReply+`"`, view.events[len(view.events)-1])
	assert.Contains(t, view.events, "remove 2")
	assert.Empty(t, c.UserID())
	assert.Empty(t, c.History())
	assert.Empty(t, loader.Calls())
	assert.Equal(t, 0, store.Saves())
}

func TestSend_EmptyIsNoop(t *testing.T) {
	view := &recordingView{}
	chat := &fakeChat{}
	c := New(session.New(nil), chat, nil, view)

	require.NoError(t, c.Send(context.Background(), " \n\t\x00 "))
	assert.Empty(t, view.events)
	assert.Empty(t, chat.gotIDs)
}

func TestSend_BusyWhileOutstanding(t *testing.T) {
	chat := &fakeChat{
		replies: []*transport.ChatReply{reply("first", "u")},
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	c := New(session.New(nil), chat, nil, nil)

	done := make(chan error, 1)
	go func() { done <- c.Send(context.Background(), "first") }()

	select {
	case <-chat.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first send never reached the transport")
	}

	assert.ErrorIs(t, c.Send(context.Background(), "second"), ErrBusy)

	close(chat.release)
	require.NoError(t, <-done)

	chat.started = nil
	chat.replies = []*transport.ChatReply{reply("third", "u")}
	assert.NoError(t, c.Send(context.Background(), "third"), "semaphore is released after the send completes")
}

func TestReplay(t *testing.T) {
	view := &recordingView{}
	c := New(session.New(nil), &fakeChat{}, nil, view)

	c.Replay([]transport.ChatMessage{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	})

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, transport.RoleUser, msgs[0].Role)
	assert.Equal(t, transport.RoleBot, msgs[1].Role)
	assert.Len(t, c.History(), 2)
	assert.Len(t, view.events, 2)
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "a\tb\nc", sanitizeInput("  a\tb\nc\x07\x1b "))
	assert.Equal(t, "", sanitizeInput("\x00\x01"))
}

func TestRefreshOrders(t *testing.T) {
	ctx := context.Background()
	loader := &fakeLoader{list: []transport.Order{{ID: "9"}}}
	view := &recordingView{}

	c := New(session.New(nil), &fakeChat{}, loader, view)
	assert.False(t, c.RefreshOrders(ctx), "no user id yet")
	assert.Empty(t, loader.Calls())

	c = New(session.New(session.NewMemoryStore("u-5")), &fakeChat{}, loader, view)
	require.NoError(t, c.Init(ctx))
	assert.True(t, c.RefreshOrders(ctx))
	assert.Equal(t, []string{"u-5", "u-5"}, loader.Calls())
	assert.Len(t, view.orders, 2)
}
