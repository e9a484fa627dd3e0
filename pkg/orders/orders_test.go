package orders

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interlux/shopchat/pkg/transport"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{25000000, "$1,086.96"},
		{0, "$0.00"},
		{-115000, "-$5.00"},
		{23000, "$1.00"},
		{230, "$0.01"},
		{2300000000, "$100,000.00"},
		{23115, "$1.01"},
		{23345, "$1.02"},
		{-23115, "-$1.01"},
		{115, "$0.01"},
		{114, "$0.00"},
		{-114, "$0.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMoney(tt.amount), "amount %d", tt.amount)
	}
}

func newBackend(t *testing.T, status int, body string, hits *int32) *transport.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return transport.NewClient(transport.Config{BaseURL: server.URL})
}

func TestLoader_Success(t *testing.T) {
	client := newBackend(t, http.StatusOK, `{"orders": [{"id": 1, "status": "paid", "total_amount": 46000}]}`, nil)
	l := NewLoader(client)

	list, ok := l.Load(context.Background(), "u1")
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "paid", list[0].Status)
	assert.Equal(t, list, l.Current())
}

func TestLoader_NotFoundKeepsPriorList(t *testing.T) {
	good := newBackend(t, http.StatusOK, `{"orders": [{"id": 7, "status": "shipped", "total_amount": 23000}]}`, nil)
	l := NewLoader(good)
	_, ok := l.Load(context.Background(), "u1")
	require.True(t, ok)

	l.fetcher = newBackend(t, http.StatusNotFound, `{"detail": "not found"}`, nil)
	list, ok := l.Load(context.Background(), "u1")
	assert.False(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, transport.OrderID("7"), list[0].ID)
	assert.Equal(t, list, l.Current())
}

func TestLoader_EmptyResultKeepsPriorList(t *testing.T) {
	l := NewLoader(newBackend(t, http.StatusOK, `{"orders": [{"id": 1, "status": "paid", "total_amount": 1}]}`, nil))
	_, _ = l.Load(context.Background(), "u1")

	l.fetcher = newBackend(t, http.StatusOK, `{"orders": []}`, nil)
	list, ok := l.Load(context.Background(), "u1")
	assert.False(t, ok)
	assert.Len(t, list, 1)
}

func TestLoader_EmptyUserIDSkipsFetch(t *testing.T) {
	var hits int32
	l := NewLoader(newBackend(t, http.StatusOK, `{"orders": []}`, &hits))

	list, ok := l.Load(context.Background(), "")
	assert.False(t, ok)
	assert.Nil(t, list)
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func TestRenderHTML(t *testing.T) {
	out := RenderHTML([]transport.Order{
		{ID: "12", Status: "shipped", TotalAmount: 25000000},
		{ID: "<x>", Status: "pending", TotalAmount: 0},
	})

	assert.Equal(t, 2, strings.Count(out, `class="order-item"`))
	assert.Contains(t, out, "Order #12")
	assert.Contains(t, out, `<div class="order-status">shipped</div>`)
	assert.Contains(t, out, "Total: $1,086.96")
	assert.Contains(t, out, "Order #&lt;x&gt;")
	assert.Equal(t, "", RenderHTML(nil))
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, []transport.Order{{ID: "3", Status: "paid", TotalAmount: 230000}}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ORDER"))
	assert.Contains(t, lines[1], "#3")
	assert.Contains(t, lines[1], "$10.00")
}
