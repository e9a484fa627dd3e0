// Package channels serves the chat widget to browsers.
package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/interlux/shopchat/pkg/config"
	"github.com/interlux/shopchat/pkg/logger"
	"github.com/interlux/shopchat/pkg/orders"
	"github.com/interlux/shopchat/pkg/session"
	"github.com/interlux/shopchat/pkg/widget"
)

// UserCookie carries the backend-issued user id between page loads.
const UserCookie = "shopchat_uid"

// maxInboundBytes caps a /api/send body and a single websocket message.
const maxInboundBytes = 1 << 20

const (
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 20 * time.Second
)

// Backend is everything the widget needs from the shop backend.
type Backend interface {
	widget.ChatSender
	orders.Fetcher
}

type WidgetChannel struct {
	config  config.WidgetConfig
	backend Backend
	server  *http.Server
	history *historyCache
	page    []byte
	running atomic.Bool

	upgrader websocket.Upgrader
	conns    map[*websocket.Conn]struct{}
	connWG   sync.WaitGroup
	mu       sync.Mutex
}

type sendRequest struct {
	Message string `json:"message"`
}

type sendResponse struct {
	Events []event `json:"events"`
}

func NewWidgetChannel(cfg config.WidgetConfig, backend Backend) (*WidgetChannel, error) {
	page, err := renderPage(cfg.Title)
	if err != nil {
		return nil, fmt.Errorf("render widget page: %w", err)
	}

	return &WidgetChannel{
		config:  cfg,
		backend: backend,
		history: newHistoryCache(cfg.HistoryTTL()),
		page:    page,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 10 * time.Second,
		},
		conns: make(map[*websocket.Conn]struct{}),
	}, nil
}

// Handler returns the widget's routes.
func (c *WidgetChannel) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", c.handleUI)
	mux.HandleFunc("/ws", c.handleWS)
	mux.HandleFunc("/api/send", c.handleSend)
	mux.HandleFunc("/api/orders", c.handleOrders)
	mux.HandleFunc("/health", c.handleHealth)
	return mux
}

func (c *WidgetChannel) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)
	c.server = &http.Server{
		Addr:              addr,
		Handler:           c.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	c.running.Store(true)

	logger.InfoCF("channels", "Widget server started", map[string]interface{}{"addr": addr})

	go func() {
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorCF("channels", "Widget server error", map[string]interface{}{"error": err.Error()})
		}
		c.running.Store(false)
	}()

	return nil
}

func (c *WidgetChannel) Stop(ctx context.Context) error {
	c.running.Store(false)

	var err error
	if c.server != nil {
		err = c.server.Shutdown(ctx)
	}
	c.closeConns()

	done := make(chan struct{})
	go func() {
		c.connWG.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}

func (c *WidgetChannel) IsRunning() bool {
	return c.running.Load()
}

func (c *WidgetChannel) handleUI(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(c.page)
}

func (c *WidgetChannel) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleSend is the non-websocket path: one message in, the resulting events
// out.
func (c *WidgetChannel) handleSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req sendRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxInboundBytes)).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	text := sanitizeString(req.Message, c.config.MaxMessageLength)

	buf := &eventBuffer{}
	store := &browserStore{
		userID: requestUserID(r),
		onSave: func(id string) {
			http.SetCookie(w, userCookie(id))
			buf.emit(event{Type: eventSession, UserID: id})
		},
	}
	sess := session.New(store)
	if _, err := sess.Restore(r.Context()); err != nil {
		logger.WarnCF("channels", "Could not read browser session", map[string]interface{}{"error": err.Error()})
	}
	ctrl := widget.New(sess, c.backend, orders.NewLoader(c.backend), htmlView{emit: buf.emit})

	if err := ctrl.Send(r.Context(), text); err != nil {
		buf.emit(event{Type: eventError, Error: "send failed"})
	} else {
		c.history.Put(ctrl.UserID(), ctrl.History())
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sendResponse{Events: buf.drain()})
}

func (c *WidgetChannel) handleOrders(w http.ResponseWriter, r *http.Request) {
	uid := requestUserID(r)
	if uid == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	list, ok := orders.NewLoader(c.backend).Load(r.Context(), uid)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, orders.RenderHTML(list))
}

func (c *WidgetChannel) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.DebugCF("channels", "Websocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}

	c.connWG.Add(1)
	defer c.connWG.Done()
	c.trackConn(conn, true)
	defer c.trackConn(conn, false)
	defer conn.Close()

	connID := uuid.NewString()
	uid := requestUserID(r)
	// A page reconnecting after a dropped socket already shows its orders.
	resumed := r.URL.Query().Get("resume") == "1"
	logger.InfoCF("channels", "Widget connected", map[string]interface{}{
		"conn_id": connID,
		"user_id": uid,
		"resumed": resumed,
		"remote":  r.RemoteAddr,
	})

	ctx, cancel := context.WithCancel(context.Background())

	var writeMu sync.Mutex
	emit := func(ev event) {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := writeJSON(conn, ev); err != nil {
			logger.DebugCF("channels", "Websocket write failed", map[string]interface{}{
				"conn_id": connID,
				"error":   err.Error(),
			})
		}
	}

	store := &browserStore{
		userID: uid,
		onSave: func(id string) { emit(event{Type: eventSession, UserID: id}) },
	}
	sess := session.New(store)
	ctrl := widget.New(sess, c.backend, orders.NewLoader(c.backend), htmlView{emit: emit})

	if past := c.history.Get(uid); len(past) > 0 {
		ctrl.Replay(past)
	}
	if resumed {
		_, _ = sess.Restore(ctx)
	} else {
		_ = ctrl.Init(ctx)
	}

	conn.SetReadLimit(maxInboundBytes)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				writeMu.Lock()
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				err := conn.WriteMessage(websocket.PingMessage, nil)
				writeMu.Unlock()
				if err != nil {
					return
				}
			}
		}
	}()

	limiter := newSendLimiter(c.config.SendsPerMinute)
	var sends sync.WaitGroup
	defer sends.Wait()
	defer cancel()

	for {
		var req sendRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.DebugCF("channels", "Websocket read failed", map[string]interface{}{
					"conn_id": connID,
					"error":   err.Error(),
				})
			}
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		text := sanitizeString(req.Message, c.config.MaxMessageLength)
		if text == "" {
			continue
		}
		if !limiter.Allow() {
			emit(event{Type: eventError, Error: "too many messages, slow down"})
			continue
		}

		sends.Add(1)
		go func() {
			defer sends.Done()
			err := ctrl.Send(ctx, text)
			switch {
			case errors.Is(err, widget.ErrBusy):
				emit(event{Type: eventBusy})
			case err != nil:
				emit(event{Type: eventError, Error: "send failed"})
			default:
				c.history.Put(ctrl.UserID(), ctrl.History())
			}
		}()
	}

	logger.InfoCF("channels", "Widget disconnected", map[string]interface{}{"conn_id": connID})
}

func (c *WidgetChannel) trackConn(conn *websocket.Conn, add bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if add {
		c.conns[conn] = struct{}{}
	} else {
		delete(c.conns, conn)
	}
}

func (c *WidgetChannel) closeConns() {
	c.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(c.conns))
	for conn := range c.conns {
		conns = append(conns, conn)
	}
	c.mu.Unlock()

	for _, conn := range conns {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}
}

func newSendLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(float64(perMinute)/60), max(1, perMinute/4))
}

func requestUserID(r *http.Request) string {
	if cookie, err := r.Cookie(UserCookie); err == nil && cookie.Value != "" {
		return sanitizeString(cookie.Value, 256)
	}
	return sanitizeString(r.URL.Query().Get("uid"), 256)
}

func userCookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     UserCookie,
		Value:    id,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   365 * 24 * 3600,
	}
}

// writeJSON encodes v without HTML escaping so rendered fragments reach the
// page unchanged.
func writeJSON(conn *websocket.Conn, v interface{}) error {
	w, err := conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return w.Close()
}

func renderPage(title string) ([]byte, error) {
	if title == "" {
		title = "Shop Assistant"
	}
	tmpl, err := template.New("page").Parse(widgetPageHTML)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Title string }{title}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
