package tabsync

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/matchpoint-app/matchpoint/internal/logging"
)

// CookieSource supplies the session cookies for a target URL, so the relay
// connection authenticates the same way the REST calls do.
type CookieSource interface {
	Jar(target string) []*http.Cookie
	BaseURL() string
}

// WSBus is a Bus backed by the server's /ws/events relay. The server forwards
// each message to the user's other connected tabs, which matches the
// browser broadcast-channel semantics this package models.
type WSBus struct {
	cookies CookieSource
	logger  logging.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	subs    map[int]func(Message)
	nextSub int
	closed  bool
}

func NewWSBus(cookies CookieSource, logger logging.Logger) *WSBus {
	return &WSBus{
		cookies: cookies,
		logger:  logger,
		subs:    make(map[int]func(Message)),
	}
}

func (b *WSBus) endpoint() string {
	base := b.cookies.BaseURL()
	switch {
	case strings.HasPrefix(base, "https"):
		base = "wss" + strings.TrimPrefix(base, "https")
	case strings.HasPrefix(base, "http"):
		base = "ws" + strings.TrimPrefix(base, "http")
	}
	return base + "/ws/events"
}

// Connect dials the relay and starts the read loop. Call after a session
// exists (the dial is rejected otherwise). Connecting while already
// connected is a no-op. Reconnection is the caller's choice; a dropped
// relay only delays convergence until the next probe.
func (b *WSBus) Connect(ctx context.Context) error {
	b.mu.Lock()
	if b.conn != nil || b.closed {
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	header := http.Header{}
	for _, c := range b.cookies.Jar(b.cookies.BaseURL()) {
		header.Add("Cookie", c.Name+"="+c.Value)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, b.endpoint(), header)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return err
	}

	b.mu.Lock()
	b.conn = conn
	b.mu.Unlock()

	go b.readLoop(conn)
	return nil
}

func (b *WSBus) readLoop(conn *websocket.Conn) {
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			b.mu.Lock()
			if b.conn == conn {
				b.conn = nil
			}
			closed := b.closed
			b.mu.Unlock()
			if !closed {
				b.logger.Warn(context.Background(), "event relay disconnected", "err", err)
			}
			return
		}
		if msg.Type != TypeLogin && msg.Type != TypeLogout {
			continue
		}
		b.deliver(msg)
	}
}

func (b *WSBus) deliver(msg Message) {
	b.mu.Lock()
	fns := make([]func(Message), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(msg)
	}
}

// Disconnect drops the relay connection but keeps subscriptions, so a later
// Connect resumes delivery to the same handlers. Used on logout, when the
// session the connection was authenticated with no longer exists.
func (b *WSBus) Disconnect() {
	b.mu.Lock()
	conn := b.conn
	b.conn = nil
	b.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

// Publish sends msg to the user's other tabs via the relay. Publishing
// without a connection is not an error: sync is best-effort.
func (b *WSBus) Publish(ctx context.Context, msg Message) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.WriteJSON(msg)
}

func (b *WSBus) Subscribe(fn func(Message)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *WSBus) Close() error {
	b.mu.Lock()
	b.closed = true
	conn := b.conn
	b.conn = nil
	b.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}
