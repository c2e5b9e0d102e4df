package chat

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/evghenimelnic/chat-server/pkg/logger"
	"github.com/evghenimelnic/chat-server/pkg/realtime"
)

const (
	// writeWait bounds a single frame write.
	writeWait = 10 * time.Second
	// pongWait is how long a connection may stay silent before the read
	// side gives up on it.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// maxMessageSize bounds inbound frames.
	maxMessageSize = 8 << 10
	// sendBufferSize is the outbound queue depth per connection. A full
	// queue marks the connection as slow and it is dropped.
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from arbitrary origins; access control is
	// out of scope for this server.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsClient binds one websocket connection to the realtime registry. The
// write pump is the only goroutine that touches the gorilla conn for
// writes; Deliver just enqueues, so no registry lock is ever held across
// network I/O.
type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan any

	closeOnce sync.Once
	closed    chan struct{}
}

func newWSClient(conn *websocket.Conn) *wsClient {
	return &wsClient{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan any, sendBufferSize),
		closed: make(chan struct{}),
	}
}

// Deliver implements realtime.Recipient with a non-blocking enqueue.
func (c *wsClient) Deliver(v any) error {
	select {
	case <-c.closed:
		return realtime.ErrRecipientGone
	default:
	}

	select {
	case c.send <- v:
		return nil
	default:
		return realtime.ErrRecipientSlow
	}
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}

// writePump serializes all writes to the connection and keeps it alive
// with periodic pings.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case v := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(v); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *wsClient) configureRead() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
}

// scopeIDAttr names the scope's id by its kind, so log queries can filter
// on room_id/session_id/user_id directly.
func scopeIDAttr(key realtime.ScopeKey) slog.Attr {
	switch key.Kind {
	case realtime.ScopeRoom:
		return logger.RoomID(key.ID)
	case realtime.ScopeSession:
		return logger.SessionID(key.ID)
	case realtime.ScopeUser:
		return logger.UserID(key.ID)
	default:
		return slog.String("scope_id", key.ID)
	}
}

// errorFrame is pushed back to a sender whose message could not be
// processed; the connection itself stays up.
type errorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// WSHandler owns the websocket endpoints of all four scopes.
type WSHandler struct {
	svc      *Service
	registry *realtime.Registry
	log      *slog.Logger
}

// NewWSHandler creates the websocket handler set.
func NewWSHandler(svc *Service, registry *realtime.Registry, log *slog.Logger) *WSHandler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &WSHandler{svc: svc, registry: registry, log: log}
}

// ServeCommon handles the global channel: every connected client receives
// every common message, including the sender.
func (h *WSHandler) ServeCommon(w http.ResponseWriter, r *http.Request) {
	h.serveMessaging(w, r, realtime.CommonKey(), "", func(ctx context.Context, in Incoming) (Message, error) {
		return h.svc.SendCommon(ctx, in)
	})
}

// ServeRoom handles one room's channel.
func (h *WSHandler) ServeRoom(roomID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.serveMessaging(w, r, realtime.RoomKey(roomID), "", func(ctx context.Context, in Incoming) (Message, error) {
			return h.svc.SendRoom(ctx, roomID, in)
		})
	}
}

// ServeP2P handles a p2p session endpoint for one participant. The
// participant id keys the registry entry so session broadcasts can
// exclude the sender.
func (h *WSHandler) ServeP2P(sessionID, userID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.serveMessaging(w, r, realtime.SessionKey(sessionID), userID, func(ctx context.Context, in Incoming) (Message, error) {
			return h.svc.SendP2P(ctx, sessionID, in)
		})
	}
}

// ServeNotifications attaches a connection to a user's subscription
// notification stream. Inbound frames are read and discarded; the client
// only listens.
func (h *WSHandler) ServeNotifications(userID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warn("websocket upgrade failed", logger.Error(err))
			return
		}

		client := newWSClient(conn)
		key := realtime.UserKey(userID)
		h.registry.Join(key, client.id, client)
		go client.writePump()

		h.log.Debug("notification stream connected",
			logger.ConnID(client.id),
			logger.UserID(userID),
		)

		defer func() {
			h.registry.Leave(key, client.id, client)
			client.close()
		}()

		client.configureRead()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}

func (h *WSHandler) serveMessaging(
	w http.ResponseWriter,
	r *http.Request,
	key realtime.ScopeKey,
	identity string,
	submit func(context.Context, Incoming) (Message, error),
) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", logger.Error(err))
		return
	}

	client := newWSClient(conn)
	if identity == "" {
		identity = client.id
	}
	h.registry.Join(key, identity, client)
	go client.writePump()

	defer func() {
		h.registry.Leave(key, identity, client)
		client.close()
	}()

	h.log.Debug("websocket connected",
		logger.ConnID(client.id),
		logger.Scope(key.Kind.String()),
		scopeIDAttr(key),
	)

	client.configureRead()
	for {
		var in Incoming
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read failed", logger.ConnID(client.id), logger.Error(err))
			}
			return
		}

		if _, err := submit(r.Context(), in); err != nil {
			// The sender gets an error frame and no broadcast happens;
			// other connections are unaffected.
			_ = client.Deliver(errorFrame{Type: "error", Error: err.Error()})
		}
	}
}
