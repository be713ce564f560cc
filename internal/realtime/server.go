package realtime

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// Close code sent to the peer when the notifications endpoint rejects the
// handshake.
const closeUnauthorized = 4001

// UserResolver turns a bearer token into a user identity. Failures are
// "no identity", never an error.
type UserResolver interface {
	ResolveUser(ctx context.Context, token string) (int64, bool)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// За gateway'ом origin можно не ограничивать.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Server struct {
	hub      *Hub
	resolver UserResolver
}

func NewServer(hub *Hub, resolver UserResolver) *Server {
	return &Server{
		hub:      hub,
		resolver: resolver,
	}
}

// Router создаёт chi.Router с нашими маршрутами.
func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/feed", s.handleFeed)
	r.Get("/notifications/{userID}", s.handleNotifications)

	return r
}

// handleFeed serves the global feed channel. A token is optional: a missing
// or invalid one downgrades the session to anonymous instead of failing it.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	var (
		userID int64
		authed bool
	)
	if token := r.URL.Query().Get("token"); token != "" {
		userID, authed = s.resolver.ResolveUser(r.Context(), token)
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("feed-service: ws upgrade: %v", err)
		return
	}

	s.open(conn, userID, authed, "Connected to feed updates")
}

// handleNotifications serves the per-user channel. The token is mandatory and
// its subject must match the path user id; otherwise the connection is closed
// with an unauthorized code before it is ever registered.
func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	pathID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	userID, authed := s.resolver.ResolveUser(r.Context(), r.URL.Query().Get("token"))

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("feed-service: ws upgrade: %v", err)
		return
	}

	if !authed || userID != pathID {
		msg := websocket.FormatCloseMessage(closeUnauthorized, "Unauthorized")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	s.open(conn, userID, true, "Connected to personal notifications")
}

// open registers the session and starts its pumps. The connected message is
// queued first so the peer always sees it before any feed event.
func (s *Server) open(conn *websocket.Conn, userID int64, authenticated bool, greeting string) {
	c := newClient(s.hub, conn, userID, authenticated)
	s.hub.Register(c)
	c.enqueue(Connected(userID, authenticated, greeting))

	go c.writePump()
	go c.readPump()
}
