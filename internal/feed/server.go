package feed

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"feed-service/internal/realtime"
)

// Broadcaster is the slice of the realtime hub the feed handlers need.
type Broadcaster interface {
	Broadcast(ev realtime.Event)
}

type Server struct {
	store   Store
	events  Broadcaster
	uploads *Uploader
	rl      *RateLimiter
}

// NewServer wires the feed API. uploads and rl may be nil: without an
// uploader posts are text-only, without a limiter no throttling happens.
func NewServer(store Store, events Broadcaster, uploads *Uploader, rl *RateLimiter) *Server {
	return &Server{store: store, events: events, uploads: uploads, rl: rl}
}

func (s *Server) limit(name string, limit int, window time.Duration) func(http.Handler) http.Handler {
	if s.rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return s.rl.Limit(name, limit, window)
}

// Router собирает маршруты ленты. requireAuth и optionalAuth приходят из
// auth-сервера.
func (s *Server) Router(requireAuth, optionalAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)

	r.Route("/posts", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/", s.handleListPosts)
			r.Get("/{postID}", s.handleGetPost)
			r.Get("/user/{userID}", s.handleListUserPosts)
		})
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(s.limit("posts", 10, time.Minute))
			r.Post("/", s.handleCreatePost)
			r.Put("/{postID}", s.handleUpdatePost)
			r.Delete("/{postID}", s.handleDeletePost)
		})
	})

	r.Route("/comments", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Get("/post/{postID}", s.handleListComments)
			r.Get("/{commentID}", s.handleGetComment)
		})
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(s.limit("comments", 30, time.Minute))
			r.Post("/post/{postID}", s.handleCreateComment)
			r.Put("/{commentID}", s.handleUpdateComment)
			r.Delete("/{commentID}", s.handleDeleteComment)
		})
	})

	r.Route("/likes", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/post/{postID}/status", s.handleLikeStatus)
		})
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(s.limit("likes", 60, time.Minute))
			r.Post("/post/{postID}", s.handleLike)
			r.Delete("/post/{postID}", s.handleUnlike)
			r.Post("/post/{postID}/toggle", s.handleToggleLike)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
