package auth

import (
	"time"

	"github.com/go-chi/chi/v5"
)

type Server struct {
	repo      Repository
	jwtSecret []byte
	accessTTL time.Duration
}

func NewServer(repo Repository, jwtSecret []byte, accessTTL time.Duration) *Server {
	return &Server{
		repo:      repo,
		jwtSecret: jwtSecret,
		accessTTL: accessTTL,
	}
}

// Router создаёт chi.Router с маршрутами аутентификации.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)

	// Public profiles
	r.Get("/user/username/{username}", s.handleGetUserByUsername)
	r.Get("/user/{userID}", s.handleGetUser)

	r.Group(func(r chi.Router) {
		r.Use(s.RequireAuth)
		r.Get("/me", s.handleMe)
		r.Put("/me", s.handleUpdateMe)
	})

	return r
}
