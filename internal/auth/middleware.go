package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxUserKey struct{}

// ContextWithUser puts the authenticated user into the request context.
func ContextWithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, u)
}

func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxUserKey{}).(User)
	return u, ok
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// RequireAuth rejects requests without a valid token for an active account.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		user, err := s.userFromToken(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "could not validate credentials")
			return
		}
		if !user.IsActive {
			writeError(w, http.StatusForbidden, "inactive user")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}

// OptionalAuth resolves the user when a valid token is present and proceeds
// anonymously otherwise. It never rejects a request.
func (s *Server) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := bearerToken(r); ok {
			if user, err := s.userFromToken(r.Context(), token); err == nil && user.IsActive {
				r = r.WithContext(ContextWithUser(r.Context(), user))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) userFromToken(ctx context.Context, token string) (User, error) {
	id, err := s.decodeToken(token)
	if err != nil {
		return User{}, err
	}
	return s.repo.FindUserByID(ctx, id)
}
