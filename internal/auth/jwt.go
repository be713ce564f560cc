package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type TokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (s *Server) issueToken(user User) (string, error) {
	now := time.Now()

	claims := &TokenClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			// JWT requires sub to be a string even though ids are numeric.
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *Server) decodeToken(raw string) (int64, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// ResolveUser validates a bearer token and returns its subject, provided the
// account still exists and is active. Any failure is reported as "no
// identity"; the realtime endpoints never see an error here.
func (s *Server) ResolveUser(ctx context.Context, token string) (int64, bool) {
	if token == "" {
		return 0, false
	}

	id, err := s.decodeToken(token)
	if err != nil {
		return 0, false
	}

	user, err := s.repo.FindUserByID(ctx, id)
	if err != nil || !user.IsActive {
		return 0, false
	}
	return user.ID, true
}
