package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(repo Repository) *Server {
	return NewServer(repo, []byte("test-secret"), 30*time.Minute)
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleRegister(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestServer(repo)

		created := User{ID: 1, Username: "alice", Email: "alice@example.com", IsActive: true}
		repo.On("CreateUser", mock.Anything, "alice", "alice@example.com", mock.Anything, "alice").
			Return(created, nil)

		rec := postJSON(t, s.Router(), "/register", registerRequest{
			Username: "alice",
			Email:    "Alice@Example.com",
			Password: "secret1",
		})

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp UserResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.Equal(t, int64(1), resp.ID)
		assert.Equal(t, "alice", resp.Username)
	})

	t.Run("username taken", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestServer(repo)

		repo.On("CreateUser", mock.Anything, "alice", "alice@example.com", mock.Anything, "alice").
			Return(User{}, ErrUsernameTaken)

		rec := postJSON(t, s.Router(), "/register", registerRequest{
			Username: "alice", Email: "alice@example.com", Password: "secret1",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("short username", func(t *testing.T) {
		s := newTestServer(new(MockRepository))
		rec := postJSON(t, s.Router(), "/register", registerRequest{
			Username: "al", Email: "a@b.c", Password: "secret1",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("short password", func(t *testing.T) {
		s := newTestServer(new(MockRepository))
		rec := postJSON(t, s.Router(), "/register", registerRequest{
			Username: "alice", Email: "a@b.c", Password: "123",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid json", func(t *testing.T) {
		s := newTestServer(new(MockRepository))
		req := httptest.NewRequest("POST", "/register", bytes.NewBufferString("{nope"))
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleLogin(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	alice := User{ID: 1, Username: "alice", HashedPassword: string(hash), IsActive: true}

	t.Run("success", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestServer(repo)
		repo.On("FindUserByUsername", mock.Anything, "alice").Return(alice, nil)

		rec := postJSON(t, s.Router(), "/login", loginRequest{Username: "alice", Password: "secret1"})

		assert.Equal(t, http.StatusOK, rec.Code)
		var tok Token
		_ = json.Unmarshal(rec.Body.Bytes(), &tok)
		assert.Equal(t, "bearer", tok.TokenType)
		assert.NotEmpty(t, tok.AccessToken)

		// The token round-trips to the same user.
		id, err := s.decodeToken(tok.AccessToken)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), id)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestServer(repo)
		repo.On("FindUserByUsername", mock.Anything, "alice").Return(alice, nil)

		rec := postJSON(t, s.Router(), "/login", loginRequest{Username: "alice", Password: "nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestServer(repo)
		repo.On("FindUserByUsername", mock.Anything, "ghost").Return(User{}, ErrUserNotFound)

		rec := postJSON(t, s.Router(), "/login", loginRequest{Username: "ghost", Password: "secret1"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("inactive user", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestServer(repo)
		inactive := alice
		inactive.IsActive = false
		repo.On("FindUserByUsername", mock.Anything, "alice").Return(inactive, nil)

		rec := postJSON(t, s.Router(), "/login", loginRequest{Username: "alice", Password: "secret1"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAuth(t *testing.T) {
	repo := new(MockRepository)
	s := newTestServer(repo)
	alice := User{ID: 1, Username: "alice", IsActive: true}
	repo.On("FindUserByID", mock.Anything, int64(1)).Return(alice, nil)

	token, err := s.issueToken(alice)
	assert.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp UserResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.Equal(t, "alice", resp.Username)
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me", nil)
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
