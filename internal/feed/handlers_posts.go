package feed

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"feed-service/internal/auth"
	"feed-service/internal/realtime"
)

const (
	maxPostContentRunes = 500
	defaultPageSize     = 20
	maxPageSize         = 100
)

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func viewerID(r *http.Request) int64 {
	if u, ok := auth.UserFromContext(r.Context()); ok {
		return u.ID
	}
	return 0
}

func pagination(r *http.Request) (page, pageSize int) {
	page, pageSize = 1, defaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v >= 1 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v >= 1 && v <= maxPageSize {
		pageSize = v
	}
	return page, pageSize
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)

	posts, total, err := s.store.ListPosts(r.Context(), viewerID(r), page, pageSize)
	if err != nil {
		log.Printf("feed-service: list posts: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, PostList{
		Posts:    posts,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		HasMore:  (page-1)*pageSize+len(posts) < total,
	})
}

func (s *Server) handleListUserPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	exists, err := s.store.UserExists(r.Context(), userID)
	if err != nil {
		log.Printf("feed-service: list user posts: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	page, pageSize := pagination(r)
	posts, total, err := s.store.ListUserPosts(r.Context(), userID, viewerID(r), page, pageSize)
	if err != nil {
		log.Printf("feed-service: list user posts: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, PostList{
		Posts:    posts,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		HasMore:  (page-1)*pageSize+len(posts) < total,
	})
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(r, "postID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := s.store.GetPost(r.Context(), postID, viewerID(r))
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		log.Printf("feed-service: get post %d: %v", postID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// handleCreatePost accepts multipart form data: a required "content" field
// and an optional "image" file.
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form data")
		return
	}

	content := strings.TrimSpace(r.FormValue("content"))
	if content == "" || utf8.RuneCountInString(content) > maxPostContentRunes {
		writeError(w, http.StatusBadRequest, "content must be 1-500 characters")
		return
	}

	var imageURL *string
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		if s.uploads == nil {
			writeError(w, http.StatusBadRequest, "image uploads are disabled")
			return
		}
		url, err := s.uploads.SaveImage(file, header.Filename)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		imageURL = &url
	}

	post, err := s.store.CreatePost(r.Context(), user.ID, content, imageURL)
	if err != nil {
		log.Printf("feed-service: create post: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.events.Broadcast(realtime.NewPost(post))
	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	postID, ok := pathID(r, "postID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" || utf8.RuneCountInString(content) > maxPostContentRunes {
		writeError(w, http.StatusBadRequest, "content must be 1-500 characters")
		return
	}

	authorID, err := s.store.GetPostAuthor(r.Context(), postID)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		log.Printf("feed-service: update post %d: %v", postID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if authorID != user.ID {
		writeError(w, http.StatusForbidden, "not authorized to update this post")
		return
	}

	post, err := s.store.UpdatePost(r.Context(), postID, user.ID, content)
	if err != nil {
		log.Printf("feed-service: update post %d: %v", postID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// Edits are not broadcast; clients refetch on demand.
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	postID, ok := pathID(r, "postID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	authorID, err := s.store.GetPostAuthor(r.Context(), postID)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		log.Printf("feed-service: delete post %d: %v", postID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if authorID != user.ID {
		writeError(w, http.StatusForbidden, "not authorized to delete this post")
		return
	}

	imageURL, err := s.store.DeletePost(r.Context(), postID)
	if err != nil {
		log.Printf("feed-service: delete post %d: %v", postID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if imageURL != nil && s.uploads != nil {
		s.uploads.DeleteImage(*imageURL)
	}

	s.events.Broadcast(realtime.PostDeleted(postID))
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Post deleted successfully"})
}
