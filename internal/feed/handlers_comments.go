package feed

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"feed-service/internal/auth"
	"feed-service/internal/realtime"
)

const maxCommentContentRunes = 300

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(r, "postID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	if _, err := s.store.GetPostAuthor(r.Context(), postID); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		log.Printf("feed-service: list comments: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	comments, err := s.store.ListPostComments(r.Context(), postID)
	if err != nil {
		log.Printf("feed-service: list comments: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, CommentList{Comments: comments, Total: len(comments)})
}

func (s *Server) handleGetComment(w http.ResponseWriter, r *http.Request) {
	commentID, ok := pathID(r, "commentID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	comment, err := s.store.GetComment(r.Context(), commentID)
	if err != nil {
		if errors.Is(err, ErrCommentNotFound) {
			writeError(w, http.StatusNotFound, "comment not found")
			return
		}
		log.Printf("feed-service: get comment %d: %v", commentID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, comment)
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
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
	if content == "" || utf8.RuneCountInString(content) > maxCommentContentRunes {
		writeError(w, http.StatusBadRequest, "content must be 1-300 characters")
		return
	}

	if _, err := s.store.GetPostAuthor(r.Context(), postID); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		log.Printf("feed-service: create comment: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	comment, err := s.store.CreateComment(r.Context(), postID, user.ID, content)
	if err != nil {
		log.Printf("feed-service: create comment: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.events.Broadcast(realtime.NewComment(comment, postID))
	writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	commentID, ok := pathID(r, "commentID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid comment id")
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
	if content == "" || utf8.RuneCountInString(content) > maxCommentContentRunes {
		writeError(w, http.StatusBadRequest, "content must be 1-300 characters")
		return
	}

	existing, err := s.store.GetComment(r.Context(), commentID)
	if err != nil {
		if errors.Is(err, ErrCommentNotFound) {
			writeError(w, http.StatusNotFound, "comment not found")
			return
		}
		log.Printf("feed-service: update comment %d: %v", commentID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if existing.AuthorID != user.ID {
		writeError(w, http.StatusForbidden, "not authorized to update this comment")
		return
	}

	comment, err := s.store.UpdateComment(r.Context(), commentID, content)
	if err != nil {
		log.Printf("feed-service: update comment %d: %v", commentID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, comment)
}

// handleDeleteComment allows removal by the comment's author or by the owner
// of the post it sits on.
func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	commentID, ok := pathID(r, "commentID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	existing, err := s.store.GetComment(r.Context(), commentID)
	if err != nil {
		if errors.Is(err, ErrCommentNotFound) {
			writeError(w, http.StatusNotFound, "comment not found")
			return
		}
		log.Printf("feed-service: delete comment %d: %v", commentID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if existing.AuthorID != user.ID {
		postAuthor, err := s.store.GetPostAuthor(r.Context(), existing.PostID)
		if err != nil || postAuthor != user.ID {
			writeError(w, http.StatusForbidden, "not authorized to delete this comment")
			return
		}
	}

	if err := s.store.DeleteComment(r.Context(), commentID); err != nil {
		log.Printf("feed-service: delete comment %d: %v", commentID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.events.Broadcast(realtime.CommentDeleted(commentID, existing.PostID))
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Comment deleted successfully"})
}
