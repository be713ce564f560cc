package feed

import (
	"errors"
	"log"
	"net/http"

	"feed-service/internal/auth"
	"feed-service/internal/realtime"
)

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

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
		log.Printf("feed-service: like post %d: %v", postID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := s.store.Like(r.Context(), user.ID, postID); err != nil {
		if errors.Is(err, ErrAlreadyLiked) {
			writeError(w, http.StatusBadRequest, "You have already liked this post")
			return
		}
		log.Printf("feed-service: like post %d: %v", postID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.finishLikeChange(w, r, postID, user, true)
}

func (s *Server) handleUnlike(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	postID, ok := pathID(r, "postID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	if err := s.store.Unlike(r.Context(), user.ID, postID); err != nil {
		if errors.Is(err, ErrNotLiked) {
			writeError(w, http.StatusBadRequest, "You have not liked this post")
			return
		}
		log.Printf("feed-service: unlike post %d: %v", postID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.finishLikeChange(w, r, postID, user, false)
}

// handleToggleLike flips the like state and reports the resulting status.
func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

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
		log.Printf("feed-service: toggle like %d: %v", postID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	liked, err := s.store.IsLiked(r.Context(), user.ID, postID)
	if err != nil {
		log.Printf("feed-service: toggle like %d: %v", postID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if liked {
		err = s.store.Unlike(r.Context(), user.ID, postID)
	} else {
		err = s.store.Like(r.Context(), user.ID, postID)
	}
	if err != nil {
		log.Printf("feed-service: toggle like %d: %v", postID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.finishLikeChange(w, r, postID, user, !liked)
}

func (s *Server) handleLikeStatus(w http.ResponseWriter, r *http.Request) {
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
		log.Printf("feed-service: like status %d: %v", postID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	count, err := s.store.LikesCount(r.Context(), postID)
	if err != nil {
		log.Printf("feed-service: like status %d: %v", postID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	liked := false
	if id := viewerID(r); id != 0 {
		liked, err = s.store.IsLiked(r.Context(), id, postID)
		if err != nil {
			log.Printf("feed-service: like status %d: %v", postID, err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	writeJSON(w, http.StatusOK, LikeStatus{IsLiked: liked, LikesCount: count})
}

// finishLikeChange reads the fresh count, broadcasts the change and writes
// the status response.
func (s *Server) finishLikeChange(w http.ResponseWriter, r *http.Request, postID int64, user auth.User, isLike bool) {
	count, err := s.store.LikesCount(r.Context(), postID)
	if err != nil {
		log.Printf("feed-service: likes count %d: %v", postID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.events.Broadcast(realtime.LikeUpdate(postID, count, BriefFromUser(user), isLike))
	writeJSON(w, http.StatusOK, LikeStatus{IsLiked: isLike, LikesCount: count})
}
