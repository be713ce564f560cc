package feed

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestHandleCreateComment(t *testing.T) {
	store := new(MockStore)
	events := new(recordingBroadcaster)
	r := newTestRouter(store, events, alice)

	store.On("GetPostAuthor", mock.Anything, int64(5)).Return(bob.ID, nil)
	created := Comment{ID: 1, Content: "nice one", AuthorID: alice.ID, PostID: 5}
	store.On("CreateComment", mock.Anything, int64(5), alice.ID, "nice one").Return(created, nil)

	rec := do(t, r, "POST", "/comments/post/5", map[string]string{"content": "nice one"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	evs := events.all()
	if assert.Len(t, evs, 1) {
		assert.Equal(t, "new_comment", evs[0].Type)
		assert.Equal(t, int64(5), evs[0].PostID)
	}
}

func TestHandleCreateComment_UnknownPost(t *testing.T) {
	store := new(MockStore)
	events := new(recordingBroadcaster)
	r := newTestRouter(store, events, alice)

	store.On("GetPostAuthor", mock.Anything, int64(99)).Return(int64(0), ErrPostNotFound)

	rec := do(t, r, "POST", "/comments/post/99", map[string]string{"content": "hello?"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, events.all())
}

func TestHandleCreateComment_TooLong(t *testing.T) {
	store := new(MockStore)
	events := new(recordingBroadcaster)
	r := newTestRouter(store, events, alice)

	rec := do(t, r, "POST", "/comments/post/5", map[string]string{
		"content": strings.Repeat("x", maxCommentContentRunes+1),
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, events.all())
}

func TestHandleListComments(t *testing.T) {
	store := new(MockStore)
	r := newTestRouter(store, new(recordingBroadcaster), alice)

	store.On("GetPostAuthor", mock.Anything, int64(5)).Return(bob.ID, nil)
	comments := []Comment{{ID: 1, Content: "first"}, {ID: 2, Content: "second"}}
	store.On("ListPostComments", mock.Anything, int64(5)).Return(comments, nil)

	rec := do(t, r, "GET", "/comments/post/5", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var list CommentList
	_ = json.Unmarshal(rec.Body.Bytes(), &list)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, "first", list.Comments[0].Content)
}

func TestHandleUpdateComment_Forbidden(t *testing.T) {
	store := new(MockStore)
	events := new(recordingBroadcaster)
	r := newTestRouter(store, events, bob)

	store.On("GetComment", mock.Anything, int64(1)).
		Return(Comment{ID: 1, AuthorID: alice.ID, PostID: 5}, nil)

	rec := do(t, r, "PUT", "/comments/1", map[string]string{"content": "edited"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, events.all())
}

func TestHandleDeleteComment_ByAuthor(t *testing.T) {
	store := new(MockStore)
	events := new(recordingBroadcaster)
	r := newTestRouter(store, events, alice)

	store.On("GetComment", mock.Anything, int64(1)).
		Return(Comment{ID: 1, AuthorID: alice.ID, PostID: 5}, nil)
	store.On("DeleteComment", mock.Anything, int64(1)).Return(nil)

	rec := do(t, r, "DELETE", "/comments/1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	evs := events.all()
	if assert.Len(t, evs, 1) {
		assert.Equal(t, "comment_deleted", evs[0].Type)
	}
}

func TestHandleDeleteComment_ByPostOwner(t *testing.T) {
	store := new(MockStore)
	events := new(recordingBroadcaster)
	r := newTestRouter(store, events, bob)

	// alice commented on bob's post; bob may remove it.
	store.On("GetComment", mock.Anything, int64(1)).
		Return(Comment{ID: 1, AuthorID: alice.ID, PostID: 5}, nil)
	store.On("GetPostAuthor", mock.Anything, int64(5)).Return(bob.ID, nil)
	store.On("DeleteComment", mock.Anything, int64(1)).Return(nil)

	rec := do(t, r, "DELETE", "/comments/1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, events.all(), 1)
}

func TestHandleDeleteComment_Stranger(t *testing.T) {
	store := new(MockStore)
	events := new(recordingBroadcaster)
	charlie := alice
	charlie.ID = 3
	r := newTestRouter(store, events, charlie)

	store.On("GetComment", mock.Anything, int64(1)).
		Return(Comment{ID: 1, AuthorID: alice.ID, PostID: 5}, nil)
	store.On("GetPostAuthor", mock.Anything, int64(5)).Return(bob.ID, nil)

	rec := do(t, r, "DELETE", "/comments/1", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, events.all())
}
