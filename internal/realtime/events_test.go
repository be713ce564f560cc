package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshal(t *testing.T, ev Event) string {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return string(b)
}

func TestEventShapes(t *testing.T) {
	post := map[string]any{"id": 1, "content": "hello"}
	assert.JSONEq(t,
		`{"type":"new_post","data":{"id":1,"content":"hello"}}`,
		marshal(t, NewPost(post)))

	comment := map[string]any{"id": 2, "content": "hi"}
	assert.JSONEq(t,
		`{"type":"new_comment","data":{"id":2,"content":"hi"},"post_id":5}`,
		marshal(t, NewComment(comment, 5)))

	user := map[string]any{"id": 7, "username": "alice"}
	assert.JSONEq(t,
		`{"type":"new_like","data":{"post_id":5,"likes_count":3,"user":{"id":7,"username":"alice"}}}`,
		marshal(t, LikeUpdate(5, 3, user, true)))
	assert.JSONEq(t,
		`{"type":"unlike","data":{"post_id":5,"likes_count":2,"user":{"id":7,"username":"alice"}}}`,
		marshal(t, LikeUpdate(5, 2, user, false)))

	assert.JSONEq(t,
		`{"type":"post_deleted","data":{"post_id":5}}`,
		marshal(t, PostDeleted(5)))

	assert.JSONEq(t,
		`{"type":"comment_deleted","data":{"comment_id":2,"post_id":5}}`,
		marshal(t, CommentDeleted(2, 5)))

	assert.JSONEq(t, `{"type":"pong"}`, marshal(t, Pong()))

	assert.JSONEq(t,
		`{"type":"subscribed","data":{"topic":"feed"}}`,
		marshal(t, Subscribed("feed")))
}

func TestConnectedEvent(t *testing.T) {
	// Anonymous sessions report a null user id, not a missing field.
	assert.JSONEq(t,
		`{"type":"connected","data":{"authenticated":false,"user_id":null,"message":"Connected to feed updates"}}`,
		marshal(t, Connected(0, false, "Connected to feed updates")))

	assert.JSONEq(t,
		`{"type":"connected","data":{"authenticated":true,"user_id":7,"message":"Connected to feed updates"}}`,
		marshal(t, Connected(7, true, "Connected to feed updates")))
}
