package realtime

// Event is the wire envelope for everything the server pushes. The type set
// is closed: events are built only through the constructors below, one per
// mutation kind plus the session envelopes.
type Event struct {
	Type   string `json:"type"`
	Data   any    `json:"data,omitempty"`
	PostID int64  `json:"post_id,omitempty"`
}

type LikeData struct {
	PostID     int64 `json:"post_id"`
	LikesCount int   `json:"likes_count"`
	User       any   `json:"user"`
}

type PostDeletedData struct {
	PostID int64 `json:"post_id"`
}

type CommentDeletedData struct {
	CommentID int64 `json:"comment_id"`
	PostID    int64 `json:"post_id"`
}

type ConnectedData struct {
	Authenticated bool   `json:"authenticated"`
	UserID        *int64 `json:"user_id"`
	Message       string `json:"message"`
}

type SubscribedData struct {
	Topic string `json:"topic"`
}

// NewPost wraps an already hydrated post payload. Constructors never load
// anything themselves; the caller resolves all fields before committing.
func NewPost(post any) Event {
	return Event{Type: "new_post", Data: post}
}

func NewComment(comment any, postID int64) Event {
	return Event{Type: "new_comment", Data: comment, PostID: postID}
}

func LikeUpdate(postID int64, likesCount int, user any, isLike bool) Event {
	typ := "new_like"
	if !isLike {
		typ = "unlike"
	}
	return Event{Type: typ, Data: LikeData{PostID: postID, LikesCount: likesCount, User: user}}
}

func PostDeleted(postID int64) Event {
	return Event{Type: "post_deleted", Data: PostDeletedData{PostID: postID}}
}

func CommentDeleted(commentID, postID int64) Event {
	return Event{Type: "comment_deleted", Data: CommentDeletedData{CommentID: commentID, PostID: postID}}
}

func Connected(userID int64, authenticated bool, message string) Event {
	data := ConnectedData{Authenticated: authenticated, Message: message}
	if authenticated {
		id := userID
		data.UserID = &id
	}
	return Event{Type: "connected", Data: data}
}

func Subscribed(topic string) Event {
	return Event{Type: "subscribed", Data: SubscribedData{Topic: topic}}
}

func Pong() Event {
	return Event{Type: "pong"}
}
