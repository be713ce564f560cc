package feed

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"feed-service/internal/realtime"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListPosts(ctx context.Context, viewerID int64, page, pageSize int) ([]Post, int, error) {
	args := m.Called(ctx, viewerID, page, pageSize)
	return args.Get(0).([]Post), args.Int(1), args.Error(2)
}

func (m *MockStore) ListUserPosts(ctx context.Context, authorID, viewerID int64, page, pageSize int) ([]Post, int, error) {
	args := m.Called(ctx, authorID, viewerID, page, pageSize)
	return args.Get(0).([]Post), args.Int(1), args.Error(2)
}

func (m *MockStore) GetPost(ctx context.Context, id, viewerID int64) (Post, error) {
	args := m.Called(ctx, id, viewerID)
	return args.Get(0).(Post), args.Error(1)
}

func (m *MockStore) GetPostAuthor(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) CreatePost(ctx context.Context, authorID int64, content string, imageURL *string) (Post, error) {
	args := m.Called(ctx, authorID, content, imageURL)
	return args.Get(0).(Post), args.Error(1)
}

func (m *MockStore) UpdatePost(ctx context.Context, id, viewerID int64, content string) (Post, error) {
	args := m.Called(ctx, id, viewerID, content)
	return args.Get(0).(Post), args.Error(1)
}

func (m *MockStore) DeletePost(ctx context.Context, id int64) (*string, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*string), args.Error(1)
}

func (m *MockStore) ListPostComments(ctx context.Context, postID int64) ([]Comment, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).([]Comment), args.Error(1)
}

func (m *MockStore) GetComment(ctx context.Context, id int64) (Comment, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Comment), args.Error(1)
}

func (m *MockStore) CreateComment(ctx context.Context, postID, authorID int64, content string) (Comment, error) {
	args := m.Called(ctx, postID, authorID, content)
	return args.Get(0).(Comment), args.Error(1)
}

func (m *MockStore) UpdateComment(ctx context.Context, id int64, content string) (Comment, error) {
	args := m.Called(ctx, id, content)
	return args.Get(0).(Comment), args.Error(1)
}

func (m *MockStore) DeleteComment(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) Like(ctx context.Context, userID, postID int64) error {
	args := m.Called(ctx, userID, postID)
	return args.Error(0)
}

func (m *MockStore) Unlike(ctx context.Context, userID, postID int64) error {
	args := m.Called(ctx, userID, postID)
	return args.Error(0)
}

func (m *MockStore) IsLiked(ctx context.Context, userID, postID int64) (bool, error) {
	args := m.Called(ctx, userID, postID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) LikesCount(ctx context.Context, postID int64) (int, error) {
	args := m.Called(ctx, postID)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) UserExists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// recordingBroadcaster captures every event a handler pushes.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (b *recordingBroadcaster) Broadcast(ev realtime.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

func (b *recordingBroadcaster) all() []realtime.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]realtime.Event(nil), b.events...)
}
