package feed

import (
	"time"

	"feed-service/internal/auth"
)

type UserBrief struct {
	ID          int64   `json:"id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

func BriefFromUser(u auth.User) UserBrief {
	return UserBrief{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}

// Post is both the storage projection and the wire response: counts and the
// author brief are always hydrated, is_liked is relative to the viewer.
type Post struct {
	ID            int64     `json:"id"`
	Content       string    `json:"content"`
	ImageURL      *string   `json:"image_url"`
	AuthorID      int64     `json:"author_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	Author        UserBrief `json:"author"`
	IsLiked       bool      `json:"is_liked"`
}

type PostList struct {
	Posts    []Post `json:"posts"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	HasMore  bool   `json:"has_more"`
}

type Comment struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	AuthorID  int64     `json:"author_id"`
	PostID    int64     `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Author    UserBrief `json:"author"`
}

type CommentList struct {
	Comments []Comment `json:"comments"`
	Total    int       `json:"total"`
}

type LikeStatus struct {
	IsLiked    bool `json:"is_liked"`
	LikesCount int  `json:"likes_count"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
