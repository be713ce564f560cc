package feed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrAlreadyLiked    = errors.New("post already liked")
	ErrNotLiked        = errors.New("post not liked")
)

type Store interface {
	ListPosts(ctx context.Context, viewerID int64, page, pageSize int) ([]Post, int, error)
	ListUserPosts(ctx context.Context, authorID, viewerID int64, page, pageSize int) ([]Post, int, error)
	GetPost(ctx context.Context, id, viewerID int64) (Post, error)
	// GetPostAuthor doubles as the existence check: ErrPostNotFound when the
	// post is gone.
	GetPostAuthor(ctx context.Context, id int64) (int64, error)
	CreatePost(ctx context.Context, authorID int64, content string, imageURL *string) (Post, error)
	UpdatePost(ctx context.Context, id, viewerID int64, content string) (Post, error)
	// DeletePost returns the stored image URL (if any) so the caller can
	// remove the file after the row is gone.
	DeletePost(ctx context.Context, id int64) (*string, error)

	ListPostComments(ctx context.Context, postID int64) ([]Comment, error)
	GetComment(ctx context.Context, id int64) (Comment, error)
	CreateComment(ctx context.Context, postID, authorID int64, content string) (Comment, error)
	UpdateComment(ctx context.Context, id int64, content string) (Comment, error)
	DeleteComment(ctx context.Context, id int64) error

	Like(ctx context.Context, userID, postID int64) error
	Unlike(ctx context.Context, userID, postID int64) error
	IsLiked(ctx context.Context, userID, postID int64) (bool, error)
	LikesCount(ctx context.Context, postID int64) (int, error)

	UserExists(ctx context.Context, id int64) (bool, error)
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func AutoMigrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS posts(
          id BIGSERIAL PRIMARY KEY,
          content TEXT NOT NULL,
          image_url VARCHAR(500),
          author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
          created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
          updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
      )`); err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, `
      CREATE INDEX IF NOT EXISTS ix_posts_author_created ON posts(author_id, created_at)`); err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, `
      CREATE INDEX IF NOT EXISTS ix_posts_created ON posts(created_at)`); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS comments(
          id BIGSERIAL PRIMARY KEY,
          content TEXT NOT NULL,
          author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
          post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
          created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
          updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
      )`); err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, `
      CREATE INDEX IF NOT EXISTS ix_comments_post_created ON comments(post_id, created_at)`); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS likes(
          id BIGSERIAL PRIMARY KEY,
          user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
          post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
          created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
          UNIQUE(user_id, post_id)
      )`); err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, `
      CREATE INDEX IF NOT EXISTS ix_likes_post_user ON likes(post_id, user_id)`); err != nil {
		return err
	}

	return nil
}

// $1 is always the viewer id; 0 (anonymous) never matches a like.
const postColumns = `
        p.id, p.content, p.image_url, p.author_id, p.created_at, p.updated_at,
        u.id, u.username, u.display_name, u.avatar_url,
        (SELECT count(*) FROM likes l WHERE l.post_id = p.id) AS likes_count,
        (SELECT count(*) FROM comments c WHERE c.post_id = p.id) AS comments_count,
        EXISTS(SELECT 1 FROM likes l WHERE l.post_id = p.id AND l.user_id = $1) AS is_liked`

func scanPost(row pgx.Row) (Post, error) {
	var p Post
	err := row.Scan(
		&p.ID, &p.Content, &p.ImageURL, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt,
		&p.Author.ID, &p.Author.Username, &p.Author.DisplayName, &p.Author.AvatarURL,
		&p.LikesCount, &p.CommentsCount, &p.IsLiked,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Post{}, ErrPostNotFound
		}
		return Post{}, err
	}
	return p, nil
}

func (s *PostgresStore) scanPostRows(rows pgx.Rows) ([]Post, error) {
	defer rows.Close()

	posts := make([]Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *PostgresStore) ListPosts(ctx context.Context, viewerID int64, page, pageSize int) ([]Post, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM posts`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, `SELECT `+postColumns+`
        FROM posts p
        JOIN users u ON u.id = p.author_id
        ORDER BY p.created_at DESC, p.id DESC
        LIMIT $2 OFFSET $3`,
		viewerID, pageSize, (page-1)*pageSize,
	)
	if err != nil {
		return nil, 0, err
	}

	posts, err := s.scanPostRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (s *PostgresStore) ListUserPosts(ctx context.Context, authorID, viewerID int64, page, pageSize int) ([]Post, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM posts WHERE author_id = $1`, authorID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, `SELECT `+postColumns+`
        FROM posts p
        JOIN users u ON u.id = p.author_id
        WHERE p.author_id = $4
        ORDER BY p.created_at DESC, p.id DESC
        LIMIT $2 OFFSET $3`,
		viewerID, pageSize, (page-1)*pageSize, authorID,
	)
	if err != nil {
		return nil, 0, err
	}

	posts, err := s.scanPostRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (s *PostgresStore) GetPost(ctx context.Context, id, viewerID int64) (Post, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+postColumns+`
        FROM posts p
        JOIN users u ON u.id = p.author_id
        WHERE p.id = $2`,
		viewerID, id,
	)
	return scanPost(row)
}

func (s *PostgresStore) GetPostAuthor(ctx context.Context, id int64) (int64, error) {
	var authorID int64
	err := s.pool.QueryRow(ctx, `SELECT author_id FROM posts WHERE id = $1`, id).Scan(&authorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrPostNotFound
		}
		return 0, err
	}
	return authorID, nil
}

func (s *PostgresStore) CreatePost(ctx context.Context, authorID int64, content string, imageURL *string) (Post, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `INSERT INTO posts (content, image_url, author_id)
        VALUES ($1, $2, $3)
        RETURNING id`,
		content, imageURL, authorID,
	).Scan(&id)
	if err != nil {
		return Post{}, err
	}
	// Re-read through the hydrating query so the response and the broadcast
	// payload carry the author brief and counts.
	return s.GetPost(ctx, id, authorID)
}

func (s *PostgresStore) UpdatePost(ctx context.Context, id, viewerID int64, content string) (Post, error) {
	tag, err := s.pool.Exec(ctx, `UPDATE posts SET content = $1, updated_at = now() WHERE id = $2`, content, id)
	if err != nil {
		return Post{}, err
	}
	if tag.RowsAffected() == 0 {
		return Post{}, ErrPostNotFound
	}
	return s.GetPost(ctx, id, viewerID)
}

func (s *PostgresStore) DeletePost(ctx context.Context, id int64) (*string, error) {
	var imageURL *string
	err := s.pool.QueryRow(ctx, `DELETE FROM posts WHERE id = $1 RETURNING image_url`, id).Scan(&imageURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return imageURL, nil
}

const commentColumns = `
        c.id, c.content, c.author_id, c.post_id, c.created_at, c.updated_at,
        u.id, u.username, u.display_name, u.avatar_url`

func scanComment(row pgx.Row) (Comment, error) {
	var c Comment
	err := row.Scan(
		&c.ID, &c.Content, &c.AuthorID, &c.PostID, &c.CreatedAt, &c.UpdatedAt,
		&c.Author.ID, &c.Author.Username, &c.Author.DisplayName, &c.Author.AvatarURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Comment{}, ErrCommentNotFound
		}
		return Comment{}, err
	}
	return c, nil
}

func (s *PostgresStore) ListPostComments(ctx context.Context, postID int64) ([]Comment, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+commentColumns+`
        FROM comments c
        JOIN users u ON u.id = c.author_id
        WHERE c.post_id = $1
        ORDER BY c.created_at ASC, c.id ASC`,
		postID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *PostgresStore) GetComment(ctx context.Context, id int64) (Comment, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+commentColumns+`
        FROM comments c
        JOIN users u ON u.id = c.author_id
        WHERE c.id = $1`,
		id,
	)
	return scanComment(row)
}

func (s *PostgresStore) CreateComment(ctx context.Context, postID, authorID int64, content string) (Comment, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `INSERT INTO comments (content, author_id, post_id)
        VALUES ($1, $2, $3)
        RETURNING id`,
		content, authorID, postID,
	).Scan(&id)
	if err != nil {
		return Comment{}, err
	}
	return s.GetComment(ctx, id)
}

func (s *PostgresStore) UpdateComment(ctx context.Context, id int64, content string) (Comment, error) {
	tag, err := s.pool.Exec(ctx, `UPDATE comments SET content = $1, updated_at = now() WHERE id = $2`, content, id)
	if err != nil {
		return Comment{}, err
	}
	if tag.RowsAffected() == 0 {
		return Comment{}, ErrCommentNotFound
	}
	return s.GetComment(ctx, id)
}

func (s *PostgresStore) DeleteComment(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (s *PostgresStore) Like(ctx context.Context, userID, postID int64) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO likes (user_id, post_id) VALUES ($1, $2)`, userID, postID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyLiked
		}
		return err
	}
	return nil
}

func (s *PostgresStore) Unlike(ctx context.Context, userID, postID int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM likes WHERE user_id = $1 AND post_id = $2`, userID, postID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotLiked
	}
	return nil
}

func (s *PostgresStore) IsLiked(ctx context.Context, userID, postID int64) (bool, error) {
	var liked bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(
        SELECT 1 FROM likes WHERE user_id = $1 AND post_id = $2)`,
		userID, postID,
	).Scan(&liked)
	return liked, err
}

func (s *PostgresStore) LikesCount(ctx context.Context, postID int64) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM likes WHERE post_id = $1`, postID).Scan(&count)
	return count, err
}

func (s *PostgresStore) UserExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
