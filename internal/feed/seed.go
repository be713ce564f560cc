package feed

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	username    string
	email       string
	password    string
	displayName string
	bio         string
}

var seedUsers = []seedUser{
	{"demo", "demo@example.com", "demo123", "Demo User", "Just here to try things out"},
	{"alice", "alice@example.com", "alice123", "Alice Johnson", "Coffee enthusiast and amateur photographer"},
	{"bob", "bob@example.com", "bob123", "Bob Smith", "Building things on the internet"},
	{"charlie", "charlie@example.com", "charlie123", "Charlie Davis", "Runner, reader, occasional poster"},
}

var seedPosts = []struct {
	author  string
	content string
}{
	{"alice", "Just watched the sunrise from my balcony. Worth waking up early for."},
	{"bob", "Finally shipped the feature I've been working on for two weeks. Time for a break."},
	{"charlie", "10k this morning. Legs are done but the head is clear."},
	{"demo", "Hello everyone! First post here."},
	{"alice", "New lens arrived today. Expect way too many photos of my cat."},
	{"bob", "Hot take: code reviews are the best part of the job."},
	{"charlie", "Halfway through a great book and already sad it will end."},
	{"alice", "Rainy day, good coffee, nothing to do. Perfect."},
	{"demo", "Is anyone else getting into bread baking? Need starter tips."},
	{"bob", "Switched my editor theme for the first time in five years. Feels illegal."},
	{"charlie", "Signed up for the autumn half marathon. No backing out now."},
	{"alice", "Golden hour tonight was unreal."},
}

var seedComments = []struct {
	author  string
	post    int
	content string
}{
	{"bob", 0, "Beautiful! Which direction does your balcony face?"},
	{"charlie", 0, "Early mornings are underrated."},
	{"alice", 1, "Congrats! What did you ship?"},
	{"demo", 2, "Impressive pace, keep it up!"},
	{"alice", 3, "Welcome!"},
	{"bob", 8, "Keep the starter warm and feed it daily, that's most of it."},
	{"charlie", 9, "Which theme? Asking for a friend."},
	{"demo", 11, "Please post the photos!"},
}

var seedLikes = []struct {
	user string
	post int
}{
	{"bob", 0}, {"charlie", 0}, {"demo", 0},
	{"alice", 1}, {"charlie", 1},
	{"alice", 2}, {"bob", 2}, {"demo", 2},
	{"alice", 3},
	{"bob", 4}, {"demo", 4},
	{"charlie", 5},
	{"alice", 6},
	{"bob", 7}, {"charlie", 7},
	{"alice", 9},
	{"demo", 10},
	{"bob", 11}, {"charlie", 11}, {"demo", 11},
}

// SeedDemoData fills an empty database with demo accounts and a starter
// feed. It is a no-op once any user exists.
func SeedDemoData(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log.Println("feed-service: seeding demo data")

	userIDs := make(map[string]int64, len(seedUsers))
	for _, u := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		var id int64
		err = pool.QueryRow(ctx, `INSERT INTO users (username, email, hashed_password, display_name, bio)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING id`,
			u.username, u.email, string(hash), u.displayName, u.bio,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.username, err)
		}
		userIDs[u.username] = id
	}

	// Staggered timestamps so the feed has a believable history.
	base := time.Now().Add(-time.Duration(len(seedPosts)) * 3 * time.Hour)
	postIDs := make([]int64, len(seedPosts))
	for i, p := range seedPosts {
		createdAt := base.Add(time.Duration(i) * 3 * time.Hour)
		var id int64
		err := pool.QueryRow(ctx, `INSERT INTO posts (content, author_id, created_at, updated_at)
            VALUES ($1, $2, $3, $3)
            RETURNING id`,
			p.content, userIDs[p.author], createdAt,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed post %d: %w", i, err)
		}
		postIDs[i] = id
	}

	for i, c := range seedComments {
		_, err := pool.Exec(ctx, `INSERT INTO comments (content, author_id, post_id)
            VALUES ($1, $2, $3)`,
			c.content, userIDs[c.author], postIDs[c.post],
		)
		if err != nil {
			return fmt.Errorf("seed comment %d: %w", i, err)
		}
	}

	for i, l := range seedLikes {
		_, err := pool.Exec(ctx, `INSERT INTO likes (user_id, post_id) VALUES ($1, $2)`,
			userIDs[l.user], postIDs[l.post],
		)
		if err != nil {
			return fmt.Errorf("seed like %d: %w", i, err)
		}
	}

	log.Printf("feed-service: seeded %d users, %d posts", len(seedUsers), len(seedPosts))
	return nil
}
