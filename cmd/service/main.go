package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"feed-service/internal/auth"
	"feed-service/internal/feed"
	"feed-service/internal/realtime"
)

func main() {
	ctx := context.Background()

	cfg, err := loadConfigFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	// Postgres
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("feed-service: connect postgres: %v", err)
	}
	defer pool.Close()

	if err := auth.AutoMigrate(ctx, pool); err != nil {
		log.Fatalf("feed-service: migrate users: %v", err)
	}
	if err := feed.AutoMigrate(ctx, pool); err != nil {
		log.Fatalf("feed-service: migrate feed: %v", err)
	}
	if cfg.SeedDemoData {
		if err := feed.SeedDemoData(ctx, pool); err != nil {
			log.Fatalf("feed-service: seed: %v", err)
		}
	}

	// Redis (rate limiting)
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("feed-service: invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	uploader, err := feed.NewUploader(cfg.UploadDir, "/uploads", cfg.MaxUploadBytes)
	if err != nil {
		log.Fatalf("feed-service: uploads dir: %v", err)
	}

	authSrv := auth.NewServer(auth.NewPostgresRepository(pool), cfg.JWTSecret, cfg.AccessTokenTTL)

	hub := realtime.NewHub()
	rtSrv := realtime.NewServer(hub, authSrv)

	rl := feed.NewRateLimiter(rdb)
	feedSrv := feed.NewServer(feed.NewPostgresStore(pool), hub, uploader, rl)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(cfg.CORSAllowedOrigin))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(rl.Limit("global", 100, time.Minute))
		r.Mount("/api/auth", authSrv.Router())
		r.Mount("/api", feedSrv.Router(authSrv.RequireAuth, authSrv.OptionalAuth))
	})

	// Без Timeout: websocket-соединения живут дольше минуты.
	r.Mount("/ws", rtSrv.Router())

	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"service":"feed-service","status":"ok"}`))
	})

	log.Printf("feed-service listening on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("feed-service: %v", err)
	}
}
