package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/vidora/vidora/config"
	pginfra "github.com/vidora/vidora/internal/infrastructure/postgres"
	"github.com/vidora/vidora/pkg/helpers"
)

// Seeds a handful of demo channels and videos for local development.
// Safe to re-run; existing rows are left alone.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	hash, err := helpers.HashPassword("password123")
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	users := []struct {
		username, email, fullName string
	}{
		{"alice", "alice@example.com", "Alice Carter"},
		{"bob", "bob@example.com", "Bob Nguyen"},
	}

	ids := map[string]string{}
	for _, u := range users {
		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO users (username, email, full_name, password_hash, avatar_url)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (username) DO UPDATE SET email = users.email
			RETURNING id
		`, u.username, u.email, u.fullName, hash, "https://storage.googleapis.com/vidora-dev/avatars/default.png").Scan(&id)
		if err != nil {
			log.Fatalf("seed user %s: %v", u.username, err)
		}
		ids[u.username] = id
		log.Printf("user %s -> %s", u.username, id)
	}

	videos := []struct {
		owner, title string
		duration     int
	}{
		{"alice", "Getting started with sourdough", 612},
		{"alice", "Weekend in the alps", 304},
		{"bob", "Mechanical keyboard build log", 947},
	}
	for _, v := range videos {
		_, err := pool.Exec(ctx, `
			INSERT INTO videos (owner_id, title, video_url, thumbnail_url, duration_seconds, published)
			VALUES ($1, $2, $3, $4, $5, true)
			ON CONFLICT DO NOTHING
		`, ids[v.owner], v.title,
			"https://storage.googleapis.com/vidora-dev/videos/seed.mp4",
			"https://storage.googleapis.com/vidora-dev/thumbnails/seed.jpg",
			v.duration)
		if err != nil {
			log.Fatalf("seed video %q: %v", v.title, err)
		}
	}

	// bob subscribes to alice
	if _, err := pool.Exec(ctx, `
		INSERT INTO subscriptions (subscriber_id, channel_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING
	`, ids["bob"], ids["alice"]); err != nil {
		log.Fatalf("seed subscription: %v", err)
	}

	log.Println("seed complete")
}
