package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/etmoore/blog-udacity/internal/auth"
	"github.com/etmoore/blog-udacity/internal/config"
	"github.com/etmoore/blog-udacity/internal/db"
	"github.com/etmoore/blog-udacity/internal/handlers"
	appmiddleware "github.com/etmoore/blog-udacity/internal/middleware"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()
	store, err := db.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer store.Close()

	if err := createSchema(ctx, store); err != nil {
		log.Fatalf("schema setup failed: %v", err)
	}

	codec := auth.NewCodec(cfg.SessionSecret)
	h := handlers.New(store, codec)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CorsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler)
	r.Use(appmiddleware.Session(codec, store))

	r.Get("/health", handlers.Health)

	// In-memory rate limiter: 5 credential attempts per minute per IP
	credentialLimiter := appmiddleware.NewRateLimiter(5, time.Minute)

	r.Get("/", h.Index)

	r.Get("/signup", h.SignupForm)
	r.With(credentialLimiter.Limit).Post("/signup", h.Signup)
	r.Get("/login", h.LoginForm)
	r.With(credentialLimiter.Limit).Post("/login", h.Login)
	r.Get("/logout", h.Logout)
	r.With(h.RequireLoggedIn).Get("/welcome", h.Welcome)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireLoggedIn)
		r.Get("/newpost", h.NewPostForm)
		r.Post("/newpost", h.CreatePost)
	})

	r.Route("/{postID:[0-9]+}", func(r chi.Router) {
		r.Use(h.RequirePostExists)
		r.Get("/", h.ShowPost)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireLoggedIn)
			r.With(h.RequireOwnsPost).Get("/delete", h.DeletePost)
			r.With(h.RequireOwnsPost).Get("/edit", h.EditPostForm)
			r.With(h.RequireOwnsPost).Post("/edit", h.UpdatePost)
			r.With(h.RequireLikeAllowed).Get("/like", h.LikePost)
			r.Post("/comment", h.CreateComment)
		})
	})

	r.NotFound(h.NotFound)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// createSchema creates the tables if they don't exist. The unique index on
// users.username and the composite key on likes enforce at the store what
// the handlers also check, so races between check and insert can't corrupt
// the data.
func createSchema(ctx context.Context, store *db.Store) error {
	conn, err := store.Pool().Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
		    id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		    username TEXT NOT NULL UNIQUE,
		    password_hash TEXT NOT NULL,
		    email TEXT NOT NULL DEFAULT '',
		    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS posts (
		    id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		    subject TEXT NOT NULL,
		    content TEXT NOT NULL,
		    author TEXT NOT NULL,
		    user_id BIGINT NOT NULL REFERENCES users(id),
		    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS comments (
		    id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		    content TEXT NOT NULL,
		    author TEXT NOT NULL,
		    user_id BIGINT NOT NULL REFERENCES users(id),
		    post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS likes (
		    post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		    user_id BIGINT NOT NULL REFERENCES users(id),
		    PRIMARY KEY (post_id, user_id)
		);`,
	}
	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
