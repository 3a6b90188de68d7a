package handlers

import (
	"context"
	"net/http"

	"github.com/etmoore/blog-udacity/internal/auth"
	"github.com/etmoore/blog-udacity/internal/models"
)

// Store is the persistence surface the handlers need: keyed lookup,
// equality queries on indexed fields, and creation-time ordering. The pgx
// store satisfies it; tests substitute an in-memory stub.
type Store interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	CreatePost(ctx context.Context, post models.Post) (*models.Post, error)
	GetPostByID(ctx context.Context, id int64) (*models.Post, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
	UpdatePost(ctx context.Context, id int64, subject, content string) error
	DeletePost(ctx context.Context, id int64) error

	CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error)
	ListCommentsByPost(ctx context.Context, postID int64) ([]models.Comment, error)

	CreateLike(ctx context.Context, postID, userID int64) error
	HasLiked(ctx context.Context, postID, userID int64) (bool, error)
	CountLikes(ctx context.Context, postID int64) (int, error)
}

// Handler carries the dependencies shared by every page handler and guard.
type Handler struct {
	store Store
	codec *auth.Codec
}

func New(store Store, codec *auth.Codec) *Handler {
	return &Handler{store: store, codec: codec}
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
