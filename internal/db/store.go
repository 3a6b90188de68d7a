package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/etmoore/blog-udacity/internal/models"
)

// ErrDuplicate is returned when an insert violates a unique constraint,
// e.g. a taken username or a repeated (post, user) like.
var ErrDuplicate = errors.New("duplicate record")

type Store struct {
	pool *pgxpool.Pool
}

// Pool returns the underlying pgxpool.Pool
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// User persistence

func (s *Store) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}

	const query = `
		INSERT INTO users (username, password_hash, email)
		VALUES ($1, $2, $3)
		RETURNING id, username, password_hash, email, created_at
	`

	var created models.User
	err := s.pool.QueryRow(ctx, query, user.Username, user.PasswordHash, user.Email).Scan(
		&created.ID,
		&created.Username,
		&created.PasswordHash,
		&created.Email,
		&created.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &created, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}
	const query = `
		SELECT id, username, password_hash, email, created_at
		FROM users
		WHERE username = $1
	`
	var user models.User
	err := s.pool.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Email,
		&user.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}
	const query = `
		SELECT id, username, password_hash, email, created_at
		FROM users
		WHERE id = $1
	`
	var user models.User
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Email,
		&user.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &user, nil
}

// Post persistence

func (s *Store) CreatePost(ctx context.Context, post models.Post) (*models.Post, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}

	const query = `
		INSERT INTO posts (subject, content, author, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, subject, content, author, user_id, created_at
	`

	var created models.Post
	err := s.pool.QueryRow(ctx, query, post.Subject, post.Content, post.Author, post.UserID).Scan(
		&created.ID,
		&created.Subject,
		&created.Content,
		&created.Author,
		&created.UserID,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &created, nil
}

func (s *Store) GetPostByID(ctx context.Context, id int64) (*models.Post, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}
	const query = `
		SELECT id, subject, content, author, user_id, created_at
		FROM posts
		WHERE id = $1
	`
	var post models.Post
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&post.ID,
		&post.Subject,
		&post.Content,
		&post.Author,
		&post.UserID,
		&post.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &post, nil
}

func (s *Store) ListPosts(ctx context.Context) ([]models.Post, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}
	const query = `
		SELECT id, subject, content, author, user_id, created_at
		FROM posts
		ORDER BY created_at DESC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(
			&post.ID,
			&post.Subject,
			&post.Content,
			&post.Author,
			&post.UserID,
			&post.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return posts, nil
}

// UpdatePost changes subject and content only. Owner and creation time are
// fixed at creation.
func (s *Store) UpdatePost(ctx context.Context, id int64, subject, content string) error {
	if s.pool == nil {
		return errors.New("db not initialized")
	}
	const query = `UPDATE posts SET subject = $2, content = $3 WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query, id, subject, content)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update post %d: no such post", id)
	}
	return nil
}

// DeletePost removes the post; comments and likes go with it via
// ON DELETE CASCADE.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	if s.pool == nil {
		return errors.New("db not initialized")
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// Comment persistence

func (s *Store) CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}

	const query = `
		INSERT INTO comments (content, author, user_id, post_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, content, author, user_id, post_id, created_at
	`

	var created models.Comment
	err := s.pool.QueryRow(ctx, query, comment.Content, comment.Author, comment.UserID, comment.PostID).Scan(
		&created.ID,
		&created.Content,
		&created.Author,
		&created.UserID,
		&created.PostID,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return &created, nil
}

func (s *Store) ListCommentsByPost(ctx context.Context, postID int64) ([]models.Comment, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}
	const query = `
		SELECT id, content, author, user_id, post_id, created_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var comment models.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.Content,
			&comment.Author,
			&comment.UserID,
			&comment.PostID,
			&comment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return comments, nil
}

// Like persistence

// CreateLike inserts the (post, user) pair. The primary key on likes makes
// a second like for the same pair come back as ErrDuplicate.
func (s *Store) CreateLike(ctx context.Context, postID, userID int64) error {
	if s.pool == nil {
		return errors.New("db not initialized")
	}
	const query = `INSERT INTO likes (post_id, user_id) VALUES ($1, $2)`
	if _, err := s.pool.Exec(ctx, query, postID, userID); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create like: %w", err)
	}
	return nil
}

func (s *Store) HasLiked(ctx context.Context, postID, userID int64) (bool, error) {
	if s.pool == nil {
		return false, errors.New("db not initialized")
	}
	const query = `SELECT EXISTS (SELECT 1 FROM likes WHERE post_id = $1 AND user_id = $2)`
	var liked bool
	if err := s.pool.QueryRow(ctx, query, postID, userID).Scan(&liked); err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	return liked, nil
}

func (s *Store) CountLikes(ctx context.Context, postID int64) (int, error) {
	if s.pool == nil {
		return 0, errors.New("db not initialized")
	}
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}
