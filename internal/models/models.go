package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Post struct {
	ID      int64  `json:"id"`
	Subject string `json:"subject"`
	Content string `json:"content"`
	// Author is the owner's username, denormalized for display only.
	// Authorization always goes through UserID.
	Author    string    `json:"author"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
	// Author is display-only; UserID is the source of truth.
	Author    string    `json:"author"`
	UserID    int64     `json:"user_id"`
	PostID    int64     `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Like struct {
	PostID int64 `json:"post_id"`
	UserID int64 `json:"user_id"`
}
