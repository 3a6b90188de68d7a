package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/etmoore/blog-udacity/internal/db"
	"github.com/etmoore/blog-udacity/internal/middleware"
	"github.com/etmoore/blog-udacity/internal/models"
)

// Index lists every post, newest first.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.ListPosts(r.Context())
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "post-index.html", map[string]any{
		"Posts": posts,
	})
}

// ShowPost renders a post with its comments and like count. The post was
// loaded by RequirePostExists.
func (h *Handler) ShowPost(w http.ResponseWriter, r *http.Request) {
	h.renderPostPage(w, r, CurrentPost(r), "", http.StatusOK)
}

// NewPostForm shows the empty post form.
func (h *Handler) NewPostForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "post-new.html", nil)
}

// CreatePost stores a new post owned by the current user and redirects to
// its permalink. The insert is synchronous, so the redirect target is
// readable immediately.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)
	subject := strings.TrimSpace(r.PostFormValue("subject"))
	content := strings.TrimSpace(r.PostFormValue("content"))
	if subject == "" || content == "" {
		h.render(w, r, http.StatusBadRequest, "post-new.html", map[string]any{
			"Subject": subject,
			"Content": content,
			"Error":   "Subject and content are both required.",
		})
		return
	}

	created, err := h.store.CreatePost(r.Context(), models.Post{
		Subject: subject,
		Content: content,
		Author:  user.Username,
		UserID:  user.ID,
	})
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/%d", created.ID), http.StatusSeeOther)
}

// EditPostForm shows the edit form prefilled with the post's current state.
func (h *Handler) EditPostForm(w http.ResponseWriter, r *http.Request) {
	post := CurrentPost(r)
	h.render(w, r, http.StatusOK, "post-edit.html", map[string]any{
		"Post":    post,
		"Subject": post.Subject,
		"Content": post.Content,
	})
}

// UpdatePost rewrites subject and content; owner and creation time never
// change.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	post := CurrentPost(r)
	subject := strings.TrimSpace(r.PostFormValue("subject"))
	content := strings.TrimSpace(r.PostFormValue("content"))
	if subject == "" || content == "" {
		h.render(w, r, http.StatusBadRequest, "post-edit.html", map[string]any{
			"Post":    post,
			"Subject": subject,
			"Content": content,
			"Error":   "Subject and content are both required.",
		})
		return
	}

	if err := h.store.UpdatePost(r.Context(), post.ID, subject, content); err != nil {
		h.renderServerError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/%d", post.ID), http.StatusSeeOther)
}

// DeletePost removes the post and sends the owner back to the index.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	post := CurrentPost(r)
	if err := h.store.DeletePost(r.Context(), post.ID); err != nil {
		h.renderServerError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LikePost records the like and returns to the post. RequireLikeAllowed has
// already screened owner likes and repeats; the unique constraint backstops
// the race between two concurrent likes.
func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)
	post := CurrentPost(r)
	if err := h.store.CreateLike(r.Context(), post.ID, user.ID); err != nil {
		// A duplicate here means a like slipped in since the guard checked.
		if errors.Is(err, db.ErrDuplicate) {
			h.renderPostPage(w, r, post, "You have already liked this post.", http.StatusForbidden)
			return
		}
		h.renderServerError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/%d", post.ID), http.StatusSeeOther)
}

// CreateComment appends a comment to the post and returns to it.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)
	post := CurrentPost(r)
	content := strings.TrimSpace(r.PostFormValue("content"))
	if content == "" {
		h.renderPostPage(w, r, post, "Comment content is required.", http.StatusBadRequest)
		return
	}

	if _, err := h.store.CreateComment(r.Context(), models.Comment{
		Content: content,
		Author:  user.Username,
		UserID:  user.ID,
		PostID:  post.ID,
	}); err != nil {
		h.renderServerError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/%d", post.ID), http.StatusSeeOther)
}
