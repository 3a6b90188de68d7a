package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/etmoore/blog-udacity/internal/middleware"
	"github.com/etmoore/blog-udacity/internal/models"
)

// Guards are composable preconditions in front of the mutating handlers.
// Each one either passes the request along or resolves it completely with a
// redirect or rendered page; a failed guard never reaches the handler and
// never leaves partial state. Composition order is fixed per route:
//
//	new post:     RequireLoggedIn
//	edit/delete:  RequireLoggedIn -> RequirePostExists -> RequireOwnsPost
//	like:         RequireLoggedIn -> RequirePostExists -> RequireLikeAllowed
//	comment:      RequireLoggedIn -> RequirePostExists

type postKeyType string

const postContextKey postKeyType = "guards.post"

// CurrentPost returns the post loaded by RequirePostExists. Handlers behind
// that guard can rely on it being non-nil.
func CurrentPost(r *http.Request) *models.Post {
	post, _ := r.Context().Value(postContextKey).(*models.Post)
	return post
}

// RequireLoggedIn redirects anonymous requests to the login page.
func (h *Handler) RequireLoggedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if middleware.CurrentUser(r) == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePostExists parses the post id from the path and loads the post,
// answering 404 when it does not exist. The loaded post rides along in the
// context so downstream guards and handlers skip a second lookup.
func (h *Handler) RequirePostExists(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "postID"), 10, 64)
		if err != nil {
			h.renderNotFound(w, r)
			return
		}
		post, err := h.store.GetPostByID(r.Context(), id)
		if err != nil {
			h.renderServerError(w, r, err)
			return
		}
		if post == nil {
			h.renderNotFound(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), postContextKey, post)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireOwnsPost lets only the post's owner through. Ownership comes from
// the stored user id, never from the displayed author name. A non-owner gets
// the post page back with a permission message rather than a hard error.
func (h *Handler) RequireOwnsPost(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := middleware.CurrentUser(r)
		post := CurrentPost(r)
		if user == nil || user.ID != post.UserID {
			h.renderPostPage(w, r, post, "You do not have permission to modify this post.", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireLikeAllowed rejects likes on the user's own post and repeat likes,
// in that order. Rejections render the post page with an inline message and
// the current like count and comments.
func (h *Handler) RequireLikeAllowed(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := middleware.CurrentUser(r)
		post := CurrentPost(r)
		if user == nil || user.ID == post.UserID {
			h.renderPostPage(w, r, post, "You cannot like your own post.", http.StatusForbidden)
			return
		}
		liked, err := h.store.HasLiked(r.Context(), post.ID, user.ID)
		if err != nil {
			h.renderServerError(w, r, err)
			return
		}
		if liked {
			h.renderPostPage(w, r, post, "You have already liked this post.", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// renderPostPage shows a post with its comments and like count, optionally
// annotated with an inline error. Both the show handler and failing guards
// land here.
func (h *Handler) renderPostPage(w http.ResponseWriter, r *http.Request, post *models.Post, errMsg string, status int) {
	comments, err := h.store.ListCommentsByPost(r.Context(), post.ID)
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	likeCount, err := h.store.CountLikes(r.Context(), post.ID)
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.render(w, r, status, "post-show.html", map[string]any{
		"Post":      post,
		"Comments":  comments,
		"LikeCount": likeCount,
		"Error":     errMsg,
	})
}
