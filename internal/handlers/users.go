package handlers

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/etmoore/blog-udacity/internal/auth"
	"github.com/etmoore/blog-udacity/internal/db"
	"github.com/etmoore/blog-udacity/internal/middleware"
	"github.com/etmoore/blog-udacity/internal/models"
)

var (
	usernameRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)
	passwordRE = regexp.MustCompile(`^.{3,20}$`)
	emailRE    = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

func validUsername(username string) bool { return usernameRE.MatchString(username) }
func validPassword(password string) bool { return passwordRE.MatchString(password) }

// validEmail accepts an absent email; shape is only checked when present.
func validEmail(email string) bool { return email == "" || emailRE.MatchString(email) }

// SignupForm shows the empty signup form.
func (h *Handler) SignupForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "signup-form.html", nil)
}

// Signup validates the form, creates the account, and logs the new user in.
// Field errors are rendered inline next to their inputs. The username unique
// constraint in the store is the real duplicate authority; the form just
// reports it.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	verify := r.PostFormValue("verify")
	email := r.PostFormValue("email")

	data := map[string]any{
		"Username": username,
		"Email":    email,
	}
	haveError := false

	if !validUsername(username) {
		data["ErrorUsername"] = "That's not a valid username."
		haveError = true
	}
	if !validPassword(password) {
		data["ErrorPassword"] = "That's not a valid password."
		haveError = true
	}
	if verify != password {
		data["ErrorVerify"] = "Your passwords didn't match."
		haveError = true
	}
	if !validEmail(email) {
		data["ErrorEmail"] = "That's not a valid email."
		haveError = true
	}
	if haveError {
		h.render(w, r, http.StatusBadRequest, "signup-form.html", data)
		return
	}

	created, err := h.store.CreateUser(r.Context(), models.User{
		Username:     username,
		PasswordHash: auth.HashPassword(username, password, ""),
		Email:        email,
	})
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			data["ErrorDuplicate"] = "User already exists"
			h.render(w, r, http.StatusConflict, "signup-form.html", data)
			return
		}
		h.renderServerError(w, r, err)
		return
	}

	middleware.SetSessionCookie(w, h.codec, created.ID)
	http.Redirect(w, r, "/welcome", http.StatusSeeOther)
}

// LoginForm shows the empty login form.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login-form.html", nil)
}

// Login authenticates and starts a session. An unknown username and a wrong
// password produce the same generic message so the form doesn't confirm
// which usernames exist.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := h.store.GetUserByUsername(r.Context(), username)
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	if !auth.VerifyPassword(user, password) {
		h.render(w, r, http.StatusUnauthorized, "login-form.html", map[string]any{
			"Username": username,
			"Error":    "Invalid Credentials",
		})
		return
	}

	middleware.SetSessionCookie(w, h.codec, user.ID)
	http.Redirect(w, r, "/welcome", http.StatusSeeOther)
}

// Logout clears the session cookie and returns to the login page.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Welcome greets the logged-in user. Guarded by RequireLoggedIn.
func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "welcome.html", nil)
}
