package middleware

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/etmoore/blog-udacity/internal/auth"
	"github.com/etmoore/blog-udacity/internal/models"
)

// SessionCookieName is the cookie carrying the sealed user id.
const SessionCookieName = "user_id"

// UserFinder is the slice of the store the resolver needs.
type UserFinder interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

type contextKey string

const userContextKey contextKey = "session.user"

// Session resolves the authenticated user once per request. It reads the
// session cookie, unseals it, and loads the user record; the result (or nil
// for anonymous) is stashed in the request context. A missing, malformed, or
// tampered cookie is simply anonymous, never an error. The cookie is only
// ever written by login, signup, and logout.
func Session(codec *auth.Codec, users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := resolve(r, codec, users)
			if user != nil {
				ctx := context.WithValue(r.Context(), userContextKey, user)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolve(r *http.Request, codec *auth.Codec, users UserFinder) *models.User {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	value, ok := codec.Unseal(cookie.Value)
	if !ok {
		return nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil
	}
	user, err := users.GetUserByID(r.Context(), id)
	if err != nil {
		log.Printf("session: load user %d: %v", id, err)
		return nil
	}
	return user
}

// CurrentUser returns the user resolved for this request, or nil when the
// request is anonymous.
func CurrentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userContextKey).(*models.User)
	return user
}

// SetSessionCookie writes a freshly sealed token for the given user id.
func SetSessionCookie(w http.ResponseWriter, codec *auth.Codec, userID int64) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    codec.Seal(strconv.FormatInt(userID, 10)),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
