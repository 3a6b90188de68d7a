package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/etmoore/blog-udacity/internal/auth"
	"github.com/etmoore/blog-udacity/internal/db"
	appmiddleware "github.com/etmoore/blog-udacity/internal/middleware"
	"github.com/etmoore/blog-udacity/internal/models"
)

// stubStore is an in-memory Store with the same contract as the pgx one:
// nil-nil on missing records, ErrDuplicate on unique violations.
type stubStore struct {
	users         map[int64]*models.User
	posts         map[int64]*models.Post
	comments      []models.Comment
	likes         map[[2]int64]bool
	nextUserID    int64
	nextPostID    int64
	nextCommentID int64
}

func newStubStore() *stubStore {
	return &stubStore{
		users: map[int64]*models.User{},
		posts: map[int64]*models.Post{},
		likes: map[[2]int64]bool{},
	}
}

func (s *stubStore) CreateUser(_ context.Context, user models.User) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == user.Username {
			return nil, db.ErrDuplicate
		}
	}
	s.nextUserID++
	user.ID = s.nextUserID
	user.CreatedAt = time.Now()
	s.users[user.ID] = &user
	return &user, nil
}

func (s *stubStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (s *stubStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	return s.users[id], nil
}

func (s *stubStore) CreatePost(_ context.Context, post models.Post) (*models.Post, error) {
	s.nextPostID++
	post.ID = s.nextPostID
	post.CreatedAt = time.Now()
	s.posts[post.ID] = &post
	return &post, nil
}

func (s *stubStore) GetPostByID(_ context.Context, id int64) (*models.Post, error) {
	return s.posts[id], nil
}

func (s *stubStore) ListPosts(_ context.Context) ([]models.Post, error) {
	var out []models.Post
	for _, p := range s.posts {
		out = append(out, *p)
	}
	// Newest first, like the store's ORDER BY created_at DESC. Posts seeded
	// back-to-back can share a timestamp, so fall back to id.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *stubStore) UpdatePost(_ context.Context, id int64, subject, content string) error {
	post, ok := s.posts[id]
	if !ok {
		return db.ErrDuplicate
	}
	post.Subject = subject
	post.Content = content
	return nil
}

func (s *stubStore) DeletePost(_ context.Context, id int64) error {
	delete(s.posts, id)
	return nil
}

func (s *stubStore) CreateComment(_ context.Context, comment models.Comment) (*models.Comment, error) {
	s.nextCommentID++
	comment.ID = s.nextCommentID
	comment.CreatedAt = time.Now()
	s.comments = append(s.comments, comment)
	return &comment, nil
}

func (s *stubStore) ListCommentsByPost(_ context.Context, postID int64) ([]models.Comment, error) {
	// Comments are appended in creation order, so this is already oldest
	// first, matching the store's ORDER BY created_at ASC.
	var out []models.Comment
	for _, c := range s.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubStore) CreateLike(_ context.Context, postID, userID int64) error {
	key := [2]int64{postID, userID}
	if s.likes[key] {
		return db.ErrDuplicate
	}
	s.likes[key] = true
	return nil
}

func (s *stubStore) HasLiked(_ context.Context, postID, userID int64) (bool, error) {
	return s.likes[[2]int64{postID, userID}], nil
}

func (s *stubStore) CountLikes(_ context.Context, postID int64) (int, error) {
	count := 0
	for key := range s.likes {
		if key[0] == postID {
			count++
		}
	}
	return count, nil
}

// testApp wires the stub store into the same routing and guard composition
// the server uses.
type testApp struct {
	store  *stubStore
	codec  *auth.Codec
	router http.Handler
}

func newTestApp() *testApp {
	store := newStubStore()
	codec := auth.NewCodec("0123456789abcdef0123456789abcdef")
	h := New(store, codec)

	r := chi.NewRouter()
	r.Use(appmiddleware.Session(codec, store))

	r.Get("/", h.Index)
	r.Get("/signup", h.SignupForm)
	r.Post("/signup", h.Signup)
	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)
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

	return &testApp{store: store, codec: codec, router: r}
}

// seedUser creates a user whose password is always "secret1".
func (a *testApp) seedUser(username string) *models.User {
	user, err := a.store.CreateUser(context.Background(), models.User{
		Username:     username,
		PasswordHash: auth.HashPassword(username, "secret1", ""),
	})
	if err != nil {
		panic(err)
	}
	return user
}

func (a *testApp) seedPost(owner *models.User, subject string) *models.Post {
	post, err := a.store.CreatePost(context.Background(), models.Post{
		Subject: subject,
		Content: "content of " + subject,
		Author:  owner.Username,
		UserID:  owner.ID,
	})
	if err != nil {
		panic(err)
	}
	return post
}

func (a *testApp) sessionCookie(user *models.User) *http.Cookie {
	return &http.Cookie{
		Name:  appmiddleware.SessionCookieName,
		Value: a.codec.Seal(strconv.FormatInt(user.ID, 10)),
	}
}

// do runs one request through the router, optionally authenticated as user.
func (a *testApp) do(method, target string, form map[string]string, user *models.User) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		values := url.Values{}
		for k, v := range form {
			values.Set(k, v)
		}
		req = httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if user != nil {
		req.AddCookie(a.sessionCookie(user))
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// doWithCookie runs a request carrying an arbitrary cookie, for tamper tests.
func (a *testApp) doWithCookie(method, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}
