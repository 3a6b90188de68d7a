package handlers

import (
	"net/http"
	"strings"
	"testing"
)

func TestIndexListsPosts(t *testing.T) {
	app := newTestApp()
	alice := app.seedUser("alice")
	app.seedPost(alice, "first post")
	app.seedPost(alice, "second post")

	rec := app.do(http.MethodGet, "/", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("index: status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, subject := range []string{"first post", "second post"} {
		if !strings.Contains(body, subject) {
			t.Errorf("index missing post %q", subject)
		}
	}
	// Newest first: the later post renders above the earlier one.
	if strings.Index(body, "second post") > strings.Index(body, "first post") {
		t.Error("index is not ordered newest first")
	}
}

func TestCreatePost(t *testing.T) {
	app := newTestApp()
	alice := app.seedUser("alice")

	rec := app.do(http.MethodPost, "/newpost", map[string]string{
		"subject": "hello world",
		"content": "my first post",
	}, alice)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("create post: status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/1" {
		t.Errorf("create post: redirected to %q, want the new permalink /1", loc)
	}

	post := app.store.posts[1]
	if post == nil {
		t.Fatal("post not stored")
	}
	if post.UserID != alice.ID || post.Author != "alice" {
		t.Errorf("post ownership = (%d, %q), want (%d, alice)", post.UserID, post.Author, alice.ID)
	}
}

func TestCreatePostValidation(t *testing.T) {
	app := newTestApp()
	alice := app.seedUser("alice")

	rec := app.do(http.MethodPost, "/newpost", map[string]string{
		"subject": "",
		"content": "body without subject",
	}, alice)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty subject: status = %d, want 400", rec.Code)
	}
	if len(app.store.posts) != 0 {
		t.Error("invalid post was stored")
	}
}

func TestShowPost(t *testing.T) {
	app := newTestApp()
	alice := app.seedUser("alice")
	bob := app.seedUser("bob")
	post := app.seedPost(alice, "a post")
	if err := app.store.CreateLike(nil, post.ID, bob.ID); err != nil {
		t.Fatal(err)
	}

	rec := app.do(http.MethodGet, "/1", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("show: status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "a post") {
		t.Error("show page missing subject")
	}
	if !strings.Contains(body, "1 like") {
		t.Error("show page missing like count")
	}
}

func TestShowPostCommentsOldestFirst(t *testing.T) {
	app := newTestApp()
	alice := app.seedUser("alice")
	bob := app.seedUser("bob")
	app.seedPost(alice, "a post")

	for _, content := range []string{"earliest comment", "latest comment"} {
		rec := app.do(http.MethodPost, "/1/comment", map[string]string{"content": content}, bob)
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("comment %q: status = %d, want 303", content, rec.Code)
		}
	}

	rec := app.do(http.MethodGet, "/1", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("show: status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	first := strings.Index(body, "earliest comment")
	second := strings.Index(body, "latest comment")
	if first < 0 || second < 0 {
		t.Fatal("show page missing comments")
	}
	if first > second {
		t.Error("comments are not ordered oldest first")
	}
}
