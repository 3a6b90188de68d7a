package handlers

import (
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/etmoore/blog-udacity/internal/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = parsePages(
	"post-index.html",
	"post-new.html",
	"post-show.html",
	"post-edit.html",
	"signup-form.html",
	"login-form.html",
	"welcome.html",
	"error.html",
)

func parsePages(names ...string) map[string]*template.Template {
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		out[name] = template.Must(template.ParseFS(templateFS,
			"templates/base.html", "templates/"+name))
	}
	return out
}

// render writes the named page. The resolved user is injected so every page
// can show login state; callers must not put "User" in data themselves.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	tmpl, ok := pages[name]
	if !ok {
		log.Printf("render: unknown template %q", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	data["User"] = middleware.CurrentUser(r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		log.Printf("render %s: %v", name, err)
	}
}

func (h *Handler) renderNotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "error.html", map[string]any{
		"Message": "Page not found.",
	})
}

func (h *Handler) renderServerError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	h.render(w, r, http.StatusInternalServerError, "error.html", map[string]any{
		"Message": "Something went wrong. Please try again.",
	})
}

// NotFound is the router's fallback for unmatched paths.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderNotFound(w, r)
}
