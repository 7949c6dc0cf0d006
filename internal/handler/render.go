// Package handler contains the HTTP handlers: thin glue that parses
// requests, calls the services, and renders templates or redirects.
package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/silenci4/flask-template-blog/internal/apperror"
	"github.com/silenci4/flask-template-blog/internal/auth"
	"github.com/silenci4/flask-template-blog/internal/flash"
	"github.com/silenci4/flask-template-blog/internal/form"
	"github.com/silenci4/flask-template-blog/internal/model"
)

// pages are the template files that render inside base.html. Each one is
// parsed together with the base at startup so requests never touch disk.
var pages = []string{
	"index.html",
	"post.html",
	"make-post.html",
	"register.html",
	"login.html",
	"about.html",
	"contact.html",
	"error.html",
}

// Page is the data every template receives. User and Flash are filled in
// by the renderer; handlers only set what their page needs.
type Page struct {
	Title    string
	User     *model.User
	Flash    string
	Errors   form.Errors
	Form     any
	Posts    []model.Post
	Post     *model.Post
	Comments []model.Comment
	Editing  bool
	Message  string
}

// Renderer holds the parsed templates. Parsing happens once in
// NewRenderer; a template error at startup is fatal, at request time it
// degrades to a 500.
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// NewRenderer parses base.html together with every page template in
// templateDir.
func NewRenderer(templateDir string, logger *slog.Logger) (*Renderer, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.ParseFiles(
			filepath.Join(templateDir, "base.html"),
			filepath.Join(templateDir, page),
		)
		if err != nil {
			return nil, err
		}
		templates[page] = tmpl
	}

	return &Renderer{templates: templates, logger: logger}, nil
}

// Render writes the named page with the given status. It pops any pending
// flash notice and resolves the current user before executing the
// template, so handlers never deal with either.
func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data Page) {
	tmpl, ok := rn.templates[page]
	if !ok {
		rn.logger.Error("unknown template", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if user, ok := auth.UserFromContext(r.Context()); ok {
		data.User = user
	}
	data.Flash = flash.Pop(w, r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		// Headers are gone at this point; logging is all that is left.
		rn.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
	}
}

// RenderError maps a domain error to the right HTML response. Everything
// the services return funnels through here unless the handler has a more
// specific reaction (form re-render, conflict flash).
func (rn *Renderer) RenderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		rn.Render(w, r, http.StatusNotFound, "error.html", Page{
			Title:   "Not Found",
			Message: "The page you were looking for does not exist.",
		})
	case errors.Is(err, apperror.ErrForbidden):
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	case errors.Is(err, apperror.ErrUnauthenticated):
		flash.Set(w, "You need to log in first.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	default:
		rn.logger.Error("request failed", slog.String("error", err.Error()))
		rn.Render(w, r, http.StatusInternalServerError, "error.html", Page{
			Title:   "Server Error",
			Message: "Something went wrong. Please try again.",
		})
	}
}
