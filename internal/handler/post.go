package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/silenci4/flask-template-blog/internal/apperror"
	"github.com/silenci4/flask-template-blog/internal/auth"
	"github.com/silenci4/flask-template-blog/internal/flash"
	"github.com/silenci4/flask-template-blog/internal/form"
	"github.com/silenci4/flask-template-blog/internal/service"
)

// PostHandler serves the post list, the post detail page with its comment
// form, and the admin-guarded authoring routes.
type PostHandler struct {
	svc    *service.PostService
	render *Renderer
	logger *slog.Logger
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(svc *service.PostService, render *Renderer, logger *slog.Logger) *PostHandler {
	return &PostHandler{svc: svc, render: render, logger: logger}
}

// HandleList renders all posts.
//
// HTTP: GET /
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.List(r.Context())
	if err != nil {
		h.render.RenderError(w, r, err)
		return
	}

	h.render.Render(w, r, http.StatusOK, "index.html", Page{
		Title: "The Blog",
		Posts: posts,
	})
}

// HandleShow renders one post with its comments and the comment form.
//
// HTTP: GET /post/{postID}
func (h *PostHandler) HandleShow(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	post, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.render.RenderError(w, r, err)
		return
	}

	comments, err := h.svc.Comments(r.Context(), id)
	if err != nil {
		h.render.RenderError(w, r, err)
		return
	}

	h.render.Render(w, r, http.StatusOK, "post.html", Page{
		Title:    post.Title,
		Post:     post,
		Comments: comments,
		Form:     form.CommentForm{},
	})
}

// HandleComment attaches a comment to the post, for logged-in users only.
// Anonymous submitters are flashed to the login page and nothing is
// stored.
//
// HTTP: POST /post/{postID}
func (h *PostHandler) HandleComment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	user, _ := auth.UserFromContext(r.Context())
	if user == nil {
		flash.Set(w, "You're not logged in!")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	f := form.ParseComment(r)
	if errs, ok := form.Validate(f); !ok {
		post, err := h.svc.Get(r.Context(), id)
		if err != nil {
			h.render.RenderError(w, r, err)
			return
		}
		comments, err := h.svc.Comments(r.Context(), id)
		if err != nil {
			h.render.RenderError(w, r, err)
			return
		}
		h.render.Render(w, r, http.StatusUnprocessableEntity, "post.html", Page{
			Title:    post.Title,
			Post:     post,
			Comments: comments,
			Form:     f,
			Errors:   errs,
		})
		return
	}

	if _, err := h.svc.AddComment(r.Context(), id, user, f.Text); err != nil {
		h.render.RenderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/post/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

// HandleNewPage renders the empty authoring form.
//
// HTTP: GET /new-post (admin)
func (h *PostHandler) HandleNewPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "make-post.html", Page{
		Title: "New Post",
		Form:  form.PostForm{},
	})
}

// HandleCreate authors a new post stamped with today's date and the
// current user.
//
// HTTP: POST /new-post (admin)
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		// RequireAdmin fronts this route; no identity here means the
		// guard was bypassed, so refuse rather than crash.
		h.render.RenderError(w, r, apperror.Forbidden("admin access required"))
		return
	}

	f := form.ParsePost(r)
	if errs, ok := form.Validate(f); !ok {
		h.render.Render(w, r, http.StatusUnprocessableEntity, "make-post.html", Page{
			Title:  "New Post",
			Form:   f,
			Errors: errs,
		})
		return
	}

	post, err := h.svc.Create(r.Context(), user, service.PostInput{
		Title:    f.Title,
		Subtitle: f.Subtitle,
		Body:     f.Body,
		ImgURL:   f.ImgURL,
	})
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			h.render.Render(w, r, http.StatusUnprocessableEntity, "make-post.html", Page{
				Title:  "New Post",
				Form:   f,
				Errors: form.Errors{"title": "taken"},
			})
			return
		}
		h.render.RenderError(w, r, err)
		return
	}

	h.logger.Info("post published",
		slog.Int64("postID", post.ID),
		slog.String("title", post.Title),
	)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleEditPage renders the authoring form pre-filled from the post.
//
// HTTP: GET /edit-post/{postID} (admin)
func (h *PostHandler) HandleEditPage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	post, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.render.RenderError(w, r, err)
		return
	}

	h.render.Render(w, r, http.StatusOK, "make-post.html", Page{
		Title: "Edit Post",
		Post:  post,
		Form: form.PostForm{
			Title:    post.Title,
			Subtitle: post.Subtitle,
			ImgURL:   post.ImgURL,
			Body:     post.Body,
		},
		Editing: true,
	})
}

// HandleEdit overwrites the post's fields.
//
// HTTP: POST /edit-post/{postID} (admin)
func (h *PostHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	f := form.ParsePost(r)
	if errs, ok := form.Validate(f); !ok {
		h.render.Render(w, r, http.StatusUnprocessableEntity, "make-post.html", Page{
			Title:   "Edit Post",
			Form:    f,
			Errors:  errs,
			Editing: true,
		})
		return
	}

	post, err := h.svc.Update(r.Context(), id, service.PostInput{
		Title:    f.Title,
		Subtitle: f.Subtitle,
		Body:     f.Body,
		ImgURL:   f.ImgURL,
	})
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			h.render.Render(w, r, http.StatusUnprocessableEntity, "make-post.html", Page{
				Title:   "Edit Post",
				Form:    f,
				Errors:  form.Errors{"title": "taken"},
				Editing: true,
			})
			return
		}
		h.render.RenderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/post/"+strconv.FormatInt(post.ID, 10), http.StatusSeeOther)
}

// HandleDelete removes the post and its comments, then returns to the
// list.
//
// HTTP: GET /delete/{postID} (admin)
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.render.RenderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// postID parses the {postID} URL parameter. A non-numeric id is a 404,
// same as a numeric id with no row behind it.
func (h *PostHandler) postID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "postID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.render.RenderError(w, r, apperror.NotFound("post", 0))
		return 0, false
	}
	return id, true
}
