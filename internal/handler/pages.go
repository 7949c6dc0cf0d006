package handler

import "net/http"

// PageHandler serves the static pages.
type PageHandler struct {
	render *Renderer
}

// NewPageHandler creates a PageHandler.
func NewPageHandler(render *Renderer) *PageHandler {
	return &PageHandler{render: render}
}

// HandleAbout renders the about page.
//
// HTTP: GET /about
func (h *PageHandler) HandleAbout(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "about.html", Page{Title: "About"})
}

// HandleContact renders the contact page.
//
// HTTP: GET /contact
func (h *PageHandler) HandleContact(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "contact.html", Page{Title: "Contact"})
}

// HandleNotFound is the router's fallback for unmatched paths.
func (h *PageHandler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusNotFound, "error.html", Page{
		Title:   "Not Found",
		Message: "The page you were looking for does not exist.",
	})
}
