package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/silenci4/flask-template-blog/internal/apperror"
	"github.com/silenci4/flask-template-blog/internal/auth"
	"github.com/silenci4/flask-template-blog/internal/flash"
	"github.com/silenci4/flask-template-blog/internal/form"
	"github.com/silenci4/flask-template-blog/internal/service"
)

// AuthHandler serves registration, login, logout, and the optional GitHub
// sign-in flow. github is nil when OAuth credentials are not configured;
// the routes are then simply not registered.
type AuthHandler struct {
	svc      *service.AuthService
	sessions *auth.SessionService
	github   *auth.GitHubProvider
	render   *Renderer
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(
	svc *service.AuthService,
	sessions *auth.SessionService,
	github *auth.GitHubProvider,
	render *Renderer,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		svc:      svc,
		sessions: sessions,
		github:   github,
		render:   render,
		logger:   logger,
	}
}

// HandleRegisterPage renders the empty registration form.
//
// HTTP: GET /register
func (h *AuthHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "register.html", Page{
		Title: "Register",
		Form:  form.RegisterForm{},
	})
}

// HandleRegister creates the account and logs the new user straight in.
//
// HTTP: POST /register
//
// An already-registered email is not a form error: the visitor gets a
// flash notice and lands on the login page instead.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	f := form.ParseRegister(r)
	if errs, ok := form.Validate(f); !ok {
		h.render.Render(w, r, http.StatusUnprocessableEntity, "register.html", Page{
			Title:  "Register",
			Form:   f,
			Errors: errs,
		})
		return
	}

	user, err := h.svc.Register(r.Context(), f.Email, f.Password, f.Name)
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			flash.Set(w, "You're already registered! Log in instead.")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.render.RenderError(w, r, err)
		return
	}

	h.logIn(w, r, user.ID)
}

// HandleLoginPage renders the empty login form.
//
// HTTP: GET /login
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "login.html", Page{
		Title: "Log In",
		Form:  form.LoginForm{},
	})
}

// HandleLogin verifies the credentials and starts a session.
//
// HTTP: POST /login
//
// The two failure modes keep distinct notices: an unknown email redirects
// to registration, a wrong password back to the login form.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	f := form.ParseLogin(r)
	if errs, ok := form.Validate(f); !ok {
		h.render.Render(w, r, http.StatusUnprocessableEntity, "login.html", Page{
			Title:  "Log In",
			Form:   f,
			Errors: errs,
		})
		return
	}

	user, err := h.svc.Login(r.Context(), f.Email, f.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperror.ErrNotFound):
			flash.Set(w, "You're not registered yet.")
			http.Redirect(w, r, "/register", http.StatusSeeOther)
		case errors.Is(err, apperror.ErrUnauthenticated):
			flash.Set(w, "Your entered password is wrong!")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		default:
			h.render.RenderError(w, r, err)
		}
		return
	}

	h.logIn(w, r, user.ID)
}

// HandleLogout ends the session and returns to the post list.
//
// HTTP: GET /logout (behind RequireUser)
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleGitHubLogin starts the GitHub OAuth flow.
//
// HTTP: GET /auth/github/login
//
// The random state rides a short-lived cookie and is checked on callback,
// tying the callback to a flow this server started.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback finishes the OAuth flow: state check, code
// exchange, account lookup or creation, session cookie.
//
// HTTP: GET /auth/github/callback?code=...&state=...
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("github callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// Single use.
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		flash.Set(w, "GitHub sign-in was cancelled.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("github callback: exchange failed", slog.String("error", err.Error()))
		h.render.RenderError(w, r, err)
		return
	}

	user, err := h.svc.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		h.render.RenderError(w, r, err)
		return
	}

	h.logIn(w, r, user.ID)
}

// logIn issues the session cookie and redirects to the post list.
func (h *AuthHandler) logIn(w http.ResponseWriter, r *http.Request, userID int64) {
	token, err := h.sessions.Issue(userID)
	if err != nil {
		h.logger.Error("failed to issue session",
			slog.Int64("userID", userID),
			slog.String("error", err.Error()),
		)
		h.render.RenderError(w, r, err)
		return
	}

	auth.SetCookie(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
