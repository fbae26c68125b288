package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"contactdesk/internal/api/session"
	"contactdesk/internal/api/view"
	"contactdesk/internal/app/service"
	"contactdesk/internal/common"
	"contactdesk/internal/common/screen"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
	sessions    *session.Manager
	view        *view.View
}

func NewAuthHandler(authService *service.AuthService, sessions *session.Manager, v *view.View) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, view: v}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/login", h.loginPage)
	r.Post("/login", h.login)
}

func (h *AuthHandler) loginPage(w http.ResponseWriter, r *http.Request) {
	// Anonymous sessions need a CSRF token before the form can be submitted.
	if _, err := h.sessions.EnsureCSRF(w, r); err != nil {
		log.Printf("login page: issue csrf token: %v", err)
		h.view.ServerError(w)
		return
	}
	h.renderLogin(w, r, LoginForm{})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	form := LoginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}

	if errs := screen.Credentials(form.Username, form.Password); errs != nil {
		form.Errors = errs
		h.sessions.Flash(w, r, session.FlashDanger, "Please correct the highlighted errors.")
		h.renderLogin(w, r, form)
		return
	}

	user, err := h.authService.Login(r.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) || errors.Is(err, common.ErrBadRequest) {
			h.sessions.Flash(w, r, session.FlashDanger, "Invalid username or password.")
			h.renderLogin(w, r, form)
			return
		}
		log.Printf("login: %v", err)
		h.view.ServerError(w)
		return
	}

	sid, err := h.sessions.LogIn(w, r, user.ID)
	if err != nil {
		log.Printf("login: establish session: %v", err)
		h.view.ServerError(w)
		return
	}
	log.Printf("user %d logged in (session %s)", user.ID, sid)

	h.sessions.Flash(w, r, session.FlashSuccess, "Successfully logged in.")
	http.Redirect(w, r, safeNext(r.URL.Query().Get("next")), http.StatusSeeOther)
}

// Logout is registered behind RequireLogin by the router.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.LogOut(w, r); err != nil {
		log.Printf("logout: %v", err)
		h.view.ServerError(w)
		return
	}
	h.sessions.Flash(w, r, session.FlashInfo, "You have been logged out.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, form LoginForm) {
	h.view.Render(w, http.StatusOK, "login.html", view.Data{
		Title:     "Log in",
		CSRFToken: h.sessions.CSRFToken(r),
		Flashes:   h.sessions.Flashes(w, r),
		Form:      form,
	})
}

// safeNext keeps the post-login redirect on this site. Anything that is not
// a local absolute path falls back to the landing page.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}
