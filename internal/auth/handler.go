package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"noteboard/internal/session"
	"noteboard/views/models"
	"noteboard/views/pages"
)

// Handler serves the login and register pages.
type Handler struct {
	client *Client
	store  *session.CookieStore
	log    *slog.Logger
}

func NewHandler(client *Client, store *session.CookieStore, log *slog.Logger) *Handler {
	return &Handler{client: client, store: store, log: log}
}

// LoginPage handles GET /login
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, pages.LoginPage(models.AuthPageView{}))
}

// Login handles POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")

	sess, err := h.client.Login(r.Context(), email, password)
	if err != nil {
		h.log.Error("failed to login", "error", err)
		h.render(w, r, pages.LoginPage(models.AuthPageView{
			Error: UserMessage(err, MsgLoginFailed),
			Email: email,
		}))
		return
	}
	h.signIn(w, r, sess, func(msg string) {
		h.render(w, r, pages.LoginPage(models.AuthPageView{Error: msg, Email: email}))
	}, MsgLoginFailed)
}

// RegisterPage handles GET /register
func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, pages.RegisterPage(models.AuthPageView{}))
}

// Register handles POST /register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))
	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")

	sess, err := h.client.Register(r.Context(), username, email, password)
	if err != nil {
		h.log.Error("failed to register", "error", err)
		h.render(w, r, pages.RegisterPage(models.AuthPageView{
			Error:    UserMessage(err, MsgRegisterFailed),
			Username: username,
			Email:    email,
		}))
		return
	}
	h.signIn(w, r, sess, func(msg string) {
		h.render(w, r, pages.RegisterPage(models.AuthPageView{Error: msg, Username: username, Email: email}))
	}, MsgRegisterFailed)
}

// signIn stores the token and sends the browser to the notes view.
func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, sess session.Session, failed func(string), fallback string) {
	if err := h.store.Save(w, r, sess); err != nil {
		h.log.Error("failed to store session", "error", err)
		failed(fallback)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(r.Context(), w); err != nil {
		h.log.Error("failed to render page", "error", err)
	}
}
