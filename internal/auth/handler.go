package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/reservo/reservo/internal/platform/httpx"
	"github.com/reservo/reservo/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	sessions   *shared.SessionStore
	csrf       *shared.CSRFManager
	loginLimit int
}

// NewHandler constructs a Handler instance. loginLimit caps login attempts per
// minute per client IP; zero disables the limiter.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionStore, csrf *shared.CSRFManager, loginLimit int) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:     logger,
		service:    service,
		sessions:   sessions,
		csrf:       csrf,
		loginLimit: loginLimit,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Group(func(r chi.Router) {
		if h.loginLimit > 0 {
			r.Use(httprate.LimitByIP(h.loginLimit, time.Minute))
		}
		r.Post("/login", h.handleLogin)
	})
	r.Post("/logout", h.handleLogout)
	r.Get("/session", h.handleSession)
}

// MountMe registers the identity endpoint.
func (h *Handler) MountMe(r chi.Router) {
	r.Get("/me", h.handleMe)
}

type registerRequest struct {
	Identifier  string `json:"identifier"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type accountResponse struct {
	Identifier  string      `json:"identifier"`
	DisplayName string      `json:"display_name"`
	Role        shared.Role `json:"role"`
	CreatedAt   time.Time   `json:"created_at"`
}

type sessionResponse struct {
	Token      string      `json:"token,omitempty"`
	CSRFToken  string      `json:"csrf_token"`
	Identifier string      `json:"identifier"`
	Role       shared.Role `json:"role"`
	Home       string      `json:"home"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.InvalidRequest("malformed request body"))
		return
	}
	account, err := h.service.Register(r.Context(), req.Identifier, req.DisplayName, req.Password)
	if err != nil {
		h.respondFailure(w, "register", err)
		return
	}
	h.logger.Info("account registered", slog.String("identifier", account.Identifier))
	httpx.JSON(w, http.StatusCreated, accountResponse{
		Identifier:  account.Identifier,
		DisplayName: account.DisplayName,
		Role:        account.Role,
		CreatedAt:   account.CreatedAt,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.InvalidRequest("malformed request body"))
		return
	}
	sess, err := h.service.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		h.respondFailure(w, "login", err)
		return
	}
	h.sessions.WriteCookie(w, sess.Token)
	httpx.JSON(w, http.StatusOK, sessionResponse{
		Token:      sess.Token,
		CSRFToken:  h.csrf.TokenFor(sess.Token),
		Identifier: sess.Identifier,
		Role:       sess.Role,
		Home:       homeFor(sess.Role),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := h.token(r)
	if err := h.service.Destroy(r.Context(), token); err != nil {
		h.respondFailure(w, "logout", err)
		return
	}
	h.sessions.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	token := h.token(r)
	principal, err := h.service.Authenticate(r.Context(), token)
	if err != nil {
		h.respondFailure(w, "session", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sessionResponse{
		CSRFToken:  h.csrf.TokenFor(token),
		Identifier: principal.Identifier,
		Role:       principal.Role,
		Home:       homeFor(principal.Role),
	})
}

type meResponse struct {
	Identifier  string      `json:"identifier"`
	DisplayName string      `json:"display_name"`
	Role        shared.Role `json:"role"`
	Home        string      `json:"home"`
	CSRFToken   string      `json:"csrf_token"`
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	token := h.token(r)
	profile, err := h.service.Profile(r.Context(), token)
	if err != nil {
		h.respondFailure(w, "me", err)
		return
	}
	httpx.JSON(w, http.StatusOK, meResponse{
		Identifier:  profile.Identifier,
		DisplayName: profile.DisplayName,
		Role:        profile.Role,
		Home:        homeFor(profile.Role),
		CSRFToken:   h.csrf.TokenFor(token),
	})
}

func (h *Handler) token(r *http.Request) string {
	if token := shared.TokenFromContext(r.Context()); token != "" {
		return token
	}
	token, _ := h.sessions.TokenFromRequest(r)
	return token
}

func (h *Handler) respondFailure(w http.ResponseWriter, op string, err error) {
	if httpx.StatusFor(err) == http.StatusInternalServerError {
		h.logger.Error("auth request failed", slog.String("op", op), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

// homeFor points admins at the full listing and everyone else at their own.
func homeFor(role shared.Role) string {
	if role == shared.RoleAdmin {
		return "/admin/reservations"
	}
	return "/reservations"
}
