// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pawmart/go-backend/internal/core"
	"github.com/pawmart/go-backend/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/me", h.GetMe)
			r.Put("/me", h.UpdateMe)
			r.Post("/logout", h.Logout)
			r.Post("/logout-all", h.LogoutAll)
			r.Get("/sessions", h.GetSessions)
			r.Post("/change-password", h.ChangePassword)
		})
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.JSONError(w, core.BadRequestError("invalid request body"))
		return
	}

	resp, err := h.service.Register(
		r.Context(),
		req,
		r.UserAgent(),
		extractIPAddress(r),
	)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.JSONError(w, core.BadRequestError("invalid request body"))
		return
	}

	resp, err := h.service.Login(
		r.Context(),
		req,
		r.UserAgent(),
		extractIPAddress(r),
	)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		strings.TrimSpace(req.RefreshToken) == "" {
		core.JSONError(w, core.BadRequestError("refresh_token is required"))
		return
	}

	resp, err := h.service.Refresh(r.Context(), strings.TrimSpace(req.RefreshToken))
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	//nolint:errcheck // an unreadable body still lets the client clear local state
	_ = json.NewDecoder(r.Body).Decode(&req)

	ok := h.service.Logout(r.Context(), strings.TrimSpace(req.RefreshToken))
	core.OK(w, map[string]bool{"logged_out": ok})
}

func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	ok := h.service.LogoutFromAllDevices(r.Context(), userID)
	core.OK(w, map[string]bool{"logged_out": ok})
}

func (h *Handler) GetSessions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	sessions, err := h.service.GetActiveSessions(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, SessionsResponse{Sessions: sessions})
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.JSONError(w, core.BadRequestError("invalid request body"))
		return
	}

	if err := h.service.ChangePassword(r.Context(), userID, req); err != nil {
		h.writeAuthError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	profile, err := h.service.GetUserProfile(r.Context(), userID)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	core.OK(w, profile)
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.JSONError(w, core.BadRequestError("invalid request body"))
		return
	}

	profile, err := h.service.UpdateUserProfile(r.Context(), userID, req)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	core.OK(w, profile)
}

// writeAuthError maps service errors onto the response taxonomy:
// validation failures carry their field map, credential and token
// problems are 401-class, deactivation is 403, duplicates 409, and
// everything else collapses into a generic 500.
func (h *Handler) writeAuthError(w http.ResponseWriter, err error) {
	if ve, ok := IsValidationError(err); ok {
		core.ValidationFailed(w, ve.Fields)
		return
	}

	switch {
	case errors.Is(err, ErrEmailExists):
		core.JSONError(w, core.DuplicateError("email"))
	case errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrInvalidRefresh):
		core.JSONError(w, core.UnauthorizedError(err.Error()))
	case errors.Is(err, ErrAccountDeactivated):
		core.JSONError(w, core.ForbiddenError(err.Error()))
	case errors.Is(err, ErrUserNotFound):
		core.JSONError(w, core.NotFoundError("user"))
	case errors.Is(err, ErrRegistrationFailed),
		errors.Is(err, ErrLoginFailed),
		errors.Is(err, ErrRefreshFailed):
		core.JSONError(w, core.NewAppError(
			err,
			err.Error(),
			http.StatusInternalServerError,
			"SERVER_ERROR",
		))
	default:
		core.InternalServerError(w, err)
	}
}

func extractIPAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[len(ips)-1])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return ip
}
