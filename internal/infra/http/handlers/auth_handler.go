package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/donor-crm/internal/infra/http/middleware"
	"github.com/xavierca1/donor-crm/internal/security"
	"github.com/xavierca1/donor-crm/internal/usecase"
)

type Authenticator interface {
	Register(ctx context.Context, input usecase.RegisterInput) (*usecase.AuthOutput, error)
	Login(ctx context.Context, input usecase.LoginInput) (*usecase.AuthOutput, error)
	Refresh(ctx context.Context, refreshToken string) (*usecase.AuthOutput, error)
	Logout(ctx context.Context, sessionID string) error
}

type AuthHandler struct {
	auth   Authenticator
	logger *zap.Logger
}

func NewAuthHandler(auth Authenticator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input usecase.RegisterInput
	if !decodeJSON(w, r, &input) {
		return
	}
	out, err := h.auth.Register(r.Context(), input)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input usecase.LoginInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.IP = getClientIP(r)

	out, err := h.auth.Login(r.Context(), input)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "refresh_token is required")
		return
	}
	out, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.auth.Logout(r.Context(), p.SessionID); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// principal returns the authenticated caller or writes 401.
func principal(w http.ResponseWriter, r *http.Request) (*security.Principal, bool) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, usecase.CodeUnauthorized, "authentication required")
		return nil, false
	}
	return p, true
}
