package api

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"cinechat/auth"
	"cinechat/errors"
	"cinechat/services"
)

type AuthHandler struct {
	log     *slog.Logger
	service services.IAuthService
}

func NewAuthHandler(log *slog.Logger, service services.IAuthService) *AuthHandler {
	return &AuthHandler{log: log, service: service}
}

// Login verifies a password and mints a fresh bearer credential.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := auth.ValidateLogin(req); err != nil {
		writeError(w, h.log, errors.NewAPIError(http.StatusBadRequest, "email and password are required"))
		return
	}

	token, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		if stderrors.Is(err, errors.ErrInvalidCredentials) {
			writeError(w, h.log, errors.NewAPIError(http.StatusUnauthorized, "Unauthorized"))
			return
		}
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"authToken": string(token)})
}
