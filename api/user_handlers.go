package api

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"cinechat/auth"
	"cinechat/errors"
	"cinechat/services"
)

type UserHandler struct {
	log     *slog.Logger
	service services.IAuthService
}

func NewUserHandler(log *slog.Logger, service services.IAuthService) *UserHandler {
	return &UserHandler{log: log, service: service}
}

// Create registers a new account and returns an initial credential, so a
// fresh client can connect without a second login round trip.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	token, err := h.service.Register(req.Email, req.Password)
	if err != nil {
		switch {
		case stderrors.Is(err, errors.ErrUserAlreadyExists):
			writeError(w, h.log, errors.NewAPIError(http.StatusConflict, "user already exists"))
		case stderrors.Is(err, errors.ErrInvalidPassword):
			writeError(w, h.log, errors.NewAPIError(http.StatusUnprocessableEntity, "password does not meet complexity requirements"))
		default:
			writeError(w, h.log, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"authToken": string(token)})
}

// Me echoes the identity the gate resolved for this request.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, h.log, errors.NewAPIError(http.StatusUnauthorized, "Unauthorized"))
		return
	}
	writeJSON(w, http.StatusOK, identity)
}
