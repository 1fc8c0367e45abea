// Package api owns the HTTP surface of the gateway: request parsing,
// response formatting, CORS, and the closed error contract. The messaging
// core is only reached through the websocket handler mounted by the router.
package api

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"cinechat/errors"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError renders the closed APIError shape when the failure carries a
// deliberate public contract; everything else becomes a generic 500 and the
// cause is only logged, never echoed to the client.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	var apiErr *errors.APIError
	if stderrors.As(err, &apiErr) {
		body := map[string]any{"message": apiErr.Message}
		for k, v := range apiErr.Details {
			body[k] = v
		}
		writeJSON(w, apiErr.Status, body)
		return
	}

	log.Error("unhandled error", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.NewAPIError(http.StatusBadRequest, "invalid request body")
	}
	return nil
}
