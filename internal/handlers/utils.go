package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/quorahq/accountserver/internal/logging"
	"github.com/quorahq/accountserver/internal/services"
)

const (
	codeBadRequest = "REQ-001"
	codeInternal   = "INT-001"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// writeServiceError renders a service failure. Domain errors keep their code
// and message; anything else is logged and reported as an opaque 500.
func writeServiceError(ctx context.Context, w http.ResponseWriter, log logging.Logger, op string, err error) {
	var domainErr *services.Error
	if errors.As(err, &domainErr) {
		writeError(w, statusForKind(domainErr.Kind), domainErr.Code, domainErr.Message)
		return
	}
	log.Error(ctx, op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, codeInternal, "internal server error")
}

func statusForKind(kind services.Kind) int {
	switch kind {
	case services.KindConflict:
		return http.StatusConflict
	case services.KindAuthentication, services.KindSignOut:
		return http.StatusUnauthorized
	case services.KindAuthorization:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// accessToken extracts the raw token from the Authorization header. A
// "Bearer " prefix is accepted and stripped.
func accessToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) > len("Bearer ") && strings.EqualFold(auth[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):])
	}
	return auth
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
