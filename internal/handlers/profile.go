package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/quorahq/accountserver/internal/logging"
	"github.com/quorahq/accountserver/internal/services"
)

// ProfileHandler serves public user profiles to signed-in callers.
type ProfileHandler struct {
	accounts *services.AccountService
	log      logging.Logger
}

func NewProfileHandler(accounts *services.AccountService, log logging.Logger) *ProfileHandler {
	return &ProfileHandler{accounts: accounts, log: log}
}

// ProfileRouter registers the /userprofile routes on the given router.
func ProfileRouter(r chi.Router, accounts *services.AccountService, log logging.Logger) {
	handler := NewProfileHandler(accounts, log)

	r.Get("/{userID}", handler.GetProfile)
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	token := accessToken(r)
	if token == "" {
		writeServiceError(r.Context(), w, h.log, "get profile", services.ErrUnauthorizedNotSignedIn)
		return
	}

	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	profile, err := h.accounts.Profile(r.Context(), userID, token)
	if err != nil {
		writeServiceError(r.Context(), w, h.log, "get profile", err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
