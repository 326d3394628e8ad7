package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/quorahq/accountserver/internal/logging"
	"github.com/quorahq/accountserver/internal/services"
)

const (
	statusRegistered = "USER SUCCESSFULLY REGISTERED"
	messageSignedIn  = "SIGNED IN SUCCESSFULLY"
	messageSignedOut = "SIGNED OUT SUCCESSFULLY"

	headerAccessToken = "access-token"
)

// UserHandler serves signup, signin and signout.
type UserHandler struct {
	accounts *services.AccountService
	log      logging.Logger
}

func NewUserHandler(accounts *services.AccountService, log logging.Logger) *UserHandler {
	return &UserHandler{accounts: accounts, log: log}
}

// UserRouter registers the /user routes on the given router.
func UserRouter(r chi.Router, accounts *services.AccountService, log logging.Logger) {
	handler := NewUserHandler(accounts, log)

	r.Post("/signup", handler.Signup)
	r.Post("/signin", handler.Signin)
	r.Post("/signout", handler.Signout)
}

// Signup registers a new user.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}

	req.UserName = strings.TrimSpace(req.UserName)
	req.EmailAddress = strings.TrimSpace(req.EmailAddress)
	if req.UserName == "" || req.EmailAddress == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "userName, emailAddress and password are required")
		return
	}

	user, err := h.accounts.Register(r.Context(), services.RegisterInput{
		Username:      req.UserName,
		Email:         req.EmailAddress,
		Password:      req.Password,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Country:       req.Country,
		AboutMe:       req.AboutMe,
		DOB:           req.DOB,
		ContactNumber: req.ContactNumber,
	})
	if err != nil {
		writeServiceError(r.Context(), w, h.log, "signup", err)
		return
	}

	writeJSON(w, http.StatusCreated, SignupResponse{ID: user.ID, Status: statusRegistered})
}

// Signin authenticates Basic credentials and returns the new token in the
// access-token header.
func (h *UserHandler) Signin(w http.ResponseWriter, r *http.Request) {
	username, password, err := basicCredentials(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	session, err := h.accounts.SignIn(r.Context(), username, password)
	if err != nil {
		writeServiceError(r.Context(), w, h.log, "signin", err)
		return
	}

	w.Header().Set(headerAccessToken, session.AccessToken)
	writeJSON(w, http.StatusOK, MessageResponse{ID: session.UserID, Message: messageSignedIn})
}

// Signout closes the session identified by the Authorization header.
func (h *UserHandler) Signout(w http.ResponseWriter, r *http.Request) {
	token := accessToken(r)
	if token == "" {
		writeServiceError(r.Context(), w, h.log, "signout", services.ErrNotSignedIn)
		return
	}

	user, err := h.accounts.SignOut(r.Context(), token)
	if err != nil {
		writeServiceError(r.Context(), w, h.log, "signout", err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{ID: user.ID, Message: messageSignedOut})
}

type SignupRequest struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	UserName      string `json:"userName"`
	EmailAddress  string `json:"emailAddress"`
	Password      string `json:"password"`
	Country       string `json:"country"`
	AboutMe       string `json:"aboutMe"`
	DOB           string `json:"dob"`
	ContactNumber string `json:"contactNumber"`
}

type SignupResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type MessageResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// basicCredentials decodes "Basic base64(username:password)". The username
// is trimmed the same way Signup trims it; the password is taken verbatim and
// may itself contain colons.
func basicCredentials(r *http.Request) (string, string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Basic") {
		return "", "", errors.New("invalid authorization")
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", "", errors.New("invalid authorization")
	}
	username, password, ok := strings.Cut(string(decoded), ":")
	username = strings.TrimSpace(username)
	if !ok || username == "" {
		return "", "", errors.New("invalid authorization")
	}
	return username, password, nil
}
