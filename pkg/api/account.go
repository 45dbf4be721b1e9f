package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/holonet/swapi-gateway/pkg/auth"
	"github.com/holonet/swapi-gateway/pkg/store"
)

// AccountHandler serves registration, token issuance and account deletion.
type AccountHandler struct {
	store  *store.Store
	tokens *auth.Manager
	logger zerolog.Logger
}

// NewAccountHandler creates the account handler.
func NewAccountHandler(st *store.Store, tokens *auth.Manager, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		store:  st,
		tokens: tokens,
		logger: logger,
	}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles POST /register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if creds.Username == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		h.logger.Error().Err(err).Msg("Password hashing failed")
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	user := &store.User{Username: creds.Username, PasswordHash: hash}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrExists) {
			writeError(w, http.StatusBadRequest, "User already exists")
			return
		}
		h.logger.Error().Err(err).Msg("User creation failed")
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	writeMessage(w, "User registered successfully")
}

// Token handles POST /token: verifies credentials and mints an access token.
func (h *AccountHandler) Token(w http.ResponseWriter, r *http.Request) {
	creds, ok := h.readCredentials(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.store.GetUser(r.Context(), creds.Username)
	if err != nil || !auth.VerifyPassword(creds.Password, user.PasswordHash) {
		writeError(w, http.StatusBadRequest, "Incorrect username or password")
		return
	}

	token, err := h.tokens.GenerateToken(user.Username, user.ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("Token generation failed")
		writeError(w, http.StatusInternalServerError, "token issuance failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// readCredentials accepts JSON or form-encoded credentials, since token
// endpoints are commonly called both ways.
func (h *AccountHandler) readCredentials(r *http.Request) (credentials, bool) {
	contentType := r.Header.Get("Content-Type")
	if contentType == "application/x-www-form-urlencoded" || contentType == "" {
		if err := r.ParseForm(); err != nil {
			return credentials{}, false
		}
		if r.PostForm.Get("username") != "" {
			return credentials{
				Username: r.PostForm.Get("username"),
				Password: r.PostForm.Get("password"),
			}, true
		}
	}

	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		return credentials{}, false
	}
	return creds, creds.Username != ""
}

// DeleteUser handles DELETE /user: authenticated self-deletion. The user's
// favorites go with the account.
func (h *AccountHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())

	if err := h.store.DeleteUser(r.Context(), claims.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error().Err(err).Msg("User deletion failed")
		writeError(w, http.StatusInternalServerError, "deletion failed")
		return
	}

	writeMessage(w, "User deleted successfully")
}
