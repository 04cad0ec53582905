package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/smartaid/medtrack/internal/api/auth"
	"github.com/smartaid/medtrack/internal/api/respond"
	"github.com/smartaid/medtrack/internal/store"
)

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  *store.User `json:"user"`
}

// Signup registers a new account.
// @Summary Register account
// @Description Creates a user account and returns a bearer token.
// @Tags auth
// @Accept json
// @Produce json
// @Success 201 {object} authResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 409 {object} respond.ErrorResponse
// @Router /auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || len(req.Password) < 8 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_CREDENTIALS", "Email and a password of at least 8 characters are required")
		return
	}
	if req.Role == "" {
		req.Role = store.RolePatient
	}
	if req.Role != store.RolePatient && req.Role != store.RoleCaregiver {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ROLE", "Role must be 'patient' or 'caregiver'")
		return
	}

	if _, err := store.GetUserByEmail(r.Context(), h.pool, req.Email); err == nil {
		respond.WriteError(w, http.StatusConflict, "EMAIL_TAKEN", "An account with this email already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to create account")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to create account")
		return
	}

	user, err := store.CreateUser(r.Context(), h.pool, req.Email, string(hash), req.FirstName, req.LastName, req.Role)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to create account")
		return
	}

	token, err := auth.IssueToken(h.cfg.JWTSecret, user.ID, user.Role, h.cfg.TokenExpiry)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to issue token")
		return
	}
	respond.WriteJSONObject(w, http.StatusCreated, authResponse{Token: token, User: user})
}

// Login authenticates an existing account.
// @Summary Log in
// @Description Verifies credentials and returns a bearer token.
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} authResponse
// @Failure 401 {object} respond.ErrorResponse
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := store.GetUserByEmail(r.Context(), h.pool, req.Email)
	if err != nil {
		// Same response for unknown email and bad password.
		respond.WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		respond.WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
		return
	}

	token, err := auth.IssueToken(h.cfg.JWTSecret, user.ID, user.Role, h.cfg.TokenExpiry)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to issue token")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, authResponse{Token: token, User: user})
}

// Me returns the authenticated user's profile.
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} store.User
// @Failure 404 {object} respond.ErrorResponse
// @Router /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := store.GetUser(r.Context(), h.pool, auth.UserID(r.Context()))
	if err != nil {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, user)
}
