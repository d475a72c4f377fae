package handler

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// JWTServiceInterface defines the interface for JWT operations
type JWTServiceInterface interface {
	GenerateToken(user string) (string, error)
	RefreshToken(token string) (string, error)
}

// AuthHandler authenticates the configured API user and issues bearer
// tokens for the event and settings endpoints.
type AuthHandler struct {
	apiUser      string
	passwordHash string
	jwtService   JWTServiceInterface
}

// NewAuthHandler creates a new auth handler. passwordHash is a bcrypt hash of
// the API password.
func NewAuthHandler(apiUser, passwordHash string, jwtService JWTServiceInterface) *AuthHandler {
	return &AuthHandler{
		apiUser:      apiUser,
		passwordHash: passwordHash,
		jwtService:   jwtService,
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Token string `json:"token"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.User == "" || req.Password == "" {
		respondError(w, "user and password are required", http.StatusBadRequest)
		return
	}

	// Compare both credentials before responding so user and password
	// failures are indistinguishable.
	userOK := subtle.ConstantTimeCompare([]byte(req.User), []byte(h.apiUser)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(h.passwordHash), []byte(req.Password))

	if !userOK || passErr != nil {
		respondError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.jwtService.GenerateToken(h.apiUser)
	if err != nil {
		respondError(w, "failed to generate token", http.StatusInternalServerError)
		return
	}

	respondJSON(w, AuthResponse{Token: token}, http.StatusOK)
}

// RefreshRequest represents the token refresh request body
type RefreshRequest struct {
	Token string `json:"token"`
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Token == "" {
		respondError(w, "token is required", http.StatusBadRequest)
		return
	}

	token, err := h.jwtService.RefreshToken(req.Token)
	if err != nil {
		respondError(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}

	respondJSON(w, AuthResponse{Token: token}, http.StatusOK)
}
