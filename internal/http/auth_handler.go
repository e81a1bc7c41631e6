package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// AuthHandler is the placeholder credentials flow carried over from the
// storefront. It never verifies anything against a user store: any
// well-formed email/password pair yields a fabricated user and a session
// token. Not a security model.
type AuthHandler struct {
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthHandler(secret []byte, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type LoginResponseDTO struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type sessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "missing_credentials", "email and password are required")
		return
	}

	user := UserDTO{
		ID:    "1",
		Email: req.Email,
		Name:  "Usuario de Prueba",
	}

	now := time.Now()
	claims := sessionClaims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to issue session token")
		return
	}

	respondJSON(w, http.StatusOK, LoginResponseDTO{
		Token: token,
		User:  user,
	})
}

// Me echoes the user carried by the session token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	respondJSON(w, http.StatusOK, user)
}
