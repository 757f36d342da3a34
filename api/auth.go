package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const userIDKey contextKey = "user_id"

const tokenLifetime = 24 * time.Hour

// GenerateToken generates a JWT token for the user
func (s *Server) GenerateToken(userID string) (string, error) {
	if len(s.jwtSecret) == 0 {
		return "", fmt.Errorf("JWT secret is not set")
	}

	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(tokenLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// validateToken parses the token and extracts the user ID claim.
func (s *Server) validateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", fmt.Errorf("token has no user_id claim")
	}
	return userID, nil
}

// GuestHandler issues a token for an anonymous user.
func (s *Server) GuestHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		RespondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID := uuid.NewString()
	token, err := s.GenerateToken(userID)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{
		"token":   token,
		"user_id": userID,
	})
}

// authMiddleware requires a valid bearer token and stores the user ID
// on the request context.
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			RespondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		userID, err := s.validateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			RespondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	}
}

func userIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}
