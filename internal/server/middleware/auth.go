// Package middleware provides HTTP middleware for technician authentication.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// technicianIDKey is the context key for storing the authenticated technician ID.
const technicianIDKey ContextKey = "technicianID"

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (TechnicianIDGetter, error)
}

// TechnicianIDGetter extracts the technician ID from token claims.
type TechnicianIDGetter interface {
	GetTechnicianID() uuid.UUID
}

// AuthMiddleware creates middleware that validates bearer tokens and adds the technician ID to the request context.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}

			claims, err := validator.ValidateToken(tokenString)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), technicianIDKey, claims.GetTechnicianID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken parses an Authorization header; the scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="fieldsync"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

// GetTechnicianID extracts the authenticated technician ID from the request context.
func GetTechnicianID(r *http.Request) (uuid.UUID, error) {
	id, ok := r.Context().Value(technicianIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("technician ID not found in request context")
	}
	return id, nil
}

// WithTechnicianID returns a copy of ctx carrying id, as AuthMiddleware would.
func WithTechnicianID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, technicianIDKey, id)
}
