// Package auth issues and validates the API's bearer tokens.
package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/smartaid/medtrack/internal/api/respond"
)

// --------------------------------------------------------------------------
// Bearer token authentication middleware
// --------------------------------------------------------------------------

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "role"
)

// IssueToken signs an HS256 token carrying the user id and role.
func IssueToken(secret, userID, role string, expiry time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(expiry).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// Authenticator returns middleware that validates the Authorization bearer
// token and stores the caller's identity on the request context.
func Authenticator(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header required")
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid Authorization header")
				return
			}

			token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token claims")
				return
			}
			userID, _ := claims["user_id"].(string)
			if userID == "" {
				respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token claims")
				return
			}
			role, _ := claims["role"].(string)

			ctx := context.WithValue(r.Context(), ctxUserID, userID)
			ctx = context.WithValue(ctx, ctxRole, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated user id from the request context.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(ctxUserID).(string)
	return id
}

// Role returns the authenticated role from the request context.
func Role(ctx context.Context) string {
	role, _ := ctx.Value(ctxRole).(string)
	return role
}
