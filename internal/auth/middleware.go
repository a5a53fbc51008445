// internal/auth/middleware.go
// Bearer-token middleware for tokens issued by the Kiekky auth service

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/imadgeboyega/kiekky-matchmaker/internal/common/utils"
)

type contextKey string

const (
	userIDKey   contextKey = "userID"
	usernameKey contextKey = "username"
	roleKey     contextKey = "role"
)

// RoleAdmin is the token role allowed onto operator endpoints
const RoleAdmin = "admin"

// TokenValidator turns a raw bearer token into claims
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)
}

// JWTValidator validates HS256 tokens signed with a shared secret
type JWTValidator struct {
	secret string
}

func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{secret: secret}
}

func (v *JWTValidator) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
	return utils.ValidateJWT(token, v.secret)
}

// Middleware provides authentication middleware
type Middleware struct {
	validator TokenValidator
}

// NewMiddleware creates a new auth middleware
func NewMiddleware(validator TokenValidator) *Middleware {
	return &Middleware{
		validator: validator,
	}
}

// Authenticate is the main middleware function that protects routes
// It verifies the JWT token and adds the user id to the request context
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Extract token from Authorization header
		token := extractToken(r)
		if token == "" {
			utils.ErrorResponse(w, "Missing or invalid authorization header", http.StatusUnauthorized)
			return
		}

		// 2. Validate token
		claims, err := m.validator.ValidateToken(r.Context(), token)
		if err != nil {
			utils.ErrorResponse(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		// 3. Refresh tokens are not accepted here
		if claims.Type != "" && claims.Type != "access" {
			utils.ErrorResponse(w, "Invalid token type", http.StatusUnauthorized)
			return
		}

		// 4. Pass to the next handler with the updated context
		ctx := WithRole(WithUser(r.Context(), claims.UserID, claims.Username), claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects requests whose token does not carry the admin role.
// It must run after Authenticate.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if role, _ := GetRoleFromContext(r.Context()); role != RoleAdmin {
			utils.ErrorResponse(w, "Admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractToken extracts the JWT token from the Authorization header
// Supports "Bearer <token>" format
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return parts[1]
}

// WithUser stores the authenticated user on a context
func WithUser(ctx context.Context, userID, username string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, usernameKey, username)
}

// GetUserIDFromContext extracts user ID from request context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// GetUsernameFromContext extracts username from request context
func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey).(string)
	return username, ok
}

// WithRole stores the token role on a context
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey, role)
}

// GetRoleFromContext extracts the token role from request context
func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(roleKey).(string)
	return role, ok && role != ""
}
