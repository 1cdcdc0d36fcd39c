package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"hireflow/interview/internal/models"
	"hireflow/interview/internal/utils"
)

const identityKey contextKey = "identity"

var (
	ErrMissingAuthHeader = errors.New("missing or malformed Authorization header")
	ErrInvalidToken      = errors.New("invalid token")
	ErrInvalidClaims     = errors.New("invalid token claims")
)

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Role   string
}

// VerifyToken validates an HS256 bearer token from the request and returns the caller.
func VerifyToken(r *http.Request, secret string) (Identity, error) {
	authz := r.Header.Get("Authorization")
	parts := strings.Fields(authz)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return Identity{}, ErrMissingAuthHeader
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidClaims
	}
	return identityFromClaims(claims)
}

func identityFromClaims(claims jwt.MapClaims) (Identity, error) {
	var id Identity
	switch v := claims["sub"].(type) {
	case string:
		id.UserID = v
	case float64:
		// JWT numbers get decoded as float64
		id.UserID = fmt.Sprintf("%d", int64(v))
	default:
		return Identity{}, fmt.Errorf("%w: missing sub", ErrInvalidClaims)
	}
	if id.UserID == "" {
		return Identity{}, fmt.Errorf("%w: empty sub", ErrInvalidClaims)
	}

	role, _ := claims["role"].(string)
	role = strings.ToLower(strings.TrimSpace(role))
	if !models.ValidRoles[role] {
		return Identity{}, fmt.Errorf("%w: unknown role %q", ErrInvalidClaims, role)
	}
	id.Role = role
	return id, nil
}

// Authenticate rejects requests without a valid token and stores the Identity in the context.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := VerifyToken(r, secret)
			if err != nil {
				utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
					Code:    "unauthorized",
					Message: "Unauthorized",
				})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole lets through only callers with one of the given roles. It must run after Authenticate.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := GetIdentity(r)
			if !ok {
				utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{Code: "unauthorized", Message: "Unauthorized"})
				return
			}
			if !allowed[id.Role] {
				utils.JSON(w, http.StatusForbidden, models.ErrorResponse{Code: "forbidden", Message: "Insufficient role"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func GetIdentity(r *http.Request) (Identity, bool) {
	id, ok := r.Context().Value(identityKey).(Identity)
	return id, ok
}
