// file: internal/middleware/auth.go
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"recyclehub/internal/config"
	"recyclehub/internal/contextutils"
	"recyclehub/internal/response"
	"recyclehub/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var errPanic = services.NewInternalError("unexpected server error")

// Claims are the identity claims the API trusts. Subject is the user id.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware verifies HS256 bearer tokens issued by the identity provider
type AuthMiddleware struct {
	secret    []byte
	issuer    string
	adminRole string
	builder   *response.Builder
	logger    *zap.Logger
}

// NewAuthMiddleware creates the bearer token middleware
func NewAuthMiddleware(cfg *config.AuthConfig, builder *response.Builder, logger *zap.Logger) (*AuthMiddleware, error) {
	if cfg == nil || cfg.JWTSecret == "" {
		return nil, errors.New("JWT secret is required")
	}
	adminRole := cfg.AdminRole
	if adminRole == "" {
		adminRole = "admin"
	}
	return &AuthMiddleware{
		secret:    []byte(cfg.JWTSecret),
		issuer:    cfg.JWTIssuer,
		adminRole: adminRole,
		builder:   builder,
		logger:    logger,
	}, nil
}

// ===============================
// MIDDLEWARE
// ===============================

// RequireAuth rejects requests without a valid bearer token and puts the
// caller's identity into the context
func (am *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := am.authenticate(r)
		if err != nil {
			GetRequestLogger(r.Context()).Warn("Authentication failed", zap.Error(err))
			am.builder.WriteUnauthorized(w, r, "Authentication required")
			return
		}

		ctx := contextutils.WithIdentity(r.Context(), claims.Subject, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin lets through only callers holding the admin role. It expects
// RequireAuth to have run first.
func (am *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if contextutils.GetUserID(ctx) == "" {
			am.builder.WriteUnauthorized(w, r, "Authentication required")
			return
		}
		if contextutils.GetRole(ctx) != am.adminRole {
			GetRequestLogger(ctx).Warn("Admin route refused",
				zap.String("user_id", contextutils.GetUserID(ctx)),
				zap.String("role", contextutils.GetRole(ctx)),
			)
			am.builder.WriteForbidden(w, r, "Admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (am *AuthMiddleware) authenticate(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, errors.New("no authorization header")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, errors.New("invalid authorization header format")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if am.issuer != "" {
		opts = append(opts, jwt.WithIssuer(am.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return am.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// IssueToken signs a token for userID. The API never logs users in; this
// serves local development and tests.
func (am *AuthMiddleware) IssueToken(userID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    am.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(am.secret)
}

// AdminRole is the role name RequireAdmin accepts
func (am *AuthMiddleware) AdminRole() string {
	return am.adminRole
}
