package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the token payload. Tokens are minted by the identity provider;
// NewToken exists for tooling and tests.
type Claims struct {
	jwt.RegisteredClaims
	WorkspaceID string `json:"wid"`
	UserID      string `json:"uid"`
	Role        string `json:"role"`
	Name        string `json:"name,omitempty"`
}

// NewToken signs an HS256 token for the given identity, valid for ttl.
func NewToken(secret string, workspaceID uuid.UUID, userID, role, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		WorkspaceID: workspaceID.String(),
		UserID:      userID,
		Role:        role,
		Name:        name,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("middleware.NewToken: %w", err)
	}
	return signed, nil
}

// Auth validates the bearer token and stores the caller identity in the
// request context. Websocket upgrades may pass the token as the
// access_token query parameter since browsers cannot set headers there.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := extractBearer(r)
			if tok == "" && isWebsocketUpgrade(r) {
				tok = r.URL.Query().Get("access_token")
			}

			if tok != "" {
				ctx, ok := authenticateJWT(r.Context(), tok, jwtSecret)
				if ok {
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			http.Error(w, `{"title":"Unauthorized","status":401,"detail":"missing or invalid credentials"}`, http.StatusUnauthorized)
		})
	}
}

func extractBearer(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return auth[7:]
	}
	return ""
}

func isWebsocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

func authenticateJWT(ctx context.Context, tokenStr, secret string) (context.Context, bool) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return ctx, false
	}

	workspaceID, err := uuid.Parse(claims.WorkspaceID)
	if err != nil {
		return ctx, false
	}

	if strings.TrimSpace(claims.UserID) == "" {
		return ctx, false
	}

	ctx = context.WithValue(ctx, ContextKeyWorkspaceID, workspaceID)
	ctx = context.WithValue(ctx, ContextKeyUserID, claims.UserID)
	ctx = context.WithValue(ctx, ContextKeyUserRole, claims.Role)
	ctx = context.WithValue(ctx, ContextKeyUserName, claims.Name)
	return ctx, true
}
