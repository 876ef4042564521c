package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"admin-notify-service/internal/response"
)

type contextKey string

const (
	ContextAdminID  contextKey = "admin_id"
	ContextUserType contextKey = "user_type"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carried by dashboard session tokens.
type Claims struct {
	UserID   string `json:"uid"`
	UserType string `json:"type"`
	jwt.RegisteredClaims
}

// Verifier validates dashboard bearer tokens locally (HS256) with
// issuer and audience checks.
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
}

func NewVerifier(secret, issuer, audience string) *Verifier {
	return &Verifier{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
	}
}

func (v *Verifier) ParseAndValidate(tokenStr string) (*Claims, error) {
	claims := new(Claims)
	parser := jwt.NewParser(
		jwt.WithAudience(v.audience),
		jwt.WithIssuer(v.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)

	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Middleware rejects requests without a valid admin bearer token and
// stores the claims on the request context.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Error(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		claims, err := v.ParseAndValidate(tokenStr)
		if err != nil {
			response.Error(w, http.StatusUnauthorized, "Invalid session token")
			return
		}
		if claims.UserType != "admin" {
			response.Error(w, http.StatusForbidden, "Admin session required")
			return
		}

		ctx := context.WithValue(r.Context(), ContextAdminID, claims.UserID)
		ctx = context.WithValue(ctx, ContextUserType, claims.UserType)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
