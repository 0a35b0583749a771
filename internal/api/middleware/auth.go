package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ayo6706/bank-transfer-saga/internal/api/problem"
	"github.com/golang-jwt/jwt/v5"
)

const clientContextKey contextKey = "client_id"

var jwtSecret []byte
var jwtIssuer string

type authClaims struct {
	ClientID string `json:"client_id"`
	jwt.RegisteredClaims
}

// SetJWTSecret configures the shared HMAC key. An empty secret leaves auth
// disabled; the router then mounts mutating routes without the middleware.
func SetJWTSecret(secret, issuer string) {
	if secret != "" {
		jwtSecret = []byte(secret)
	}
	jwtIssuer = strings.TrimSpace(issuer)
}

// Enabled reports whether a JWT secret is configured.
func Enabled() bool { return len(jwtSecret) > 0 }

// AuthMiddleware validates the bearer token and injects the client id into
// the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			problem.Write(w, r, http.StatusUnauthorized, problem.Type("auth/authorization-header-required"), http.StatusText(http.StatusUnauthorized), "Authorization header required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			problem.Write(w, r, http.StatusUnauthorized, problem.Type("auth/invalid-token-format"), http.StatusText(http.StatusUnauthorized), "Invalid token format")
			return
		}

		claims := &authClaims{}
		opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
		if jwtIssuer != "" {
			opts = append(opts, jwt.WithIssuer(jwtIssuer))
		}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
			}
			return jwtSecret, nil
		}, opts...)
		if err != nil || !token.Valid {
			problem.Write(w, r, http.StatusUnauthorized, problem.Type("auth/invalid-token"), http.StatusText(http.StatusUnauthorized), "Invalid token")
			return
		}

		clientID := claims.ClientID
		if clientID == "" {
			clientID = claims.Subject
		}
		if clientID == "" {
			problem.Write(w, r, http.StatusUnauthorized, problem.Type("auth/invalid-token-claims"), http.StatusText(http.StatusUnauthorized), "Invalid token claims")
			return
		}
		ctx := context.WithValue(r.Context(), clientContextKey, clientID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIDFromContext returns the authenticated client id.
func ClientIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(clientContextKey).(string); ok {
		return v
	}
	return ""
}
