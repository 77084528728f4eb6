package mw

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const OperatorCtxKey contextKey = "operator_id"

// OperatorClaims is the payload of the tokens handed out on login.
type OperatorClaims struct {
	OperatorID string `json:"operator_id"`
	jwt.RegisteredClaims
}

// OperatorID returns the operator authenticated for the request, if any.
func OperatorID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(OperatorCtxKey).(string)
	return id, ok && id != ""
}

func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(jwtSecret), nil
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || tokenString == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			var claims OperatorClaims
			token, err := jwt.ParseWithClaims(tokenString, &claims, keyFunc,
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
				jwt.WithExpirationRequired(),
			)
			if err != nil || !token.Valid {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}
			if claims.OperatorID == "" {
				http.Error(w, "operator_id not found in token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), OperatorCtxKey, claims.OperatorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
