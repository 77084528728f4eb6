package handler

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lunchsync/internal/mw"
)

const tokenTTL = 24 * time.Hour

func issueToken(w http.ResponseWriter, operatorID, secret string) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mw.OperatorClaims{
		OperatorID: operatorID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operatorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	})

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		http.Error(w, "token generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Authorization", "Bearer "+tokenString)
	w.WriteHeader(http.StatusOK)
}
