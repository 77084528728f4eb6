package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"lunchsync/internal/model"
	"lunchsync/internal/service"
)

type Authenticator interface {
	Authenticate(ctx context.Context, login, password string) (*model.Operator, error)
}

func LoginHandler(authSvc Authenticator, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeCredentials(w, r)
		if !ok {
			return
		}

		op, err := authSvc.Authenticate(r.Context(), req.Login, req.Password)
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			http.Error(w, "invalid login or password", http.StatusUnauthorized)
			return
		case err != nil:
			slog.Error("operator login failed", "login", req.Login, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		issueToken(w, op.ID, secret)
	}
}
