package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"lunchsync/internal/model"
	"lunchsync/internal/service"
)

const minPasswordLen = 6

type Registrar interface {
	Register(ctx context.Context, login, password string) (*model.Operator, error)
}

type credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// decodeCredentials reads a login/password body and writes 400 on failure.
func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return req, false
	}
	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Password == "" {
		http.Error(w, "login and password required", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func RegisterHandler(authSvc Registrar, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeCredentials(w, r)
		if !ok {
			return
		}
		if len(req.Password) < minPasswordLen {
			http.Error(w, "password too short", http.StatusBadRequest)
			return
		}

		op, err := authSvc.Register(r.Context(), req.Login, req.Password)
		switch {
		case errors.Is(err, service.ErrOperatorExists):
			http.Error(w, "login already exists", http.StatusConflict)
			return
		case err != nil:
			slog.Error("operator register failed", "login", req.Login, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		slog.Info("operator registered", "operator_id", op.ID)
		issueToken(w, op.ID, secret)
	}
}
