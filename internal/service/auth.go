package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"lunchsync/internal/model"
)

// uniqueViolation is the Postgres SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

var (
	ErrOperatorExists     = errors.New("login already exists")
	ErrInvalidCredentials = errors.New("invalid login or password")
)

// AuthService manages the operators allowed to trigger syncs over HTTP.
// Logins are compared case-insensitively.
type AuthService struct {
	db *sql.DB
}

func NewAuthService(db *sql.DB) *AuthService {
	return &AuthService{db: db}
}

func normalizeLogin(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}

func (s *AuthService) Register(ctx context.Context, login, password string) (*model.Operator, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash operator password: %w", err)
	}

	op := model.Operator{PasswordHash: hash}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO operators (login, password_hash) VALUES ($1, $2) RETURNING id, login, created_at`,
		normalizeLogin(login), hash,
	).Scan(&op.ID, &op.Login, &op.CreatedAt)

	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return nil, ErrOperatorExists
	case err != nil:
		return nil, fmt.Errorf("insert operator: %w", err)
	}
	return &op, nil
}

func (s *AuthService) Authenticate(ctx context.Context, login, password string) (*model.Operator, error) {
	var op model.Operator
	err := s.db.QueryRowContext(ctx,
		`SELECT id, login, password_hash, created_at FROM operators WHERE login = $1`,
		normalizeLogin(login),
	).Scan(&op.ID, &op.Login, &op.PasswordHash, &op.CreatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("get operator: %w", err)
	}

	err = bcrypt.CompareHashAndPassword(op.PasswordHash, []byte(password))
	switch {
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("check operator password: %w", err)
	}
	return &op, nil
}
