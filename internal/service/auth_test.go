package service

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthServiceRegister(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewAuthService(db)
	created := time.Date(2016, 10, 3, 9, 0, 0, 0, time.UTC)

	insert := regexp.QuoteMeta("INSERT INTO operators")
	mock.ExpectQuery(insert).
		WithArgs("kate", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "login", "created_at"}).AddRow("op-1", "kate", created))
	mock.ExpectQuery(insert).
		WithArgs("kate", sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation, Message: "duplicate key value"})

	op, err := svc.Register(context.Background(), " Kate ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "op-1", op.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword(op.PasswordHash, []byte("secret1")))

	_, err = svc.Register(context.Background(), "kate", "secret2")
	assert.ErrorIs(t, err, ErrOperatorExists)
}

func TestAuthServiceAuthenticate(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewAuthService(db)
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	sel := regexp.QuoteMeta("FROM operators WHERE login = $1")
	operatorRow := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "login", "password_hash", "created_at"}).
			AddRow("op-1", "kate", hash, time.Now())
	}
	mock.ExpectQuery(sel).WithArgs("kate").WillReturnRows(operatorRow())
	mock.ExpectQuery(sel).WithArgs("kate").WillReturnRows(operatorRow())
	mock.ExpectQuery(sel).WithArgs("nobody").WillReturnError(sql.ErrNoRows)

	op, err := svc.Authenticate(context.Background(), "KATE", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "op-1", op.ID)

	_, err = svc.Authenticate(context.Background(), "kate", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
