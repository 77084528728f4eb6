package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunchsync/internal/model"
	"lunchsync/internal/service"
)

const secret = "handler-secret"

type fakeAuth struct {
	registered map[string]string
}

func (f *fakeAuth) Register(_ context.Context, login, password string) (*model.Operator, error) {
	if login == "boom" {
		return nil, errors.New("db down")
	}
	if _, ok := f.registered[login]; ok {
		return nil, service.ErrOperatorExists
	}
	f.registered[login] = password
	return &model.Operator{ID: "op-" + login, Login: login}, nil
}

func (f *fakeAuth) Authenticate(_ context.Context, login, password string) (*model.Operator, error) {
	if pw, ok := f.registered[login]; !ok || pw != password {
		return nil, service.ErrInvalidCredentials
	}
	return &model.Operator{ID: "op-" + login, Login: login}, nil
}

type fakeRunner struct {
	got model.SyncFilters
	err error
}

func (f *fakeRunner) Run(_ context.Context, instance string, filters model.SyncFilters) (model.SyncReport, error) {
	f.got = filters
	if f.err != nil {
		return model.SyncReport{}, f.err
	}
	return model.SyncReport{
		RunID:    "run-1",
		Instance: instance,
		Weeks:    []model.WeekReport{{Label: "03.10.2016-07.10.2016", Created: 2}},
	}, nil
}

type fakeRuns struct {
	runs  []model.SyncRun
	limit int
	err   error
}

func (f *fakeRuns) ListRuns(_ context.Context, limit int) ([]model.SyncRun, error) {
	f.limit = limit
	return f.runs, f.err
}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func operatorFromHeader(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	raw, ok := strings.CutPrefix(rec.Header().Get("Authorization"), "Bearer ")
	require.True(t, ok)
	token, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) { return []byte(secret), nil })
	require.NoError(t, err)
	return token.Claims.(jwt.MapClaims)["operator_id"].(string)
}

func TestRegisterHandler(t *testing.T) {
	auth := &fakeAuth{registered: map[string]string{"taken": "secret1"}}
	h := RegisterHandler(auth, secret)

	rec := post(h, "/api/operator/register", `{"login":" kate ","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "op-kate", operatorFromHeader(t, rec))

	assert.Equal(t, http.StatusConflict, post(h, "/", `{"login":"taken","password":"secret1"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h, "/", `{"login":"kate"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h, "/", `{"login":"ann","password":"pw"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h, "/", `{`).Code)
	assert.Equal(t, http.StatusInternalServerError, post(h, "/", `{"login":"boom","password":"secret1"}`).Code)
}

func TestLoginHandler(t *testing.T) {
	h := LoginHandler(&fakeAuth{registered: map[string]string{"kate": "pw"}}, secret)

	rec := post(h, "/api/operator/login", `{"login":"kate","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "op-kate", operatorFromHeader(t, rec))

	assert.Equal(t, http.StatusUnauthorized, post(h, "/", `{"login":"kate","password":"nope"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h, "/", `not json`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h, "/", `{"login":"kate"}`).Code)
}

func syncRouter(runner SyncRunner) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/sync/{instance}", TriggerSyncHandler(runner))
	return r
}

func TestTriggerSyncHandler(t *testing.T) {
	runner := &fakeRunner{}
	h := syncRouter(runner)

	rec := post(h, "/api/sync/kiev", `{"menu_type":"Diet","week_range":"03.10.2016-07.10.2016"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.MenuTypeDiet, runner.got.MenuType)
	assert.Equal(t, "03.10.2016-07.10.2016", runner.got.WeekRange)

	var report model.SyncReport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, "kiev", report.Instance)
	assert.Equal(t, 2, report.Created())
}

func TestTriggerSyncHandlerEmptyBody(t *testing.T) {
	runner := &fakeRunner{}
	rec := post(syncRouter(runner), "/api/sync/kiev", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.SyncFilters{}, runner.got)
}

func TestTriggerSyncHandlerErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"bad json", `{"menu_type":`, nil, http.StatusBadRequest},
		{"bad menu type", `{"menu_type":"vegan"}`, nil, http.StatusUnprocessableEntity},
		{"unknown instance", "", fmt.Errorf("%w: odesa", service.ErrUnknownInstance), http.StatusNotFound},
		{"busy", "", service.ErrRunInProgress, http.StatusConflict},
		{"other", "", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(syncRouter(&fakeRunner{err: tt.err}), "/api/sync/kiev", tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestListRunsHandler(t *testing.T) {
	started := time.Date(2016, 10, 3, 9, 0, 0, 0, time.UTC)
	runs := &fakeRuns{runs: []model.SyncRun{{ID: "run-1", Instance: "kiev", Status: model.RunStatusFinished, Created: 4, StartedAt: started}}}
	h := ListRunsHandler(runs)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sync/runs?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, runs.limit)

	var got []model.SyncRun
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "run-1", got[0].ID)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sync/runs", nil))
	assert.Equal(t, defaultRunsLimit, runs.limit)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sync/runs?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRunsHandlerEmptyAndFailing(t *testing.T) {
	rec := httptest.NewRecorder()
	ListRunsHandler(&fakeRuns{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	ListRunsHandler(&fakeRuns{err: errors.New("db down")}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
