package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"lunchsync/internal/model"
	"lunchsync/internal/mw"
	"lunchsync/internal/service"
)

const defaultRunsLimit = 20

type SyncRunner interface {
	Run(ctx context.Context, instance string, filters model.SyncFilters) (model.SyncReport, error)
}

type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]model.SyncRun, error)
}

func TriggerSyncHandler(runner SyncRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		instance := chi.URLParam(r, "instance")

		var filters model.SyncFilters
		if err := json.NewDecoder(r.Body).Decode(&filters); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		filters.MenuType = model.MenuType(strings.ToLower(string(filters.MenuType)))
		if filters.MenuType != "" && filters.MenuType != model.MenuTypeDiet && filters.MenuType != model.MenuTypeRegular {
			http.Error(w, "menu_type must be diet or regular", http.StatusUnprocessableEntity)
			return
		}

		operator, _ := mw.OperatorID(r.Context())
		slog.Info("sync requested", "instance", instance, "operator", operator)
		report, err := runner.Run(r.Context(), instance, filters)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrUnknownInstance):
				http.Error(w, "instance not found", http.StatusNotFound)
			case errors.Is(err, service.ErrRunInProgress):
				http.Error(w, "sync already running", http.StatusConflict)
			default:
				slog.Error("sync failed", "instance", instance, "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, report)
	}
}

func ListRunsHandler(runs RunLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultRunsLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = n
		}

		list, err := runs.ListRuns(r.Context(), limit)
		if err != nil {
			slog.Error("list sync runs failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if len(list) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		writeJSON(w, list)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}
