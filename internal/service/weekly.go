package service

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"lunchsync/internal/model"
)

type WeekSource interface {
	ListWeeks(ctx context.Context, sheetID, cellRange string) iter.Seq2[model.RawWeek, error]
}

type MenuFinder interface {
	FindBetween(ctx context.Context, from, to time.Time) ([]model.Menu, error)
}

type RunLedger interface {
	StartRun(ctx context.Context, runID, instance string) error
	FinishRun(ctx context.Context, report model.SyncReport) error
}

// WeeklySynchronizer runs the whole pipeline for one instance, one week at a
// time. A failing week is logged and skipped.
type WeeklySynchronizer struct {
	instance      string
	weeks         WeekSource
	menus         MenuFinder
	reconstructor *OrderReconstructor
	engine        *SyncEngine
	ledger        RunLedger
}

func NewWeeklySynchronizer(
	instance string,
	weeks WeekSource,
	menus MenuFinder,
	reconstructor *OrderReconstructor,
	engine *SyncEngine,
	ledger RunLedger,
) *WeeklySynchronizer {
	return &WeeklySynchronizer{
		instance:      instance,
		weeks:         weeks,
		menus:         menus,
		reconstructor: reconstructor,
		engine:        engine,
		ledger:        ledger,
	}
}

func (s *WeeklySynchronizer) Instance() string {
	return s.instance
}

// SyncSheets processes every week of every sheet under a single run id.
func (s *WeeklySynchronizer) SyncSheets(ctx context.Context, sheets []model.SheetRef, filters model.SyncFilters) model.SyncReport {
	report := model.SyncReport{RunID: uuid.NewString(), Instance: s.instance}
	if s.ledger != nil {
		if err := s.ledger.StartRun(ctx, report.RunID, s.instance); err != nil {
			slog.Warn("failed to record sync run start", "run_id", report.RunID, "error", err)
		}
	}

	for _, sheet := range sheets {
		if ctx.Err() != nil {
			break
		}
		report.Weeks = append(report.Weeks, s.sync(ctx, report.RunID, sheet, filters)...)
	}

	if s.ledger != nil {
		if err := s.ledger.FinishRun(context.WithoutCancel(ctx), report); err != nil {
			slog.Warn("failed to record sync run finish", "run_id", report.RunID, "error", err)
		}
	}
	slog.Info("sync finished", "instance", s.instance, "run_id", report.RunID, "weeks", len(report.Weeks), "created", report.Created())
	return report
}

// Sync processes every week of one sheet.
func (s *WeeklySynchronizer) Sync(ctx context.Context, sheet model.SheetRef, filters model.SyncFilters) model.SyncReport {
	return s.SyncSheets(ctx, []model.SheetRef{sheet}, filters)
}

func (s *WeeklySynchronizer) sync(ctx context.Context, runID string, sheet model.SheetRef, filters model.SyncFilters) []model.WeekReport {
	var reports []model.WeekReport
	for raw, err := range s.weeks.ListWeeks(ctx, sheet.ID, sheet.Range) {
		if err != nil {
			label := raw.Label
			if label == "" {
				label = sheet.ID
			}
			slog.Error("can't read weeks", "sheet", sheet.ID, "week", raw.Label, "error", err)
			reports = append(reports, model.WeekReport{Label: label, Error: err.Error()})
			continue
		}
		if ctx.Err() != nil {
			break
		}
		if !matchesFilters(raw.Label, filters) {
			slog.Info("week filtered out", "week", raw.Label)
			continue
		}

		slog.Info("start sync week", "week", raw.Label)
		rep, err := s.syncWeek(ctx, runID, raw)
		if err != nil {
			slog.Error("can't sync week orders", "week", raw.Label, "error", err)
			rep.Error = err.Error()
		}
		reports = append(reports, rep)
	}
	return reports
}

func (s *WeeklySynchronizer) syncWeek(ctx context.Context, runID string, raw model.RawWeek) (rep model.WeekReport, err error) {
	rep.Label = raw.Label
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()

	label, err := model.ParseWeekLabel(raw.Label)
	if err != nil {
		return rep, err
	}
	menus, err := s.menus.FindBetween(ctx, label.Days.First(), label.Days.Last())
	if err != nil {
		return rep, fmt.Errorf("find menus: %w", err)
	}
	index := NewMenuVariantIndex(menus, label.MenuType)
	if index.Len() == 0 {
		slog.Warn("no menus for week", "week", raw.Label, "menu_type", label.MenuType)
	}

	intents := ParseWeekMatrix(raw.Rows)
	records := s.reconstructor.Reconstruct(ctx, label.Days, index, intents, &rep)
	if err := s.engine.Sync(ctx, runID, records, &rep); err != nil {
		return rep, fmt.Errorf("sync orders: %w", err)
	}
	return rep, nil
}

func matchesFilters(rawLabel string, filters model.SyncFilters) bool {
	rng, typ := model.SplitWeekLabel(rawLabel)
	if filters.MenuType != "" && filters.MenuType != typ {
		return false
	}
	if filters.WeekRange != "" {
		want, _ := model.SplitWeekLabel(filters.WeekRange)
		if want != rng {
			return false
		}
	}
	return true
}
