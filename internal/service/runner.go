package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"lunchsync/internal/model"
)

var (
	ErrUnknownInstance = errors.New("unknown instance")
	ErrRunInProgress   = errors.New("sync already running for instance")
)

// Runner owns the synchronizers of every configured instance. Runs of the
// same instance never overlap.
type Runner struct {
	sheets []model.SheetRef
	syncs  map[string]*WeeklySynchronizer
	mu     sync.Mutex
	busy   map[string]bool
}

func NewRunner(sheets []model.SheetRef, syncs ...*WeeklySynchronizer) *Runner {
	r := &Runner{
		sheets: sheets,
		syncs:  make(map[string]*WeeklySynchronizer, len(syncs)),
		busy:   make(map[string]bool),
	}
	for _, s := range syncs {
		r.syncs[s.Instance()] = s
	}
	return r
}

func (r *Runner) Instances() []string {
	keys := make([]string, 0, len(r.syncs))
	for k := range r.syncs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *Runner) Run(ctx context.Context, instance string, filters model.SyncFilters) (model.SyncReport, error) {
	s, ok := r.syncs[instance]
	if !ok {
		return model.SyncReport{}, fmt.Errorf("%w: %s", ErrUnknownInstance, instance)
	}

	r.mu.Lock()
	if r.busy[instance] {
		r.mu.Unlock()
		return model.SyncReport{}, fmt.Errorf("%w: %s", ErrRunInProgress, instance)
	}
	r.busy[instance] = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.busy, instance)
		r.mu.Unlock()
	}()

	return s.SyncSheets(ctx, r.sheets, filters), nil
}

// RunAll syncs every instance in key order and returns the reports of the
// runs that could start.
func (r *Runner) RunAll(ctx context.Context, filters model.SyncFilters) ([]model.SyncReport, error) {
	var reports []model.SyncReport
	var errs []error
	for _, key := range r.Instances() {
		if ctx.Err() != nil {
			break
		}
		rep, err := r.Run(ctx, key, filters)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		reports = append(reports, rep)
	}
	return reports, errors.Join(errs...)
}
