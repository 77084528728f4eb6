package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"lunchsync/internal/model"
)

type OrderStore interface {
	// FindOne looks the order up by user and shipment date and returns
	// ErrNotFound when there is none.
	FindOne(ctx context.Context, rec model.OrderRecord) (*model.StoredOrder, error)
	Create(ctx context.Context, rec model.OrderRecord) (*model.StoredOrder, error)
}

// OrderObserver is notified after an order has been created remotely.
type OrderObserver interface {
	OrderCreated(ctx context.Context, runID string, rec model.OrderRecord, stored *model.StoredOrder) error
}

type syncOutcome int

const (
	outcomeCreated syncOutcome = iota
	outcomeExisting
	outcomeFailed
)

// SyncEngine creates the records missing from the order store. The
// find-then-create pair is not atomic on the remote side, so records sharing
// a user and shipment date are never synced concurrently.
type SyncEngine struct {
	store     OrderStore
	observers []OrderObserver
	workers   int
	locks     *keyedMutex
}

func NewSyncEngine(store OrderStore, workers int, observers ...OrderObserver) *SyncEngine {
	if workers < 1 {
		workers = 1
	}
	return &SyncEngine{
		store:     store,
		observers: observers,
		workers:   workers,
		locks:     newKeyedMutex(),
	}
}

// Sync consumes records until the sequence ends or ctx is cancelled. Store
// failures are logged and counted per record; they never stop the batch.
func (e *SyncEngine) Sync(ctx context.Context, runID string, records iter.Seq[model.OrderRecord], report *model.WeekReport) error {
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(e.workers)

	for rec := range records {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcome := e.syncRecovered(ctx, runID, rec)
			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case outcomeCreated:
				report.Created++
			case outcomeExisting:
				report.Existing++
			case outcomeFailed:
				report.Failed++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// syncRecovered turns a panic in the store or an observer into a failed
// record so one bad call cannot take the worker goroutines down.
func (e *SyncEngine) syncRecovered(ctx context.Context, runID string, rec model.OrderRecord) (outcome syncOutcome) {
	defer func() {
		if r := recover(); r != nil {
			e.warn(rec, fmt.Errorf("panic: %v", r))
			outcome = outcomeFailed
		}
	}()
	return e.syncOne(ctx, runID, rec)
}

func (e *SyncEngine) syncOne(ctx context.Context, runID string, rec model.OrderRecord) syncOutcome {
	unlock := e.locks.Lock(rec.Key())
	defer unlock()

	existing, err := e.store.FindOne(ctx, rec)
	switch {
	case err == nil && existing != nil:
		slog.Debug("order already exists", "user", rec.UserName, "date", rec.Date(), "order_id", existing.ID)
		return outcomeExisting
	case err != nil && !errors.Is(err, ErrNotFound):
		e.warn(rec, err)
		return outcomeFailed
	}

	stored, err := e.store.Create(ctx, rec)
	if err != nil {
		e.warn(rec, err)
		return outcomeFailed
	}
	slog.Info("order created", "user", rec.UserName, "date", rec.Date(), "items", len(rec.Items))

	for _, obs := range e.observers {
		if err := obs.OrderCreated(ctx, runID, rec, stored); err != nil {
			slog.Warn("order observer failed", "user", rec.UserName, "date", rec.Date(), "error", err)
		}
	}
	return outcomeCreated
}

func (e *SyncEngine) warn(rec model.OrderRecord, err error) {
	err = fmt.Errorf("%w: %v", ErrRemoteSync, err)
	slog.Warn("can't sync user order", "user", rec.UserName, "date", rec.Date(), "error", err)
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyLock)}
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
