package service

import (
	"bytes"
	"context"
	"iter"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lunchsync/internal/model"
)

// captureLogs routes the default logger into a buffer for the rest of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(model.DateLayout, s)
	require.NoError(t, err)
	return d
}

func menu(t *testing.T, id int64, day string, typ model.MenuType, dishes ...model.Dish) model.Menu {
	t.Helper()
	m, err := model.NewMenu(id, date(t, day), typ, dishes, "acme")
	require.NoError(t, err)
	return m
}

// weekMenus is a full regular menu for every day of the week of 2016-10-03.
func weekMenus(t *testing.T) []model.Menu {
	t.Helper()
	var menus []model.Menu
	for i, day := range []string{"2016-10-03", "2016-10-04", "2016-10-05", "2016-10-06", "2016-10-07"} {
		base := int64(i * 10)
		menus = append(menus, menu(t, int64(i+1), day, model.MenuTypeRegular,
			model.Dish{ID: base + 1, Type: model.DishTypeMeat},
			model.Dish{ID: base + 2, Type: model.DishTypeSalad},
			model.Dish{ID: base + 3, Type: model.DishTypeGarnish},
		))
	}
	return menus
}

type memUsers struct {
	mu        sync.Mutex
	users     map[string]*model.User
	findErr   map[string]error
	createErr error
	created   []string
	nextID    int
}

func newMemUsers(users ...model.User) *memUsers {
	m := &memUsers{users: make(map[string]*model.User), findErr: make(map[string]error)}
	for _, u := range users {
		m.users[u.Fullname] = &u
	}
	return m
}

func (m *memUsers) FindOne(_ context.Context, name string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.findErr[name]; err != nil {
		return nil, err
	}
	u, ok := m.users[name]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(_ context.Context, name, address string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	u := &model.User{ID: "new-" + strconv.Itoa(m.nextID), Fullname: name, Address: address}
	m.users[name] = u
	m.created = append(m.created, name)
	cp := *u
	return &cp, nil
}

type memOrders struct {
	mu        sync.Mutex
	orders    map[string]model.OrderRecord
	findErr   map[string]error
	createErr map[string]error
	creates   int
}

func newMemOrders() *memOrders {
	return &memOrders{
		orders:    make(map[string]model.OrderRecord),
		findErr:   make(map[string]error),
		createErr: make(map[string]error),
	}
}

func (m *memOrders) FindOne(_ context.Context, rec model.OrderRecord) (*model.StoredOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.findErr[rec.Key()]; err != nil {
		return nil, err
	}
	o, ok := m.orders[rec.Key()]
	if !ok {
		return nil, ErrNotFound
	}
	return &model.StoredOrder{ID: o.Key(), UserID: o.UserID, ShipmentDate: o.Date(), Items: o.Items}, nil
}

func (m *memOrders) Create(_ context.Context, rec model.OrderRecord) (*model.StoredOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.createErr[rec.Key()]; err != nil {
		return nil, err
	}
	m.creates++
	m.orders[rec.Key()] = rec
	return &model.StoredOrder{ID: rec.Key(), UserID: rec.UserID, ShipmentDate: rec.Date(), Items: rec.Items}, nil
}

func (m *memOrders) snapshot() map[string]model.OrderRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]model.OrderRecord, len(m.orders))
	for k, v := range m.orders {
		out[k] = v
	}
	return out
}

type staticMenus struct {
	menus []model.Menu
	err   error
	calls [][2]time.Time
}

func (s *staticMenus) FindBetween(_ context.Context, from, to time.Time) ([]model.Menu, error) {
	s.calls = append(s.calls, [2]time.Time{from, to})
	return s.menus, s.err
}

type staticWeeks struct {
	weeks []model.RawWeek
	err   error
	// unreadable weeks are yielded with their label and an error
	unreadable map[string]error
}

func (s *staticWeeks) ListWeeks(context.Context, string, string) iter.Seq2[model.RawWeek, error] {
	return func(yield func(model.RawWeek, error) bool) {
		if s.err != nil {
			yield(model.RawWeek{}, s.err)
			return
		}
		for _, w := range s.weeks {
			if !yield(w, s.unreadable[w.Label]) {
				return
			}
		}
	}
}

type memLedger struct {
	started  []string
	finished []model.SyncReport
}

func (l *memLedger) StartRun(_ context.Context, runID, _ string) error {
	l.started = append(l.started, runID)
	return nil
}

func (l *memLedger) FinishRun(_ context.Context, report model.SyncReport) error {
	l.finished = append(l.finished, report)
	return nil
}

type recordingObserver struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (o *recordingObserver) OrderCreated(_ context.Context, _ string, rec model.OrderRecord, _ *model.StoredOrder) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.keys = append(o.keys, rec.Key())
	return o.err
}

func seqOf(records ...model.OrderRecord) iter.Seq[model.OrderRecord] {
	return func(yield func(model.OrderRecord) bool) {
		for _, r := range records {
			if !yield(r) {
				return
			}
		}
	}
}
