package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"lunchsync/internal/model"
)

type UserDirectory interface {
	// FindOne returns ErrNotFound when no user has the given full name.
	FindOne(ctx context.Context, name string) (*model.User, error)
	Create(ctx context.Context, name, address string) (*model.User, error)
}

// OrderReconstructor turns parsed sheet cells into order records. Unknown
// users are created with the address of the surrounding "Floor" block.
type OrderReconstructor struct {
	users   UserDirectory
	company string
}

func NewOrderReconstructor(users UserDirectory, company string) *OrderReconstructor {
	return &OrderReconstructor{users: users, company: company}
}

type userWeek struct {
	row    int
	name   string
	user   *model.User
	err    error
	orders int
}

// Reconstruct yields the records of one week in sheet order. A user that
// cannot be resolved loses the whole row; a bad token or a day without menu
// loses only that cell. Skipped cells are counted in report.
func (r *OrderReconstructor) Reconstruct(
	ctx context.Context,
	days model.WeekDays,
	index *MenuVariantIndex,
	intents iter.Seq2[OrderIntent, error],
	report *model.WeekReport,
) iter.Seq[model.OrderRecord] {
	return func(yield func(model.OrderRecord) bool) {
		cur := userWeek{row: -1}
		done := func() {
			if cur.row >= 0 && cur.err == nil {
				slog.Info("user week orders", "user", cur.name, "orders", cur.orders)
			}
		}
		defer done()

		for intent, err := range intents {
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				slog.Warn("skipping sheet row", "row", intent.Row+1, "error", err)
				report.Skipped++
				continue
			}
			if intent.Row != cur.row {
				done()
				cur = userWeek{row: intent.Row, name: intent.UserName}
				cur.user, cur.err = r.resolveUser(ctx, intent.UserName, intent.Address)
				if cur.err != nil {
					slog.Error("can't create user's week orders", "user", intent.UserName, "error", cur.err)
				}
			}
			if cur.err != nil {
				if intent.HasOrder() {
					report.Skipped++
				}
				continue
			}
			if !intent.HasOrder() {
				continue
			}

			rec, err := r.buildRecord(days, index, cur.user, intent)
			if err != nil {
				slog.Warn("order has not been created",
					"user", cur.user.Fullname,
					"date", days.At(intent.Weekday).Format(model.DateLayout),
					"token", intent.Token,
					"error", err,
				)
				report.Skipped++
				continue
			}
			cur.orders++
			if !yield(rec) {
				return
			}
		}
	}
}

func (r *OrderReconstructor) buildRecord(days model.WeekDays, index *MenuVariantIndex, user *model.User, intent OrderIntent) (model.OrderRecord, error) {
	date := days.At(intent.Weekday)
	items, err := index.Items(date, intent.Token)
	if err != nil {
		return model.OrderRecord{}, err
	}
	if len(items) == 0 {
		return model.OrderRecord{}, fmt.Errorf("token %q selects no dishes on %s", intent.Token, date.Format(model.DateLayout))
	}
	company := user.Company
	if company == "" {
		company = r.company
	}
	return model.OrderRecord{
		ShipmentDate: date,
		UserID:       user.ID,
		UserName:     user.Fullname,
		Company:      company,
		Address:      user.Address,
		Items:        items,
	}, nil
}

func (r *OrderReconstructor) resolveUser(ctx context.Context, name, address string) (*model.User, error) {
	user, err := r.users.FindOne(ctx, name)
	switch {
	case errors.Is(err, ErrNotFound):
		user, err = r.users.Create(ctx, name, address)
		if err != nil {
			return nil, fmt.Errorf("%w: create %s: %v", ErrUserResolution, name, err)
		}
		slog.Info("user created", "user", name, "address", address)
	case err != nil:
		return nil, fmt.Errorf("%w: find %s: %v", ErrUserResolution, name, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserResolution, name)
	}

	resolved := *user
	if resolved.Fullname == "" {
		resolved.Fullname = name
	}
	if resolved.Address == "" {
		resolved.Address = address
	}
	return &resolved, nil
}
