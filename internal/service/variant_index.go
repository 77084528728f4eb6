package service

import (
	"fmt"
	"log/slog"
	"time"

	"lunchsync/internal/model"
)

// MenuVariantIndex answers, for one week, which dishes an order token means
// on a given date. It is built once per week and only read afterwards.
type MenuVariantIndex struct {
	byDate map[string]map[model.ExclusionRule][]model.Dish
}

// NewMenuVariantIndex keeps the menus of the requested type and precomputes
// every variant of each. When two menus share a date the later one wins.
func NewMenuVariantIndex(menus []model.Menu, typ model.MenuType) *MenuVariantIndex {
	idx := &MenuVariantIndex{byDate: make(map[string]map[model.ExclusionRule][]model.Dish)}
	for _, menu := range menus {
		if typ != "" && menu.Type() != typ {
			slog.Warn("menu ignored, week uses another menu type",
				"menu_id", menu.ID(),
				"date", menu.DateString(),
				"menu_type", menu.Type(),
				"week_menu_type", typ,
			)
			continue
		}
		if !menu.IsFull() {
			slog.Warn("menu is not full", "menu_id", menu.ID(), "date", menu.DateString(), "types", menu.DishTypes())
		}
		variants := make(map[model.ExclusionRule][]model.Dish, len(model.Rules))
		for _, rule := range model.Rules {
			variants[rule] = rule.Apply(menu).Dishes()
		}
		idx.byDate[menu.DateString()] = variants
	}
	return idx
}

func (i *MenuVariantIndex) Has(date time.Time) bool {
	_, ok := i.byDate[date.Format(model.DateLayout)]
	return ok
}

func (i *MenuVariantIndex) Len() int {
	return len(i.byDate)
}

// Resolve returns the dishes the token selects on date.
func (i *MenuVariantIndex) Resolve(date time.Time, token string) ([]model.Dish, error) {
	variants, ok := i.byDate[date.Format(model.DateLayout)]
	if !ok {
		return nil, fmt.Errorf("%w on %s", ErrMenuNotFound, date.Format(model.DateLayout))
	}
	variant, err := model.LookupVariant(token)
	if err != nil {
		return nil, err
	}
	dishes := variants[variant.Rule]
	out := make([]model.Dish, len(dishes))
	copy(out, dishes)
	return out, nil
}

// Items resolves the token into order lines sized by the token's variant.
func (i *MenuVariantIndex) Items(date time.Time, token string) ([]model.OrderItem, error) {
	dishes, err := i.Resolve(date, token)
	if err != nil {
		return nil, err
	}
	variant, err := model.LookupVariant(token)
	if err != nil {
		return nil, err
	}
	items := make([]model.OrderItem, 0, len(dishes))
	for _, d := range dishes {
		items = append(items, model.OrderItem{DishID: d.ID, Size: variant.Size})
	}
	return items, nil
}
