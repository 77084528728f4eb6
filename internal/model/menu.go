package model

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type MenuType string

const (
	MenuTypeDiet    MenuType = "diet"
	MenuTypeRegular MenuType = "regular"
)

type DishType string

const (
	DishTypeMeat    DishType = "meat"
	DishTypeFish    DishType = "fish"
	DishTypeSalad   DishType = "salad"
	DishTypeGarnish DishType = "garnish"
)

const DateLayout = "2006-01-02"

type Dish struct {
	ID   int64    `json:"id"`
	Type DishType `json:"type"`
}

// MenuRecord is the raw menu shape returned by the menus API.
type MenuRecord struct {
	ID      int64  `json:"id"`
	Date    string `json:"date"`
	Type    string `json:"type"`
	Dishes  []Dish `json:"dishes"`
	Company string `json:"company"`
}

// Menu is one day's dish set for one company and menu type. It is never
// mutated: every variant method returns a new Menu.
type Menu struct {
	id      int64
	date    time.Time
	typ     MenuType
	dishes  []Dish
	company string
}

func NewMenu(id int64, date time.Time, typ MenuType, dishes []Dish, company string) (Menu, error) {
	if typ != MenuTypeDiet && typ != MenuTypeRegular {
		return Menu{}, fmt.Errorf("%w: unknown menu type %q", ErrInvalidMenu, typ)
	}
	for _, d := range dishes {
		if !d.Type.Valid() {
			return Menu{}, fmt.Errorf("%w: dish %d has unknown type %q", ErrInvalidMenu, d.ID, d.Type)
		}
	}
	y, m, day := date.Date()
	return Menu{
		id:      id,
		date:    time.Date(y, m, day, 0, 0, 0, 0, time.UTC),
		typ:     typ,
		dishes:  slices.Clone(dishes),
		company: company,
	}, nil
}

func MenuFromRecord(rec MenuRecord) (Menu, error) {
	date, err := time.Parse(DateLayout, firstN(rec.Date, len(DateLayout)))
	if err != nil {
		return Menu{}, fmt.Errorf("%w: menu %d date %q: %v", ErrInvalidMenu, rec.ID, rec.Date, err)
	}
	return NewMenu(rec.ID, date, MenuType(strings.ToLower(rec.Type)), rec.Dishes, rec.Company)
}

func (t DishType) Valid() bool {
	switch t {
	case DishTypeMeat, DishTypeFish, DishTypeSalad, DishTypeGarnish:
		return true
	}
	return false
}

func (m Menu) ID() int64 { return m.id }
func (m Menu) Date() time.Time { return m.date }
func (m Menu) Type() MenuType { return m.typ }
func (m Menu) Company() string { return m.company }
func (m Menu) DateString() string { return m.date.Format(DateLayout) }

// Dishes returns a copy of the menu's dishes in their original order.
func (m Menu) Dishes() []Dish {
	return slices.Clone(m.dishes)
}

// IsFull reports whether the menu has a main course (meat or fish), a
// garnish and a salad.
func (m Menu) IsFull() bool {
	types := m.DishTypes()
	return (slices.Contains(types, DishTypeMeat) || slices.Contains(types, DishTypeFish)) &&
		slices.Contains(types, DishTypeGarnish) &&
		slices.Contains(types, DishTypeSalad)
}

// DishTypes returns the distinct dish types in order of first appearance.
func (m Menu) DishTypes() []DishType {
	var types []DishType
	for _, d := range m.dishes {
		if !slices.Contains(types, d.Type) {
			types = append(types, d.Type)
		}
	}
	return types
}

func (m Menu) IsCookingAt(date time.Time) bool {
	return m.DateString() == date.Format(DateLayout)
}

func (m Menu) IsCookingFor(company string) bool {
	return m.company == company
}

func (m Menu) WithoutMeat() Menu { return m.Without(DishTypeMeat) }
func (m Menu) WithoutSalad() Menu { return m.Without(DishTypeSalad) }
func (m Menu) WithoutGarnish() Menu { return m.Without(DishTypeGarnish) }
func (m Menu) OnlyMeat() Menu { return m.Only(DishTypeMeat) }
func (m Menu) OnlySalad() Menu { return m.Only(DishTypeSalad) }
func (m Menu) OnlyGarnish() Menu { return m.Only(DishTypeGarnish) }

// Without keeps every dish whose type differs from t.
func (m Menu) Without(t DishType) Menu {
	return m.filter(func(d Dish) bool { return d.Type != t })
}

// Only keeps the dishes of type t.
func (m Menu) Only(t DishType) Menu {
	return m.filter(func(d Dish) bool { return d.Type == t })
}

func (m Menu) filter(keep func(Dish) bool) Menu {
	dishes := make([]Dish, 0, len(m.dishes))
	for _, d := range m.dishes {
		if keep(d) {
			dishes = append(dishes, d)
		}
	}
	return Menu{id: m.id, date: m.date, typ: m.typ, dishes: dishes, company: m.company}
}

func firstN(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
