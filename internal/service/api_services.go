package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lunchsync/internal/model"
)

type MenusService struct {
	api *APIClient
}

// FindBetween returns the valid menus cooked between from and to inclusive.
// Malformed menus are logged and left out.
func (s *MenusService) FindBetween(ctx context.Context, from, to time.Time) ([]model.Menu, error) {
	q := url.Values{}
	q.Set("startDate", from.Format(model.DateLayout))
	q.Set("endDate", to.Format(model.DateLayout))
	if s.api.company != "" {
		q.Set("company", s.api.company)
	}

	var records []model.MenuRecord
	if err := s.api.do(ctx, http.MethodGet, "/menus", q, nil, &records); err != nil {
		return nil, fmt.Errorf("find menus: %w", err)
	}

	menus := make([]model.Menu, 0, len(records))
	for _, rec := range records {
		menu, err := model.MenuFromRecord(rec)
		if err != nil {
			slog.Warn("skipping menu", "menu_id", rec.ID, "error", err)
			continue
		}
		menus = append(menus, menu)
	}
	return menus, nil
}

type UsersService struct {
	api *APIClient
}

func (s *UsersService) FindOne(ctx context.Context, name string) (*model.User, error) {
	q := url.Values{}
	q.Set("fullname", name)

	var users []model.User
	if err := s.api.do(ctx, http.MethodGet, "/users", q, nil, &users); err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	for i := range users {
		if users[i].Fullname == name {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *UsersService) Create(ctx context.Context, name, address string) (*model.User, error) {
	req := model.User{Fullname: name, Address: address, Company: s.api.company}
	var user model.User
	if err := s.api.do(ctx, http.MethodPost, "/users", nil, req, &user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

type OrdersService struct {
	api *APIClient
}

func (s *OrdersService) FindOne(ctx context.Context, rec model.OrderRecord) (*model.StoredOrder, error) {
	q := url.Values{}
	q.Set("shipmentDate", rec.Date())

	var orders []model.StoredOrder
	err := s.api.do(ctx, http.MethodGet, ordersPath(rec.UserID), q, nil, &orders)
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) && remoteErr.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	for i := range orders {
		if strings.HasPrefix(orders[i].ShipmentDate, rec.Date()) {
			return &orders[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *OrdersService) Create(ctx context.Context, rec model.OrderRecord) (*model.StoredOrder, error) {
	var stored model.StoredOrder
	if err := s.api.do(ctx, http.MethodPost, ordersPath(rec.UserID), nil, rec, &stored); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &stored, nil
}

func ordersPath(userID string) string {
	return "/users/" + url.PathEscape(userID) + "/orders"
}
