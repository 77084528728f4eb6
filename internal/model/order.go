package model

import (
	"encoding/json"
	"time"
)

type OrderItem struct {
	DishID int64 `json:"dishId"`
	Size   Size  `json:"size"`
}

// OrderRecord is one user's lunch for one shipment date, built from a sheet cell.
type OrderRecord struct {
	ShipmentDate time.Time   `json:"shipmentDate"`
	UserID       string      `json:"userId"`
	UserName     string      `json:"-"`
	Company      string      `json:"company,omitempty"`
	Address      string      `json:"address"`
	Items        []OrderItem `json:"items"`
}

func (o OrderRecord) Date() string {
	return o.ShipmentDate.Format(DateLayout)
}

// Key identifies the order in the remote store.
func (o OrderRecord) Key() string {
	return o.UserID + "|" + o.Date()
}

func (o OrderRecord) MarshalJSON() ([]byte, error) {
	type Alias OrderRecord
	return json.Marshal(&struct {
		ShipmentDate string `json:"shipmentDate"`
		*Alias
	}{
		ShipmentDate: o.Date(),
		Alias:        (*Alias)(&o),
	})
}

// StoredOrder is an order as the remote store reports it.
type StoredOrder struct {
	ID           string      `json:"id"`
	UserID       string      `json:"userId"`
	ShipmentDate string      `json:"shipmentDate"`
	Items        []OrderItem `json:"items"`
}
