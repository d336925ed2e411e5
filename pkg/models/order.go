package models

import (
	"time"
)

type Order struct {
	ID          int64       `json:"id"`
	TableNumber int         `json:"tableNumber"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	Items       []OrderLine `json:"items"`
	TotalAmount float64     `json:"totalAmount"`
	Status      Status      `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// OrderLine is a snapshot of a menu item at order time. Later price edits
// to the menu item do not touch existing orders.
type OrderLine struct {
	MenuItemID int64   `json:"menuItemId"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
}

type CreateOrderRequest struct {
	TableNumber int               `json:"tableNumber"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone"`
	Items       []CreateOrderItem `json:"items"`
}

type CreateOrderItem struct {
	MenuItemID int64 `json:"menuItemId"`
	Quantity   int   `json:"quantity"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status"`
}

// ErrorResponse is the body returned on any non-2xx response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
