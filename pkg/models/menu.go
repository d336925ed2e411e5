package models

import (
	"time"
)

// Menu categories are open-ended; these are the ones the seed data and the
// storefront use.
const (
	CategoryAppetizers  = "Appetizers"
	CategoryMainCourses = "Main Courses"
	CategoryDesserts    = "Desserts"
	CategoryBeverages   = "Beverages"
)

type MenuItem struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MenuItemRequest is the create/update payload for admin menu management.
// Pointer fields distinguish "not provided" from zero values on update.
type MenuItemRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Category    string   `json:"category"`
	Active      *bool    `json:"active"`
}
