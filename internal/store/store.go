package store

import (
	"errors"
	"fmt"

	"github.com/moonlight-dining/tableside/pkg/models"
)

// ErrNotFound is returned for lookups of missing menu items or orders.
var ErrNotFound = errors.New("not found")

// BadRequestError marks a client-caused failure; handlers map it to a 400
// with the message as the response body.
type BadRequestError struct {
	Message string
}

func (e BadRequestError) Error() string {
	return e.Message
}

// Store is the persistence surface behind the ordering service. The
// postgres implementation backs the running service; the memory
// implementation backs handler tests.
type Store interface {
	ListMenu(activeOnly bool) ([]models.MenuItem, error)
	CreateMenuItem(req models.MenuItemRequest) (*models.MenuItem, error)
	UpdateMenuItem(id int64, req models.MenuItemRequest) (*models.MenuItem, error)
	DeleteMenuItem(id int64) error
	ToggleMenuItem(id int64) (*models.MenuItem, error)

	CreateOrder(req models.CreateOrderRequest) (*models.Order, error)
	ListOrders() ([]models.Order, error)
	GetOrder(id int64) (*models.Order, error)
	UpdateOrderStatus(id int64, status models.Status) (*models.Order, error)

	Authenticate(username, password string) (*models.Admin, error)
}

// validateCreateOrder applies the request checks shared by both store
// implementations.
func validateCreateOrder(req models.CreateOrderRequest) error {
	if len(req.Items) == 0 {
		return BadRequestError{Message: "Order must contain at least one item"}
	}
	if req.TableNumber < 1 {
		return BadRequestError{Message: "Table number is required"}
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return BadRequestError{Message: fmt.Sprintf("Invalid quantity for menu item %d", item.MenuItemID)}
		}
	}
	return nil
}
