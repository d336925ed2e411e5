package store

import (
	"errors"
	"testing"
	"time"

	"github.com/moonlight-dining/tableside/pkg/models"
)

func seededStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	s.Seed()
	return s
}

func TestSeedInstallsAdminAndMenu(t *testing.T) {
	s := seededStore(t)

	admin, err := s.Authenticate("admin", "admin123")
	if err != nil {
		t.Fatalf("default admin should authenticate: %v", err)
	}
	if admin.Role != "ADMIN" {
		t.Errorf("expected ADMIN role, got %s", admin.Role)
	}

	items, err := s.ListMenu(false)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) == 0 {
		t.Error("seed should install a starter menu")
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	s := seededStore(t)

	if _, err := s.Authenticate("admin", "wrong"); !errors.Is(err, ErrNotFound) {
		t.Errorf("wrong password should be rejected, got %v", err)
	}
	if _, err := s.Authenticate("ghost", "admin123"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown user should be rejected, got %v", err)
	}
}

func TestCreateOrderSnapshotsPrices(t *testing.T) {
	s := NewMemoryStore()
	price := 10.0
	item, err := s.CreateMenuItem(models.MenuItemRequest{Name: "Margherita", Price: &price, Category: models.CategoryMainCourses})
	if err != nil {
		t.Fatalf("create menu item failed: %v", err)
	}

	order, err := s.CreateOrder(models.CreateOrderRequest{
		TableNumber: 3,
		Email:       "a@b.com",
		Phone:       "9876543210",
		Items:       []models.CreateOrderItem{{MenuItemID: item.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if order.TotalAmount != 20 {
		t.Errorf("expected server-computed total 20, got %v", order.TotalAmount)
	}
	if order.Status != models.StatusPending {
		t.Errorf("new orders start PENDING, got %s", order.Status)
	}
	if len(order.Items) != 1 || order.Items[0].Name != "Margherita" || order.Items[0].UnitPrice != 10 {
		t.Errorf("order lines must snapshot the menu item: %+v", order.Items)
	}

	// A later price change must not touch the existing order.
	newPrice := 99.0
	if _, err := s.UpdateMenuItem(item.ID, models.MenuItemRequest{Price: &newPrice}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	stored, err := s.GetOrder(order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if stored.Items[0].UnitPrice != 10 || stored.TotalAmount != 20 {
		t.Errorf("price change leaked into existing order: %+v", stored)
	}
}

func TestCreateOrderRejections(t *testing.T) {
	s := NewMemoryStore()
	price := 5.0
	active := false
	inactive, err := s.CreateMenuItem(models.MenuItemRequest{Name: "Off Menu", Price: &price, Category: models.CategoryDesserts, Active: &active})
	if err != nil {
		t.Fatalf("create menu item failed: %v", err)
	}

	tests := []struct {
		name string
		req  models.CreateOrderRequest
	}{
		{"no items", models.CreateOrderRequest{TableNumber: 1}},
		{"no table", models.CreateOrderRequest{Items: []models.CreateOrderItem{{MenuItemID: inactive.ID, Quantity: 1}}}},
		{"unknown item", models.CreateOrderRequest{TableNumber: 1, Items: []models.CreateOrderItem{{MenuItemID: 404, Quantity: 1}}}},
		{"inactive item", models.CreateOrderRequest{TableNumber: 1, Items: []models.CreateOrderItem{{MenuItemID: inactive.ID, Quantity: 1}}}},
		{"zero quantity", models.CreateOrderRequest{TableNumber: 1, Items: []models.CreateOrderItem{{MenuItemID: inactive.ID, Quantity: 0}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateOrder(tt.req)
			if err == nil {
				t.Fatal("expected rejection")
			}
			var badReq BadRequestError
			if !errors.As(err, &badReq) {
				t.Errorf("expected BadRequestError, got %T", err)
			}
		})
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	price := 4.0
	item, _ := s.CreateMenuItem(models.MenuItemRequest{Name: "Lemonade", Price: &price, Category: models.CategoryBeverages})

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	current := base
	s.SetClock(func() time.Time {
		current = current.Add(time.Hour)
		return current
	})

	for i := 0; i < 3; i++ {
		if _, err := s.CreateOrder(models.CreateOrderRequest{
			TableNumber: i + 1,
			Items:       []models.CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
		}); err != nil {
			t.Fatalf("create order failed: %v", err)
		}
	}

	orders, err := s.ListOrders()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for i := 1; i < len(orders); i++ {
		if orders[i].CreatedAt.After(orders[i-1].CreatedAt) {
			t.Errorf("orders not sorted newest first: %v then %v", orders[i-1].CreatedAt, orders[i].CreatedAt)
		}
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	s := NewMemoryStore()
	price := 4.0
	item, _ := s.CreateMenuItem(models.MenuItemRequest{Name: "Lemonade", Price: &price, Category: models.CategoryBeverages})
	order, err := s.CreateOrder(models.CreateOrderRequest{
		TableNumber: 1,
		Items:       []models.CreateOrderItem{{MenuItemID: item.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	updated, err := s.UpdateOrderStatus(order.ID, models.StatusPreparing)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != models.StatusPreparing {
		t.Errorf("expected PREPARING, got %s", updated.Status)
	}

	if _, err := s.UpdateOrderStatus(order.ID, models.Status("BOGUS")); err == nil {
		t.Error("unknown status must be rejected")
	}
	if _, err := s.UpdateOrderStatus(999, models.StatusReady); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown order should be ErrNotFound, got %v", err)
	}
}

func TestToggleMenuItemHidesFromActiveListing(t *testing.T) {
	s := NewMemoryStore()
	price := 6.0
	item, _ := s.CreateMenuItem(models.MenuItemRequest{Name: "Bruschetta", Price: &price, Category: models.CategoryAppetizers})

	toggled, err := s.ToggleMenuItem(item.ID)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if toggled.Active {
		t.Error("toggle should flip active off")
	}

	activeItems, _ := s.ListMenu(true)
	if len(activeItems) != 0 {
		t.Errorf("inactive item leaked into active listing")
	}
	allItems, _ := s.ListMenu(false)
	if len(allItems) != 1 {
		t.Errorf("admin listing should include inactive items")
	}
}
