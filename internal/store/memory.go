package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/moonlight-dining/tableside/pkg/models"
)

// MemoryStore is an in-memory Store used by tests and local demos.
type MemoryStore struct {
	mu sync.RWMutex

	menu       map[int64]models.MenuItem
	orders     map[int64]*models.Order
	admins     map[string]models.Admin
	nextMenuID int64
	nextOrder  int64
	nextAdmin  int64
	now        func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		menu:   make(map[int64]models.MenuItem),
		orders: make(map[int64]*models.Order),
		admins: make(map[string]models.Admin),
		now:    time.Now,
	}
}

// Seed mirrors the postgres seeding: default admin plus starter menu.
func (s *MemoryStore) Seed() {
	s.AddAdmin("admin", "admin123", "Restaurant Admin", "ADMIN")
	for _, item := range seedMenu() {
		price := item.Price
		active := true
		s.CreateMenuItem(models.MenuItemRequest{
			Name:        item.Name,
			Description: item.Description,
			Price:       &price,
			Category:    item.Category,
			Active:      &active,
		})
	}
}

func (s *MemoryStore) AddAdmin(username, password, fullName, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAdmin++
	s.admins[username] = models.Admin{
		ID:       s.nextAdmin,
		Username: username,
		Password: password,
		FullName: fullName,
		Role:     role,
		Active:   true,
	}
}

func (s *MemoryStore) ListMenu(activeOnly bool) ([]models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := []models.MenuItem{}
	for _, item := range s.menu {
		if activeOnly && !item.Active {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *MemoryStore) CreateMenuItem(req models.MenuItemRequest) (*models.MenuItem, error) {
	if req.Name == "" || req.Price == nil || req.Category == "" {
		return nil, BadRequestError{Message: "Name, price and category are required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	s.nextMenuID++
	item := models.MenuItem{
		ID:          s.nextMenuID,
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		Active:      active,
		CreatedAt:   s.now(),
	}
	s.menu[item.ID] = item
	return &item, nil
}

func (s *MemoryStore) UpdateMenuItem(id int64, req models.MenuItemRequest) (*models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.menu[id]
	if !ok {
		return nil, ErrNotFound
	}
	if req.Name != "" {
		item.Name = req.Name
	}
	if req.Description != "" {
		item.Description = req.Description
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Category != "" {
		item.Category = req.Category
	}
	if req.Active != nil {
		item.Active = *req.Active
	}
	s.menu[id] = item
	return &item, nil
}

func (s *MemoryStore) DeleteMenuItem(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.menu[id]; !ok {
		return ErrNotFound
	}
	delete(s.menu, id)
	return nil
}

func (s *MemoryStore) ToggleMenuItem(id int64) (*models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.menu[id]
	if !ok {
		return nil, ErrNotFound
	}
	item.Active = !item.Active
	s.menu[id] = item
	return &item, nil
}

func (s *MemoryStore) CreateOrder(req models.CreateOrderRequest) (*models.Order, error) {
	if err := validateCreateOrder(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order := &models.Order{
		TableNumber: req.TableNumber,
		Email:       req.Email,
		Phone:       req.Phone,
		Status:      models.StatusPending,
		CreatedAt:   s.now(),
	}

	for _, reqItem := range req.Items {
		item, ok := s.menu[reqItem.MenuItemID]
		if !ok || !item.Active {
			return nil, BadRequestError{Message: fmt.Sprintf("Menu item not available: %d", reqItem.MenuItemID)}
		}
		order.Items = append(order.Items, models.OrderLine{
			MenuItemID: item.ID,
			Name:       item.Name,
			Quantity:   reqItem.Quantity,
			UnitPrice:  item.Price,
		})
		order.TotalAmount += item.Price * float64(reqItem.Quantity)
	}

	s.nextOrder++
	order.ID = s.nextOrder
	s.orders[order.ID] = order

	copied := *order
	return &copied, nil
}

func (s *MemoryStore) ListOrders() ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := []models.Order{}
	for _, o := range s.orders {
		orders = append(orders, *o)
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (s *MemoryStore) GetOrder(id int64) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (s *MemoryStore) UpdateOrderStatus(id int64, status models.Status) (*models.Order, error) {
	if !status.Valid() {
		return nil, BadRequestError{Message: fmt.Sprintf("Unknown status: %s", status)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	o.Status = status
	copied := *o
	return &copied, nil
}

func (s *MemoryStore) Authenticate(username, password string) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	admin, ok := s.admins[username]
	if !ok || !admin.Active || admin.Password != password {
		return nil, ErrNotFound
	}
	return &admin, nil
}

// SetClock overrides the timestamp source in tests.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.now = now
}
