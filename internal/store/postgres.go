package store

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/moonlight-dining/tableside/pkg/models"
	"github.com/sirupsen/logrus"
)

// PostgresStore persists menu, orders and admin accounts in postgres via
// database/sql.
type PostgresStore struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewPostgresStore(db *sql.DB, logger *logrus.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

// EnsureSchema creates the tables on first run.
func (s *PostgresStore) EnsureSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS menu_items (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description VARCHAR(1000),
			price DECIMAL(12,2) NOT NULL,
			category VARCHAR(255) NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id BIGSERIAL PRIMARY KEY,
			table_number INTEGER NOT NULL,
			email VARCHAR(255),
			phone VARCHAR(32),
			total_amount DECIMAL(12,2) NOT NULL,
			status VARCHAR(64) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id BIGSERIAL PRIMARY KEY,
			order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			menu_item_id BIGINT NOT NULL,
			name VARCHAR(255) NOT NULL,
			quantity INTEGER NOT NULL,
			unit_price DECIMAL(12,2) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS admins (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(255) NOT NULL UNIQUE,
			password VARCHAR(255) NOT NULL,
			full_name VARCHAR(255) NOT NULL,
			role VARCHAR(64) NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// Seed installs the default admin account and starter menu when the
// respective tables are empty.
func (s *PostgresStore) Seed() error {
	var admins int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM admins`).Scan(&admins); err != nil {
		return err
	}
	if admins == 0 {
		_, err := s.db.Exec(
			`INSERT INTO admins (username, password, full_name, role, active) VALUES ($1, $2, $3, $4, TRUE)`,
			"admin", "admin123", "Restaurant Admin", "ADMIN",
		)
		if err != nil {
			return err
		}
		s.logger.Info("Seeded default admin account")
	}

	var items int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM menu_items`).Scan(&items); err != nil {
		return err
	}
	if items == 0 {
		for _, item := range seedMenu() {
			_, err := s.db.Exec(
				`INSERT INTO menu_items (name, description, price, category, active) VALUES ($1, $2, $3, $4, TRUE)`,
				item.Name, item.Description, item.Price, item.Category,
			)
			if err != nil {
				return err
			}
		}
		s.logger.WithField("count", len(seedMenu())).Info("Seeded starter menu")
	}
	return nil
}

func (s *PostgresStore) ListMenu(activeOnly bool) ([]models.MenuItem, error) {
	query := `SELECT id, name, description, price, category, active, created_at FROM menu_items ORDER BY id`
	if activeOnly {
		query = `SELECT id, name, description, price, category, active, created_at FROM menu_items WHERE active ORDER BY id`
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.MenuItem{}
	for rows.Next() {
		var item models.MenuItem
		var description sql.NullString
		if err := rows.Scan(&item.ID, &item.Name, &description, &item.Price, &item.Category, &item.Active, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Description = description.String
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) getMenuItem(id int64) (*models.MenuItem, error) {
	var item models.MenuItem
	var description sql.NullString
	err := s.db.QueryRow(
		`SELECT id, name, description, price, category, active, created_at FROM menu_items WHERE id = $1`, id,
	).Scan(&item.ID, &item.Name, &description, &item.Price, &item.Category, &item.Active, &item.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	item.Description = description.String
	return &item, nil
}

func (s *PostgresStore) CreateMenuItem(req models.MenuItemRequest) (*models.MenuItem, error) {
	if req.Name == "" || req.Price == nil || req.Category == "" {
		return nil, BadRequestError{Message: "Name, price and category are required"}
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	var id int64
	err := s.db.QueryRow(
		`INSERT INTO menu_items (name, description, price, category, active) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		req.Name, req.Description, *req.Price, req.Category, active,
	).Scan(&id)
	if err != nil {
		return nil, err
	}
	return s.getMenuItem(id)
}

func (s *PostgresStore) UpdateMenuItem(id int64, req models.MenuItemRequest) (*models.MenuItem, error) {
	item, err := s.getMenuItem(id)
	if err != nil {
		return nil, err
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

	_, err = s.db.Exec(
		`UPDATE menu_items SET name = $1, description = $2, price = $3, category = $4, active = $5 WHERE id = $6`,
		item.Name, item.Description, item.Price, item.Category, item.Active, id,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *PostgresStore) DeleteMenuItem(id int64) error {
	res, err := s.db.Exec(`DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ToggleMenuItem(id int64) (*models.MenuItem, error) {
	res, err := s.db.Exec(`UPDATE menu_items SET active = NOT active WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return s.getMenuItem(id)
}

// CreateOrder resolves the requested menu items, snapshots their names and
// prices, computes the total and persists everything in one transaction.
func (s *PostgresStore) CreateOrder(req models.CreateOrderRequest) (*models.Order, error) {
	if err := validateCreateOrder(req); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	order := &models.Order{
		TableNumber: req.TableNumber,
		Email:       req.Email,
		Phone:       req.Phone,
		Status:      models.StatusPending,
	}

	for _, reqItem := range req.Items {
		var item models.MenuItem
		err := tx.QueryRow(
			`SELECT id, name, price, active FROM menu_items WHERE id = $1`, reqItem.MenuItemID,
		).Scan(&item.ID, &item.Name, &item.Price, &item.Active)
		if err == sql.ErrNoRows || (err == nil && !item.Active) {
			return nil, BadRequestError{Message: fmt.Sprintf("Menu item not available: %d", reqItem.MenuItemID)}
		}
		if err != nil {
			return nil, err
		}

		order.Items = append(order.Items, models.OrderLine{
			MenuItemID: item.ID,
			Name:       item.Name,
			Quantity:   reqItem.Quantity,
			UnitPrice:  item.Price,
		})
		order.TotalAmount += item.Price * float64(reqItem.Quantity)
	}

	err = tx.QueryRow(
		`INSERT INTO orders (table_number, email, phone, total_amount, status) VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		order.TableNumber, order.Email, order.Phone, order.TotalAmount, order.Status,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return nil, err
	}

	for _, line := range order.Items {
		_, err = tx.Exec(
			`INSERT INTO order_items (order_id, menu_item_id, name, quantity, unit_price) VALUES ($1, $2, $3, $4, $5)`,
			order.ID, line.MenuItemID, line.Name, line.Quantity, line.UnitPrice,
		)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *PostgresStore) ListOrders() ([]models.Order, error) {
	rows, err := s.db.Query(
		`SELECT id, table_number, email, phone, total_amount, status, created_at FROM orders ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		var email, phone sql.NullString
		if err := rows.Scan(&o.ID, &o.TableNumber, &email, &phone, &o.TotalAmount, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Email = email.String
		o.Phone = phone.String
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := s.orderLines(orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (s *PostgresStore) GetOrder(id int64) (*models.Order, error) {
	var o models.Order
	var email, phone sql.NullString
	err := s.db.QueryRow(
		`SELECT id, table_number, email, phone, total_amount, status, created_at FROM orders WHERE id = $1`, id,
	).Scan(&o.ID, &o.TableNumber, &email, &phone, &o.TotalAmount, &o.Status, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Email = email.String
	o.Phone = phone.String

	items, err := s.orderLines(id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (s *PostgresStore) UpdateOrderStatus(id int64, status models.Status) (*models.Order, error) {
	if !status.Valid() {
		return nil, BadRequestError{Message: fmt.Sprintf("Unknown status: %s", status)}
	}

	res, err := s.db.Exec(`UPDATE orders SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return s.GetOrder(id)
}

func (s *PostgresStore) Authenticate(username, password string) (*models.Admin, error) {
	var admin models.Admin
	err := s.db.QueryRow(
		`SELECT id, username, password, full_name, role, active FROM admins WHERE username = $1`, username,
	).Scan(&admin.ID, &admin.Username, &admin.Password, &admin.FullName, &admin.Role, &admin.Active)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !admin.Active || admin.Password != password {
		return nil, ErrNotFound
	}
	return &admin, nil
}

func (s *PostgresStore) orderLines(orderID int64) ([]models.OrderLine, error) {
	rows, err := s.db.Query(
		`SELECT menu_item_id, name, quantity, unit_price FROM order_items WHERE order_id = $1 ORDER BY id`, orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []models.OrderLine
	for rows.Next() {
		var line models.OrderLine
		if err := rows.Scan(&line.MenuItemID, &line.Name, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func seedMenu() []models.MenuItem {
	return []models.MenuItem{
		{Name: "Bruschetta", Description: "Grilled bread, tomato, basil and olive oil", Price: 6.50, Category: models.CategoryAppetizers},
		{Name: "Calamari Fritti", Description: "Crispy squid with lemon aioli", Price: 9.00, Category: models.CategoryAppetizers},
		{Name: "Margherita Pizza", Description: "San Marzano tomato, mozzarella, basil", Price: 12.50, Category: models.CategoryMainCourses},
		{Name: "Spaghetti Carbonara", Description: "Guanciale, pecorino, egg yolk", Price: 14.00, Category: models.CategoryMainCourses},
		{Name: "Grilled Salmon", Description: "With seasonal vegetables", Price: 18.50, Category: models.CategoryMainCourses},
		{Name: "Tiramisu", Description: "Espresso-soaked ladyfingers, mascarpone", Price: 8.00, Category: models.CategoryDesserts},
		{Name: "Panna Cotta", Description: "Vanilla cream with berry coulis", Price: 7.50, Category: models.CategoryDesserts},
		{Name: "Fresh Lemonade", Description: "House-made, lightly sweetened", Price: 4.00, Category: models.CategoryBeverages},
		{Name: "Espresso", Description: "Double shot", Price: 3.00, Category: models.CategoryBeverages},
	}
}
