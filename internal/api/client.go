package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/moonlight-dining/tableside/pkg/models"
	"github.com/sirupsen/logrus"
)

// Client talks to the ordering service REST API. One instance is shared by
// the storefront and admin flows.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(baseURL string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func (c *Client) ListMenu() ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := c.do(http.MethodGet, "/api/menu", nil, &items); err != nil {
		return nil, err
	}
	c.logger.WithField("count", len(items)).Info("Retrieved menu")
	return items, nil
}

func (c *Client) AdminListMenu() ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := c.do(http.MethodGet, "/api/admin/menu", nil, &items); err != nil {
		return nil, err
	}
	c.logger.WithField("count", len(items)).Info("Retrieved admin menu")
	return items, nil
}

func (c *Client) CreateMenuItem(req models.MenuItemRequest) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := c.do(http.MethodPost, "/api/admin/menu", req, &item); err != nil {
		return nil, err
	}
	c.logger.WithField("menu_item_id", item.ID).Info("Menu item created")
	return &item, nil
}

func (c *Client) UpdateMenuItem(id int64, req models.MenuItemRequest) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := c.do(http.MethodPut, fmt.Sprintf("/api/admin/menu/%d", id), req, &item); err != nil {
		return nil, err
	}
	c.logger.WithField("menu_item_id", id).Info("Menu item updated")
	return &item, nil
}

func (c *Client) DeleteMenuItem(id int64) error {
	if err := c.do(http.MethodDelete, fmt.Sprintf("/api/admin/menu/%d", id), nil, nil); err != nil {
		return err
	}
	c.logger.WithField("menu_item_id", id).Info("Menu item deleted")
	return nil
}

func (c *Client) ToggleMenuItem(id int64) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := c.do(http.MethodPatch, fmt.Sprintf("/api/admin/menu/%d/toggle", id), nil, &item); err != nil {
		return nil, err
	}
	c.logger.WithFields(logrus.Fields{
		"menu_item_id": id,
		"active":       item.Active,
	}).Info("Menu item toggled")
	return &item, nil
}

func (c *Client) CreateOrder(req models.CreateOrderRequest) (*models.Order, error) {
	var order models.Order
	if err := c.do(http.MethodPost, "/api/orders", req, &order); err != nil {
		return nil, err
	}
	c.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"table_number": order.TableNumber,
		"total_amount": order.TotalAmount,
	}).Info("Order created")
	return &order, nil
}

func (c *Client) AdminListOrders() ([]models.Order, error) {
	var orders []models.Order
	if err := c.do(http.MethodGet, "/api/admin/orders", nil, &orders); err != nil {
		return nil, err
	}
	c.logger.WithField("count", len(orders)).Info("Retrieved orders")
	return orders, nil
}

func (c *Client) UpdateOrderStatus(id int64, status models.Status) (*models.Order, error) {
	var order models.Order
	path := fmt.Sprintf("/api/admin/orders/%d/status", id)
	if err := c.do(http.MethodPatch, path, models.UpdateStatusRequest{Status: status}, &order); err != nil {
		return nil, err
	}
	c.logger.WithFields(logrus.Fields{
		"order_id": id,
		"status":   status,
	}).Info("Order status updated")
	return &order, nil
}

func (c *Client) Login(username, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	req := models.LoginRequest{Username: username, Password: password}
	if err := c.do(http.MethodPost, "/api/admin/auth/login", req, &resp); err != nil {
		return nil, err
	}
	c.logger.WithField("username", resp.Username).Info("Admin logged in")
	return &resp, nil
}

// do issues one request and decodes the response into out (when non-nil).
// Non-2xx responses surface the server's message when one is present.
func (c *Client) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach ordering service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var errResp models.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Message != "" {
			return fmt.Errorf("%s", errResp.Message)
		}
		return fmt.Errorf("ordering service returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
