package adminflow

import (
	"github.com/moonlight-dining/tableside/internal/api"
	"github.com/moonlight-dining/tableside/internal/notify"
	"github.com/moonlight-dining/tableside/pkg/models"
	"github.com/sirupsen/logrus"
)

// ConfirmFunc asks the user to confirm a destructive action. Deleting a
// menu item is gated on it.
type ConfirmFunc func(prompt string) bool

// MenuManager is the admin menu console: CRUD plus active toggling, each
// mutation followed by a full refetch to reconcile the displayed list.
type MenuManager struct {
	client   *api.Client
	notifier notify.Notifier
	logger   *logrus.Logger
	confirm  ConfirmFunc

	items []models.MenuItem
}

func NewMenuManager(client *api.Client, notifier notify.Notifier, confirm ConfirmFunc, logger *logrus.Logger) *MenuManager {
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	if confirm == nil {
		confirm = func(string) bool { return true }
	}
	return &MenuManager{client: client, notifier: notifier, confirm: confirm, logger: logger}
}

func (m *MenuManager) Refresh() error {
	items, err := m.client.AdminListMenu()
	if err != nil {
		m.logger.WithError(err).Error("Failed to load menu items")
		m.notifier.Error("Failed to load menu items")
		return err
	}
	m.items = items
	return nil
}

func (m *MenuManager) Items() []models.MenuItem {
	out := make([]models.MenuItem, len(m.items))
	copy(out, m.items)
	return out
}

func (m *MenuManager) Create(req models.MenuItemRequest) error {
	return m.mutateAndReconcile("Menu item added successfully", func() error {
		_, err := m.client.CreateMenuItem(req)
		return err
	})
}

func (m *MenuManager) Update(id int64, req models.MenuItemRequest) error {
	return m.mutateAndReconcile("Menu item updated successfully", func() error {
		_, err := m.client.UpdateMenuItem(id, req)
		return err
	})
}

// Delete asks for confirmation before issuing the call; declining is not
// an error, the action is simply dropped.
func (m *MenuManager) Delete(id int64) error {
	if !m.confirm("Are you sure you want to delete this item?") {
		return nil
	}
	return m.mutateAndReconcile("Menu item deleted successfully", func() error {
		return m.client.DeleteMenuItem(id)
	})
}

func (m *MenuManager) Toggle(id int64) error {
	return m.mutateAndReconcile("Status updated", func() error {
		_, err := m.client.ToggleMenuItem(id)
		return err
	})
}

// mutateAndReconcile runs one mutation, notifies, and refetches the full
// list. There is no optimistic local update; the server's view wins.
func (m *MenuManager) mutateAndReconcile(successMessage string, call func() error) error {
	if err := call(); err != nil {
		m.logger.WithError(err).Error("Menu mutation failed")
		m.notifier.Error(err.Error())
		return err
	}
	m.notifier.Success(successMessage)
	return m.Refresh()
}
