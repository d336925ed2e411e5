package adminflow

import (
	"fmt"
	"sort"

	"github.com/moonlight-dining/tableside/internal/api"
	"github.com/moonlight-dining/tableside/internal/notify"
	"github.com/moonlight-dining/tableside/pkg/models"
	"github.com/sirupsen/logrus"
)

// FilterAll shows every order regardless of status.
const FilterAll = "ALL"

// OrderBoard is the staff-side view of the order list: fetch, filter by
// status, and advance each order one step along its lifecycle. Mutations
// never touch the local list; the whole set is refetched after each one.
type OrderBoard struct {
	client   *api.Client
	notifier notify.Notifier
	logger   *logrus.Logger

	orders []models.Order
	filter string
}

func NewOrderBoard(client *api.Client, notifier notify.Notifier, logger *logrus.Logger) *OrderBoard {
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	return &OrderBoard{
		client:   client,
		notifier: notifier,
		logger:   logger,
		filter:   FilterAll,
	}
}

// Refresh replaces the board's order set with a fresh fetch, newest first.
func (b *OrderBoard) Refresh() error {
	orders, err := b.client.AdminListOrders()
	if err != nil {
		b.logger.WithError(err).Error("Failed to load orders")
		b.notifier.Error("Failed to load orders")
		return err
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	b.orders = orders
	return nil
}

// SetFilter narrows the visible set to one status, or FilterAll. The
// underlying fetched set is untouched.
func (b *OrderBoard) SetFilter(filter string) {
	b.filter = filter
}

func (b *OrderBoard) Filter() string {
	return b.filter
}

// Orders returns the full fetched set, newest first.
func (b *OrderBoard) Orders() []models.Order {
	out := make([]models.Order, len(b.orders))
	copy(out, b.orders)
	return out
}

// Visible applies the current filter.
func (b *OrderBoard) Visible() []models.Order {
	if b.filter == FilterAll {
		return b.Orders()
	}
	var out []models.Order
	for _, o := range b.orders {
		if string(o.Status) == b.filter {
			out = append(out, o)
		}
	}
	return out
}

// NextAction reports the single transition available for an order, as an
// action label, or false for terminal statuses.
func (b *OrderBoard) NextAction(orderID int64) (string, bool) {
	o := b.find(orderID)
	if o == nil {
		return "", false
	}
	if _, ok := o.Status.Next(); !ok {
		return "", false
	}
	return o.Status.Action(), true
}

// Advance moves an order one step forward and refetches the list. On
// failure the displayed status is left stale until the next refresh.
func (b *OrderBoard) Advance(orderID int64) error {
	o := b.find(orderID)
	if o == nil {
		return fmt.Errorf("order %d is not on the board", orderID)
	}

	next, ok := o.Status.Next()
	if !ok {
		return fmt.Errorf("order %d is already %s", orderID, o.Status)
	}

	if _, err := b.client.UpdateOrderStatus(orderID, next); err != nil {
		b.logger.WithError(err).WithField("order_id", orderID).Error("Failed to update status")
		b.notifier.Error(err.Error())
		return err
	}

	b.notifier.Success(fmt.Sprintf("Order status updated to %s", next))
	b.logger.WithFields(logrus.Fields{
		"order_id": orderID,
		"status":   next,
	}).Info("Order advanced")

	return b.Refresh()
}

func (b *OrderBoard) find(orderID int64) *models.Order {
	for i := range b.orders {
		if b.orders[i].ID == orderID {
			return &b.orders[i]
		}
	}
	return nil
}
