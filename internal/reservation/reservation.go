package reservation

import (
	"fmt"
	"strconv"
	"time"

	"github.com/moonlight-dining/tableside/internal/api"
	"github.com/moonlight-dining/tableside/internal/cart"
	"github.com/moonlight-dining/tableside/internal/checkout"
	"github.com/moonlight-dining/tableside/internal/notify"
	"github.com/moonlight-dining/tableside/pkg/models"
	"github.com/sirupsen/logrus"
)

// Stage identifies which half of the reservation flow the user is on.
type Stage int

const (
	StageDetails Stage = iota + 1
	StagePayment
)

// TableCount is the size of the selectable table grid.
const TableCount = 15

// Details is the stage-1 reservation form state.
type Details struct {
	TableNumber     int // 0 means not selected
	Date            string
	Time            string
	Guests          string
	SpecialRequests string
}

// Flow is the two-stage reservation workflow: table and timing details
// first, then the same payment fields as checkout. Reservation orders are
// created without contact info.
type Flow struct {
	Cart    *cart.Cart
	Details Details

	client   *api.Client
	notifier notify.Notifier
	logger   *logrus.Logger

	stage Stage
	order *models.Order

	returnDelay time.Duration
	onReturn    func()
}

func NewFlow(c *cart.Cart, client *api.Client, notifier notify.Notifier, logger *logrus.Logger) *Flow {
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	return &Flow{
		Cart:        c,
		client:      client,
		notifier:    notifier,
		logger:      logger,
		stage:       StageDetails,
		returnDelay: 1500 * time.Millisecond,
		Details:     Details{Guests: "2"},
	}
}

func (f *Flow) SetReturn(delay time.Duration, fn func()) {
	f.returnDelay = delay
	f.onReturn = fn
}

func (f *Flow) Stage() Stage {
	return f.stage
}

func (f *Flow) Order() *models.Order {
	return f.order
}

// SelectTable picks one table out of the grid; selection is exclusive.
// Out-of-range numbers are ignored.
func (f *Flow) SelectTable(tableNumber int) {
	if tableNumber < 1 || tableNumber > TableCount {
		return
	}
	f.Details.TableNumber = tableNumber
}

// ProceedToPayment moves to stage 2 once table, date and time are all set.
// Any missing piece blocks the transition with one combined error.
func (f *Flow) ProceedToPayment() error {
	if f.Details.TableNumber == 0 || f.Details.Date == "" || f.Details.Time == "" {
		err := &checkout.ValidationError{
			Field:   "reservation",
			Message: "Please complete all required reservation details",
		}
		f.notifier.Error(err.Message)
		return err
	}
	f.stage = StagePayment
	return nil
}

// BackToDetails returns to stage 1 preserving everything entered so far.
func (f *Flow) BackToDetails() {
	f.stage = StageDetails
}

// SubmitPayment creates the reservation's order. The table and cart are
// re-checked here because stage 2 can be re-entered after going back.
// Email and phone are deliberately empty: this flow collects neither.
func (f *Flow) SubmitPayment(details checkout.PaymentDetails) error {
	if f.Details.TableNumber == 0 {
		err := &checkout.ValidationError{Field: "table_number", Message: "Please select a table"}
		f.notifier.Error(err.Message)
		return err
	}
	if f.Cart.Empty() {
		err := &checkout.ValidationError{Field: "cart", Message: "Your cart is empty"}
		f.notifier.Error(err.Message)
		return err
	}

	_ = details // collected only; payment capture is mocked

	req := models.CreateOrderRequest{
		TableNumber: f.Details.TableNumber,
		Email:       "",
		Phone:       "",
		Items:       f.Cart.OrderItems(),
	}

	order, err := f.client.CreateOrder(req)
	if err != nil {
		f.logger.WithError(err).Error("Failed to create reservation order")
		f.notifier.Error(err.Error())
		return err
	}

	f.order = order
	// The order now owns the line items; the cart is done.
	f.Cart.Clear()
	f.notifier.Success(fmt.Sprintf("Order #%d created. Reservation confirmed.", order.ID))
	f.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"table_number": order.TableNumber,
		"date":         f.Details.Date,
		"time":         f.Details.Time,
		"guests":       f.Details.Guests,
	}).Info("Reservation confirmed")

	if f.onReturn != nil {
		time.AfterFunc(f.returnDelay, f.onReturn)
	}
	return nil
}

// GuestOptions is the bounded guest-count choice list for the stage-1 form.
func GuestOptions() []string {
	opts := make([]string, 0, 8)
	for i := 1; i <= 8; i++ {
		opts = append(opts, strconv.Itoa(i))
	}
	return opts
}
