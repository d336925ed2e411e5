package checkout

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/moonlight-dining/tableside/internal/api"
	"github.com/moonlight-dining/tableside/internal/cart"
	"github.com/moonlight-dining/tableside/internal/notify"
	"github.com/moonlight-dining/tableside/pkg/models"
	"github.com/sirupsen/logrus"
)

// ErrNoOrder is returned when the payment step is reached without a
// created order. The caller renders a fallback and routes back to the
// menu; no network call is made.
var ErrNoOrder = errors.New("no order in progress")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError names the input field that failed, so the caller can
// highlight it alongside the notification.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ContactInfo holds the customer-entered details, as raw form strings.
type ContactInfo struct {
	Email       string
	Phone       string
	TableNumber string
}

// PaymentDetails are collected on the payment step but never transmitted;
// payment capture is mocked in this design.
type PaymentDetails struct {
	CardName   string
	CardNumber string
	ExpiryDate string
	CVV        string
}

// Flow is the checkout workflow state: cart, contact details, and the
// created order, carried explicitly between the submission and payment
// steps instead of riding on navigation payloads.
type Flow struct {
	Cart    *cart.Cart
	Contact ContactInfo

	client   *api.Client
	notifier notify.Notifier
	logger   *logrus.Logger

	order        *models.Order
	displayTotal float64
	confirmed    bool

	// returnDelay is how long the confirmation stays up before onReturn
	// fires; onReturn takes the user back to the menu.
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
		returnDelay: 2 * time.Second,
	}
}

// SetReturn configures the post-confirmation return hook.
func (f *Flow) SetReturn(delay time.Duration, fn func()) {
	f.returnDelay = delay
	f.onReturn = fn
}

// PrefillTable seeds the table number from a scanned table code.
func (f *Flow) PrefillTable(tableNumber string) {
	f.Contact.TableNumber = tableNumber
}

func (f *Flow) Order() *models.Order {
	return f.order
}

func (f *Flow) DisplayTotal() float64 {
	return f.displayTotal
}

func (f *Flow) Confirmed() bool {
	return f.confirmed
}

// Submit validates the entered details and creates the order. Validation
// short-circuits on the first failure; each failure is reported to the
// user distinctly and nothing is sent to the network. On server or
// transport failure the cart and entered details are kept for retry.
func (f *Flow) Submit() error {
	if err := f.validate(); err != nil {
		f.notifier.Error(err.Message)
		return err
	}

	tableNumber, _ := strconv.Atoi(strings.TrimSpace(f.Contact.TableNumber))
	req := models.CreateOrderRequest{
		TableNumber: tableNumber,
		Email:       f.Contact.Email,
		Phone:       f.Contact.Phone,
		Items:       f.Cart.OrderItems(),
	}

	order, err := f.client.CreateOrder(req)
	if err != nil {
		f.logger.WithError(err).Error("Failed to create order")
		f.notifier.Error(errorMessage(err, "Something went wrong creating your order"))
		return err
	}

	// Keep the client-side total for display continuity; the server total
	// is authoritative on the order itself.
	f.order = order
	f.displayTotal = f.Cart.TotalPrice()

	f.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"table_number": order.TableNumber,
	}).Info("Order created, advancing to payment")
	return nil
}

func (f *Flow) validate() *ValidationError {
	if f.Contact.Email == "" || f.Contact.Phone == "" {
		return &ValidationError{Field: "contact", Message: "Please enter both email and phone number"}
	}
	if strings.TrimSpace(f.Contact.TableNumber) == "" {
		return &ValidationError{Field: "table_number", Message: "Please select a table number"}
	}
	if f.Cart.Empty() {
		return &ValidationError{Field: "cart", Message: "Your cart is empty"}
	}
	if !emailPattern.MatchString(f.Contact.Email) {
		return &ValidationError{Field: "email", Message: "Please enter a valid email address"}
	}
	if len(digitsOnly(f.Contact.Phone)) != 10 {
		return &ValidationError{Field: "phone", Message: "Please enter a valid 10-digit phone number"}
	}
	if n, err := strconv.Atoi(strings.TrimSpace(f.Contact.TableNumber)); err != nil || n < 1 {
		return &ValidationError{Field: "table_number", Message: "Please select a table number"}
	}
	return nil
}

// ConfirmPayment finalizes the order with a mocked payment capture. The
// card details are collected for the form's sake and go nowhere.
func (f *Flow) ConfirmPayment(details PaymentDetails) error {
	if f.order == nil {
		return ErrNoOrder
	}

	_ = details // a real gateway integration would hand these off here

	f.confirmed = true
	// The order now owns the line items; the cart is done.
	f.Cart.Clear()
	f.notifier.Success(fmt.Sprintf("Order #%d confirmed! Payment successful.", f.order.ID))
	f.logger.WithField("order_id", f.order.ID).Info("Payment confirmed")

	if f.onReturn != nil {
		time.AfterFunc(f.returnDelay, f.onReturn)
	}
	return nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func errorMessage(err error, fallback string) string {
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
