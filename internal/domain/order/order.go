package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Status is the delivery lifecycle of an order. Transitions only move
// forward; there is no cancellation or refund path.
type Status string

const (
	StatusCreated   Status = "created"
	StatusPaid      Status = "paid"
	StatusDelivered Status = "delivered"
)

var statusRank = map[Status]int{
	StatusCreated:   0,
	StatusPaid:      1,
	StatusDelivered: 2,
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanAdvanceTo reports whether moving from s to next is a forward transition.
func (s Status) CanAdvanceTo(next Status) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return statusRank[next] > statusRank[s]
}

// InvalidTransitionError indicates a backward or unknown status transition.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

// LineItem is one entry of an order's item list. UnitPrice is the price
// captured at order time; later catalog price changes never touch it.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// ShippingDetails is the destination captured at checkout.
type ShippingDetails struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// PaymentInfo records the upstream payment reference. Gateway semantics are
// outside this core; only the reference and its reported state are kept.
type PaymentInfo struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Order is a persisted customer order. Items and the price breakdown are
// immutable after creation; only Status and DeliveredAt may change.
type Order struct {
	ID            string
	UserID        string
	Items         []LineItem
	Shipping      ShippingDetails
	Payment       PaymentInfo
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	TaxPrice      decimal.Decimal
	TotalPrice    decimal.Decimal
	Status        Status
	PaidAt        time.Time
	DeliveredAt   *time.Time
	CreatedAt     time.Time
}

// Repository defines persistence operations for orders. Each call is a
// single transactional boundary; the service never spans store transactions.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	// Delete hard-deletes an order. Returns ErrNotFound when absent.
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status Status, deliveredAt *time.Time) error
}
