package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront-go/storefront/internal/domain/product"
	"github.com/storefront-go/storefront/internal/domain/user"
)

// ProductNotFoundError indicates a cart references a product that does not
// exist in the catalog.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// CreateRequest holds the checkout input: the immutable cart snapshot plus
// the client's price breakdown and payment reference.
type CreateRequest struct {
	Items         []CartItem
	Shipping      ShippingDetails
	Payment       PaymentInfo
	ShippingPrice decimal.Decimal
	TaxPrice      decimal.Decimal
	TotalPrice    decimal.Decimal
}

// Detail is an order joined with its resolved owner for presentation.
// Owner is zero-valued when the owning user no longer exists.
type Detail struct {
	Order Order
	Owner user.User
}

// AdminList is the administrative view over every order: the orders plus the
// aggregate total, recomputed by summation on each call rather than stored.
type AdminList struct {
	Orders     []Order
	TotalPrice decimal.Decimal
}

// Service orchestrates order creation, retrieval, listing, and
// administrative deletion.
type Service struct {
	products product.Repository
	users    user.Repository
	orders   Repository
	now      func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
func NewService(products product.Repository, users user.Repository, orders Repository) *Service {
	return &Service{
		products: products,
		users:    users,
		orders:   orders,
		now:      time.Now,
	}
}

// Create validates the cart snapshot, recomputes and verifies the price
// breakdown, and persists the order with payment stamped at the current time.
// Nothing is persisted when validation fails. Note that stock is neither
// checked nor reserved: concurrent orders for the same product may both
// succeed.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*Order, error) {
	quote, err := ComputeQuote(req.Items, req.ShippingPrice, req.TaxPrice)
	if err != nil {
		return nil, err
	}

	// Every referenced product must exist, fetched in a single batch. The
	// captured unit prices still come from the snapshot, not the live catalog.
	ids := make([]string, len(req.Items))
	for i, item := range req.Items {
		ids[i] = item.ProductID
	}
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	known := make(map[string]struct{}, len(fetched))
	for _, p := range fetched {
		known[p.ID] = struct{}{}
	}
	for _, item := range req.Items {
		if _, ok := known[item.ProductID]; !ok {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}
	}

	if err := quote.Verify(req.TotalPrice); err != nil {
		return nil, err
	}

	items := make([]LineItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = LineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.RoundBank(2),
		}
	}

	// Payment is recorded at checkout, so orders are born paid.
	o := &Order{
		ID:            uuid.New().String(),
		UserID:        userID,
		Items:         items,
		Shipping:      req.Shipping,
		Payment:       req.Payment,
		ItemsPrice:    quote.ItemsPrice,
		ShippingPrice: quote.ShippingPrice,
		TaxPrice:      quote.TaxPrice,
		TotalPrice:    quote.TotalPrice,
		Status:        StatusPaid,
		PaidAt:        s.now(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// Get fetches one order and resolves the owning user's name and email.
// A missing owner is tolerated (the user may have been deleted); a missing
// order is ErrNotFound.
func (s *Service) Get(ctx context.Context, orderID string) (*Detail, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %s", orderID)
	}

	detail := &Detail{Order: *o}
	owner, err := s.users.GetByID(ctx, o.UserID)
	switch {
	case err == nil:
		detail.Owner = *owner
	case errors.Is(err, user.ErrNotFound):
		// keep zero owner
	default:
		return nil, errors.Wrapf(err, "resolve owner %s", o.UserID)
	}
	return detail, nil
}

// ListByUser returns the orders whose owning-user reference equals userID.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	list, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders by user")
	}
	return list, nil
}

// ListAll returns every order together with the aggregate total price,
// recomputed by summation over the returned orders.
func (s *Service) ListAll(ctx context.Context) (*AdminList, error) {
	list, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list all orders")
	}

	total := decimal.Zero
	for _, o := range list {
		total = total.Add(o.TotalPrice)
	}
	return &AdminList{Orders: list, TotalPrice: total}, nil
}

// Delete hard-deletes an order. Deleting an order does not restore product
// stock. Returns ErrNotFound when the order does not exist.
func (s *Service) Delete(ctx context.Context, orderID string) error {
	if err := s.orders.Delete(ctx, orderID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return errors.Wrapf(err, "delete order %s", orderID)
	}
	return nil
}

// AdvanceStatus moves an order forward through its lifecycle. Backward or
// unknown transitions fail with InvalidTransitionError.
func (s *Service) AdvanceStatus(ctx context.Context, orderID string, next Status) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %s", orderID)
	}

	if !o.Status.CanAdvanceTo(next) {
		return nil, &InvalidTransitionError{From: o.Status, To: next}
	}

	var deliveredAt *time.Time
	if next == StatusDelivered {
		t := s.now()
		deliveredAt = &t
	}
	if err := s.orders.UpdateStatus(ctx, orderID, next, deliveredAt); err != nil {
		return nil, errors.Wrapf(err, "update status of order %s", orderID)
	}

	o.Status = next
	o.DeliveredAt = deliveredAt
	return o, nil
}
