package order

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for cart validation.
var (
	ErrEmptyItems     = errors.New("items required")
	ErrNegativeCharge = errors.New("shipping and tax prices must not be negative")
)

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// InvalidPriceError indicates a line item has a non-positive unit price.
type InvalidPriceError struct {
	ProductID string
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("unit price must be greater than 0 for product %s", e.ProductID)
}

// TotalMismatchError indicates the client-submitted total does not reconcile
// with the server-side recomputation of the same cart.
type TotalMismatchError struct {
	Submitted decimal.Decimal
	Computed  decimal.Decimal
}

func (e *TotalMismatchError) Error() string {
	return fmt.Sprintf("total price %s does not match computed total %s",
		e.Submitted.StringFixed(2), e.Computed.StringFixed(2))
}

// CartItem is one entry of the cart snapshot submitted at checkout. The unit
// price is the price the client saw; it becomes the immutable captured price
// of the resulting line item.
type CartItem struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Quote is the server-side price breakdown of a cart snapshot. All amounts
// are banker's-rounded to 2 decimal places and TotalPrice is always the
// exact sum of the other three.
type Quote struct {
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	TaxPrice      decimal.Decimal
	TotalPrice    decimal.Decimal
}

// roundingTolerance is the largest reconciliation difference attributable to
// currency rounding: half a cent.
var roundingTolerance = decimal.New(5, -3)

// ComputeQuote recomputes the price breakdown for a cart snapshot.
// ItemsPrice is the sum of quantity times unit price over all items;
// shipping and tax are accepted as submitted (there is no server-side
// shipping or tax policy); TotalPrice is the arithmetic sum of the three.
func ComputeQuote(items []CartItem, shippingPrice, taxPrice decimal.Decimal) (Quote, error) {
	if len(items) == 0 {
		return Quote{}, ErrEmptyItems
	}
	if shippingPrice.IsNegative() || taxPrice.IsNegative() {
		return Quote{}, ErrNegativeCharge
	}

	itemsPrice := decimal.Zero
	for _, item := range items {
		if item.Quantity <= 0 {
			return Quote{}, &InvalidQuantityError{ProductID: item.ProductID}
		}
		if !item.UnitPrice.IsPositive() {
			return Quote{}, &InvalidPriceError{ProductID: item.ProductID}
		}
		qty := decimal.NewFromInt(int64(item.Quantity))
		itemsPrice = itemsPrice.Add(item.UnitPrice.Mul(qty))
	}

	q := Quote{
		ItemsPrice:    itemsPrice.RoundBank(2),
		ShippingPrice: shippingPrice.RoundBank(2),
		TaxPrice:      taxPrice.RoundBank(2),
	}
	q.TotalPrice = q.ItemsPrice.Add(q.ShippingPrice).Add(q.TaxPrice)
	return q, nil
}

// Verify checks a client-submitted total against the recomputed quote.
// Differences within rounding tolerance are accepted; anything larger is an
// arithmetic mismatch.
func (q Quote) Verify(submittedTotal decimal.Decimal) error {
	diff := q.TotalPrice.Sub(submittedTotal).Abs()
	if diff.GreaterThan(roundingTolerance) {
		return &TotalMismatchError{Submitted: submittedTotal, Computed: q.TotalPrice}
	}
	return nil
}
