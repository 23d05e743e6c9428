package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/storefront-go/storefront/internal/domain/order"
)

const (
	orderColumns = `id, user_id, items, shipping, payment,
		items_price, shipping_price, tax_price, total_price,
		status, paid_at, delivered_at, created_at`

	createOrderSQL = `INSERT INTO orders
		(id, user_id, items, shipping, payment,
		 items_price, shipping_price, tax_price, total_price, status, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersByUserSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 ORDER BY created_at DESC, id`

	listAllOrdersSQL = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`

	updateOrderStatusSQL = `UPDATE orders SET status = $2, delivered_at = $3 WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
// Line items, shipping details, and payment info live in JSONB columns;
// the price breakdown uses NUMERIC columns scanned as decimals.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order as a single insert.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}
	shippingJSON, err := json.Marshal(o.Shipping)
	if err != nil {
		return fmt.Errorf("marshaling shipping details: %w", err)
	}
	paymentJSON, err := json.Marshal(o.Payment)
	if err != nil {
		return fmt.Errorf("marshaling payment info: %w", err)
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.UserID, itemsJSON, shippingJSON, paymentJSON,
		o.ItemsPrice, o.ShippingPrice, o.TaxPrice, o.TotalPrice,
		string(o.Status), o.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID returns a single order. Returns order.ErrNotFound when absent.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// ListByUser returns the orders owned by userID, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders by user: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// ListAll returns every order, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listAllOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing all orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// Delete hard-deletes an order. Returns order.ErrNotFound when absent.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteOrderSQL, id)
	if err != nil {
		return fmt.Errorf("deleting order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// UpdateStatus sets the delivery status and, when provided, the delivery
// timestamp. Returns order.ErrNotFound when absent.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status, deliveredAt *time.Time) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, string(status), deliveredAt)
	if err != nil {
		return fmt.Errorf("updating status of order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o            order.Order
		itemsJSON    []byte
		shippingJSON []byte
		paymentJSON  []byte
		status       string
		paidAt       *time.Time
		itemsPrice   decimal.Decimal
		shipPrice    decimal.Decimal
		taxPrice     decimal.Decimal
		totalPrice   decimal.Decimal
	)
	err := row.Scan(
		&o.ID, &o.UserID, &itemsJSON, &shippingJSON, &paymentJSON,
		&itemsPrice, &shipPrice, &taxPrice, &totalPrice,
		&status, &paidAt, &o.DeliveredAt, &o.CreatedAt,
	)
	if err != nil {
		return o, err
	}

	if paidAt != nil {
		o.PaidAt = *paidAt
	}
	o.ItemsPrice = itemsPrice
	o.ShippingPrice = shipPrice
	o.TaxPrice = taxPrice
	o.TotalPrice = totalPrice
	o.Status = order.Status(status)

	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return o, fmt.Errorf("unmarshaling order items: %w", err)
	}
	if err := json.Unmarshal(shippingJSON, &o.Shipping); err != nil {
		return o, fmt.Errorf("unmarshaling shipping details: %w", err)
	}
	if err := json.Unmarshal(paymentJSON, &o.Payment); err != nil {
		return o, fmt.Errorf("unmarshaling payment info: %w", err)
	}
	return o, nil
}
