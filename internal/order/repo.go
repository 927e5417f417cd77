package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

const queryTimeout = 5 * time.Second

// Repository is the data access the order workflow depends on. Every
// multi-step mutation goes through WithTx; fn's error rolls everything back.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Order, error)
	GetItems(ctx context.Context, orderID string) ([]Item, error)
	List(ctx context.Context, f ListFilter) ([]Order, error)
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is one unit of work.
type Tx interface {
	// StockLevel returns ok=false when the product does not exist.
	StockLevel(ctx context.Context, productID string) (lvl StockLevel, ok bool, err error)
	InsertOrder(ctx context.Context, o *Order) error
	InsertItem(ctx context.Context, it *Item) error
	// DecrementStock subtracts qty only while enough stock remains; false means no row matched.
	DecrementStock(ctx context.Context, productID string, qty int) (bool, error)
	RestoreStock(ctx context.Context, productID string, qty int) error
	// LockOrder reads the order with a row lock held until the unit of work ends.
	LockOrder(ctx context.Context, id string) (*Order, error)
	Items(ctx context.Context, orderID string) ([]Item, error)
	SetStatus(ctx context.Context, id string, st Status, tracking *string) (*Order, error)
	SetDelivery(ctx context.Context, id string, deliveryManID *string, assignedAt *time.Time, st Status) (*Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const orderCols = `id, user_id, order_number, total_amount::text, tax_amount::text,
    shipping_cost::text, discount_amount::text, shipping_address_id, billing_address_id,
    notes, status, delivery_man_id, assigned_at, tracking_number, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (*Order, error) {
	var o Order
	var st string
	if err := row.Scan(&o.ID, &o.UserID, &o.OrderNumber, &o.TotalAmount, &o.TaxAmount,
		&o.ShippingCost, &o.DiscountAmount, &o.ShippingAddressID, &o.BillingAddressID,
		&o.Notes, &st, &o.DeliveryManID, &o.AssignedAt, &o.TrackingNumber, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	o.Status = Status(st)
	return &o, nil
}

func scanItems(rows pgx.Rows) ([]Item, error) {
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.PriceAtPurchase); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const itemsQuery = `
    SELECT id, order_id, product_id, quantity, price_at_purchase::text
    FROM order_items WHERE order_id = $1 ORDER BY product_id`

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id = $1`, id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "get order")
	}
	return o, err
}

func (r *PGRepo) GetItems(ctx context.Context, orderID string) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, itemsQuery, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "get order items")
	}
	items, err := scanItems(rows)
	return items, errors.Wrap(err, "scan order items")
}

// buildList turns a ListFilter into a parameterized query.
func buildList(f ListFilter) (string, []any) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	if f.DeliveryManID != "" {
		add("delivery_man_id = $%d", f.DeliveryManID)
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.OnlyUnassigned {
		where = append(where, "delivery_man_id IS NULL")
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + orderCols + ` FROM orders`)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY ")
	if f.DeliveryPriorities {
		b.WriteString(`CASE status WHEN 'assigned' THEN 1 WHEN 'in_transit' THEN 2 WHEN 'delivered' THEN 3 ELSE 4 END, `)
	}
	b.WriteString("created_at DESC")

	limit, offset := f.Limit, f.Offset
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	fmt.Fprintf(&b, " LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return b.String(), args
}

func (r *PGRepo) List(ctx context.Context, f ListFilter) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	q, args := buildList(f)
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	defer rows.Close()
	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		out = append(out, *o)
	}
	return out, errors.Wrap(rows.Err(), "list orders")
}

func (r *PGRepo) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(ctx), "commit")
}

type pgTx struct{ tx pgx.Tx }

func (t *pgTx) StockLevel(ctx context.Context, productID string) (StockLevel, bool, error) {
	lvl := StockLevel{ProductID: productID}
	err := t.tx.QueryRow(ctx, `
    SELECT name, price::text, quantity_in_stock FROM products WHERE id = $1
  `, productID).Scan(&lvl.Name, &lvl.Price, &lvl.Quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return StockLevel{}, false, nil
	}
	if err != nil {
		return StockLevel{}, false, errors.Wrap(err, "read stock")
	}
	return lvl, true, nil
}

func (t *pgTx) InsertOrder(ctx context.Context, o *Order) error {
	err := t.tx.QueryRow(ctx, `
    INSERT INTO orders (id, user_id, order_number, total_amount, tax_amount, shipping_cost,
      discount_amount, shipping_address_id, billing_address_id, notes, status, created_at, updated_at)
    VALUES ($1,$2,$3,$4::numeric,$5::numeric,$6::numeric,$7::numeric,$8,$9,$10,$11,NOW(),NOW())
    RETURNING created_at, updated_at
  `, o.ID, o.UserID, o.OrderNumber, o.TotalAmount.String(), o.TaxAmount.String(),
		o.ShippingCost.String(), o.DiscountAmount.String(), o.ShippingAddressID, o.BillingAddressID,
		o.Notes, string(o.Status)).Scan(&o.CreatedAt, &o.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateNumber
	}
	return errors.Wrap(err, "insert order")
}

func (t *pgTx) InsertItem(ctx context.Context, it *Item) error {
	_, err := t.tx.Exec(ctx, `
    INSERT INTO order_items (id, order_id, product_id, quantity, price_at_purchase)
    VALUES ($1,$2,$3,$4,$5::numeric)
  `, it.ID, it.OrderID, it.ProductID, it.Quantity, it.PriceAtPurchase.String())
	return errors.Wrap(err, "insert order item")
}

func (t *pgTx) DecrementStock(ctx context.Context, productID string, qty int) (bool, error) {
	tag, err := t.tx.Exec(ctx, `
    UPDATE products
    SET quantity_in_stock = quantity_in_stock - $2, updated_at = NOW()
    WHERE id = $1 AND quantity_in_stock >= $2
  `, productID, qty)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "40P01" {
		return false, &StockConflictError{ProductID: productID, Requested: qty}
	}
	if err != nil {
		return false, errors.Wrap(err, "decrement stock")
	}
	return tag.RowsAffected() == 1, nil
}

func (t *pgTx) RestoreStock(ctx context.Context, productID string, qty int) error {
	// A product deleted since the order was placed has nothing to restore.
	_, err := t.tx.Exec(ctx, `
    UPDATE products
    SET quantity_in_stock = quantity_in_stock + $2, updated_at = NOW()
    WHERE id = $1
  `, productID, qty)
	return errors.Wrap(err, "restore stock")
}

func (t *pgTx) LockOrder(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(t.tx.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "lock order")
	}
	return o, err
}

func (t *pgTx) Items(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := t.tx.Query(ctx, itemsQuery, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "get order items")
	}
	items, err := scanItems(rows)
	return items, errors.Wrap(err, "scan order items")
}

func (t *pgTx) SetStatus(ctx context.Context, id string, st Status, tracking *string) (*Order, error) {
	o, err := scanOrder(t.tx.QueryRow(ctx, `
    UPDATE orders
    SET status = $2, tracking_number = COALESCE($3, tracking_number), updated_at = NOW()
    WHERE id = $1
    RETURNING `+orderCols, id, string(st), tracking))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "update status")
	}
	return o, err
}

func (t *pgTx) SetDelivery(ctx context.Context, id string, deliveryManID *string, assignedAt *time.Time, st Status) (*Order, error) {
	o, err := scanOrder(t.tx.QueryRow(ctx, `
    UPDATE orders
    SET delivery_man_id = $2, assigned_at = $3, status = $4, updated_at = NOW()
    WHERE id = $1
    RETURNING `+orderCols, id, deliveryManID, assignedAt, string(st)))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "update delivery")
	}
	return o, err
}

func (t *pgTx) DeleteOrder(ctx context.Context, id string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete order")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
