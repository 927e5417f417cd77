// Package product provides the catalog repository and the low-stock report.
package product

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("product not found")
	ErrNegativePrice = errors.New("price must not be negative")
	ErrNegativeStock = errors.New("quantity_in_stock must not be negative")
)

type Query struct {
	Q      string
	Limit  int
	Offset int
}

// Normalize clamps paging the way every list endpoint does.
func (q Query) Normalize() Query {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	q.Q = strings.TrimSpace(q.Q)
	return q
}

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, q Query) ([]Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) (bool, error)
	// LowStock returns products with quantity_in_stock below threshold, lowest first.
	LowStock(ctx context.Context, threshold int) ([]Product, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const productCols = `id, name, type, description, price::text, quantity_in_stock, image_url, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var (
		p     Product
		typ   string
		price string
	)
	if err := row.Scan(&p.ID, &p.Name, &typ, &p.Description, &price, &p.QuantityInStock, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "scan product")
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, errors.Wrapf(err, "parse price of %s", p.ID)
	}
	p.Type, p.Price = Type(typ), d
	return &p, nil
}

func collect(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO products (id, name, type, description, price, quantity_in_stock, image_url, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5::numeric,$6,$7,NOW(),NOW())
		RETURNING created_at, updated_at
	`, p.ID, p.Name, string(p.Type), p.Description, p.Price.String(), p.QuantityInStock, p.ImageURL).Scan(&p.CreatedAt, &p.UpdatedAt)
	return errors.Wrap(err, "insert product")
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return scanProduct(r.db.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q = q.Normalize()
	rows, err := r.db.Query(ctx, `
		SELECT `+productCols+`
		FROM products
		WHERE ($1 = '' OR name ILIKE '%'||$1||'%' OR description ILIKE '%'||$1||'%' OR type ILIKE '%'||$1||'%')
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, q.Q, q.Limit, q.Offset)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return collect(rows)
}

// Update writes every mutable column; callers load and patch the row first.
func (r *PGRepo) Update(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE products
		SET name = $2, type = $3, description = $4, price = $5::numeric,
		    quantity_in_stock = $6, image_url = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, p.ID, p.Name, string(p.Type), p.Description, p.Price.String(), p.QuantityInStock, p.ImageURL).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return errors.Wrap(err, "update product")
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return false, errors.Wrap(err, "delete product")
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGRepo) LowStock(ctx context.Context, threshold int) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+productCols+`
		FROM products
		WHERE quantity_in_stock < $1
		ORDER BY quantity_in_stock ASC, name ASC
	`, threshold)
	if err != nil {
		return nil, errors.Wrap(err, "low stock")
	}
	return collect(rows)
}
