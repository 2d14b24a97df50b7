package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/tg-marketplace/internal/model"
)

// ProductRepo provides access to the products table.
type ProductRepo struct{ db *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

// DB exposes the handle so services can open transactions spanning
// several repositories.
func (r *ProductRepo) DB() *sql.DB { return r.db }

const productColumns = "id, name, price, description, seller_id, is_sold, created_at"

func scanProduct(row interface{ Scan(...any) error }) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.SellerID, &p.IsSold, &p.CreatedAt)
	return p, err
}

func collectProducts(rows *sql.Rows) ([]model.Product, error) {
	defer rows.Close()
	out := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreateTx inserts an unsold product and returns it as stored.
func (r *ProductRepo) CreateTx(ctx context.Context, tx *sql.Tx, p model.Product) (model.Product, error) {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO products (name, price, description, seller_id, is_sold) VALUES (?,?,?,?,0)",
		p.Name, p.Price, p.Description, p.SellerID)
	if err != nil {
		return model.Product{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Product{}, err
	}
	return scanProduct(tx.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id=?", id))
}

// GetByID returns sql.ErrNoRows when the product does not exist.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (model.Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id=?", id))
}

// GetByIDTx is GetByID inside tx.
func (r *ProductRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Product, error) {
	return scanProduct(tx.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id=?", id))
}

// ListAvailable returns unsold products, newest first.
func (r *ProductRepo) ListAvailable(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE is_sold=0 ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// ListBySeller returns every product of a seller, sold or not.
func (r *ProductRepo) ListBySeller(ctx context.Context, sellerID uint64) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE seller_id=? ORDER BY id", sellerID)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// Search returns unsold products whose name or description contains any of
// the terms. Ranking is left to the caller.
func (r *ProductRepo) Search(ctx context.Context, terms []string, limit int) ([]model.Product, error) {
	if len(terms) == 0 {
		return []model.Product{}, nil
	}
	var (
		conds []string
		args  []any
	)
	for _, t := range terms {
		like := "%" + escapeLike(strings.ToLower(t)) + "%"
		conds = append(conds, "LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'")
		args = append(args, like, like)
	}
	args = append(args, limit)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE is_sold=0 AND ("+strings.Join(conds, " OR ")+") ORDER BY id DESC LIMIT ?",
		args...)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// Update applies a partial patch to a product owned by sellerID.
// Returns sql.ErrNoRows if the product is missing and ErrForbidden if it
// belongs to someone else.
func (r *ProductRepo) Update(ctx context.Context, id, sellerID uint64, patch model.ProductPatch) (model.Product, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Product{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	current, err := r.GetByIDTx(ctx, tx, id)
	if err != nil {
		return model.Product{}, err
	}
	if current.SellerID != sellerID {
		return model.Product{}, ErrForbidden
	}
	if patch.Name != nil {
		current.Name = *patch.Name
	}
	if patch.Price != nil {
		current.Price = *patch.Price
	}
	if patch.Description != nil {
		current.Description = *patch.Description
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE products SET name=?, price=?, description=? WHERE id=?",
		current.Name, current.Price, current.Description, id); err != nil {
		return model.Product{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Product{}, err
	}
	committed = true
	return current, nil
}

// Delete removes a product owned by sellerID. Same errors as Update.
func (r *ProductRepo) Delete(ctx context.Context, id, sellerID uint64) error {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.SellerID != sellerID {
		return ErrForbidden
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id=? AND seller_id=?", id, sellerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkSoldTx flips is_sold only if it is still false. ErrConflict means
// another transaction got there first.
func (r *ProductRepo) MarkSoldTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, "UPDATE products SET is_sold=1 WHERE id=? AND is_sold=0", id)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

// escapeLike uses '!' as the escape character; backslash literals are parsed
// differently by MySQL and SQLite.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
