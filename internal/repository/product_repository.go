package repository

import (
	"context"
	"database/sql"

	"github.com/hivehelp/hivehelp-api/internal/model"
)

// ProductRepo provides persistence for the 'products' table. Stock
// reservation is a single conditional UPDATE so two concurrent orders can
// never spend the same units.
type ProductRepo struct{ db *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions that
// span product and order writes.
func (r *ProductRepo) DB() *sql.DB { return r.db }

const productColumns = "id,beekeeper_id,name,description,price_cents,stock_quantity,image_path,created_at,updated_at"

func scanProduct(row interface{ Scan(...any) error }) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.BeekeeperID, &p.Name, &p.Description,
		&p.PriceCents, &p.StockQuantity, &p.ImagePath, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Create inserts a product and returns the stored row.
func (r *ProductRepo) Create(ctx context.Context, beekeeperID uint64, name, description string, priceCents, stock int64, imagePath string) (model.Product, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO products (beekeeper_id, name, description, price_cents, stock_quantity, image_path) VALUES (?,?,?,?,?,?)",
		beekeeperID, name, description, priceCents, stock, imagePath)
	if err != nil {
		return model.Product{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Product{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a product by id, mapping sql.ErrNoRows to
// ErrProductNotFound.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (model.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.Product{}, ErrProductNotFound
	}
	return p, err
}

// ProductListing is a product joined with its owner's display name, the shape
// shown to customers browsing the store.
type ProductListing struct {
	model.Product
	BeekeeperName string
}

// ListAvailable returns in-stock products joined with owner names.
func (r *ProductRepo) ListAvailable(ctx context.Context) ([]ProductListing, error) {
	return r.listJoined(ctx,
		`SELECT p.id,p.beekeeper_id,p.name,p.description,p.price_cents,p.stock_quantity,p.image_path,p.created_at,p.updated_at,u.name
		 FROM products p JOIN users u ON u.id = p.beekeeper_id
		 WHERE p.stock_quantity > 0
		 ORDER BY p.id DESC`)
}

// ListAllWithOwner returns every product joined with owner names, including
// sold-out listings. Admin listing only.
func (r *ProductRepo) ListAllWithOwner(ctx context.Context) ([]ProductListing, error) {
	return r.listJoined(ctx,
		`SELECT p.id,p.beekeeper_id,p.name,p.description,p.price_cents,p.stock_quantity,p.image_path,p.created_at,p.updated_at,u.name
		 FROM products p JOIN users u ON u.id = p.beekeeper_id
		 ORDER BY p.id DESC`)
}

func (r *ProductRepo) listJoined(ctx context.Context, query string) ([]ProductListing, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ProductListing{}
	for rows.Next() {
		var l ProductListing
		if err := rows.Scan(&l.ID, &l.BeekeeperID, &l.Name, &l.Description,
			&l.PriceCents, &l.StockQuantity, &l.ImagePath, &l.CreatedAt, &l.UpdatedAt,
			&l.BeekeeperName); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListByBeekeeper returns all products owned by the beekeeper, including
// those with zero stock.
func (r *ProductRepo) ListByBeekeeper(ctx context.Context, beekeeperID uint64) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE beekeeper_id=? ORDER BY id DESC", beekeeperID)
	if err != nil {
		return nil, err
	}
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

// ProductPatch carries partial-update fields for a product. Nil pointers
// leave the stored value untouched.
type ProductPatch struct {
	Name        *string
	Description *string
	PriceCents  *int64
	Stock       *int64
	ImagePath   *string
}

// Update applies a partial patch to a product owned by callerID. Admins
// bypass the ownership check. Returns ErrProductNotFound or ErrForbidden.
func (r *ProductRepo) Update(ctx context.Context, id, callerID uint64, isAdmin bool, patch ProductPatch) (model.Product, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	if !isAdmin && p.BeekeeperID != callerID {
		return model.Product{}, ErrForbidden
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.PriceCents != nil {
		p.PriceCents = *patch.PriceCents
	}
	if patch.Stock != nil {
		p.StockQuantity = *patch.Stock
	}
	if patch.ImagePath != nil {
		p.ImagePath = *patch.ImagePath
	}
	_, err = r.db.ExecContext(ctx,
		"UPDATE products SET name=?, description=?, price_cents=?, stock_quantity=?, image_path=? WHERE id=?",
		p.Name, p.Description, p.PriceCents, p.StockQuantity, p.ImagePath, p.ID)
	if err != nil {
		return model.Product{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a product owned by callerID. Admins bypass the ownership
// check.
func (r *ProductRepo) Delete(ctx context.Context, id, callerID uint64, isAdmin bool) error {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !isAdmin && p.BeekeeperID != callerID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx, "DELETE FROM products WHERE id=?", id)
	return err
}

// ReserveStockTx atomically decrements stock inside the given transaction.
// The WHERE clause is the check-and-decrement: zero rows affected while the
// product exists means another order spent the units first, which maps to
// ErrInsufficientStock.
func (r *ProductRepo) ReserveStockTx(ctx context.Context, tx *sql.Tx, productID uint64, quantity int64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE products SET stock_quantity = stock_quantity - ? WHERE id=? AND stock_quantity >= ?",
		quantity, productID, quantity)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var one int
	if err := tx.QueryRowContext(ctx, "SELECT 1 FROM products WHERE id=? LIMIT 1", productID).Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return ErrProductNotFound
		}
		return err
	}
	return ErrInsufficientStock
}
