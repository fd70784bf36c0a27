package repository

import (
	"context"
	"database/sql"

	"github.com/hivehelp/hivehelp-api/internal/model"
)

// OrderRepo provides persistence for orders and their append-only status
// history. Order creation is driven by the handler inside a transaction that
// also reserves product stock, so checkout is all-or-nothing.
type OrderRepo struct{ db *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the underlying handle so handlers can open the checkout
// transaction spanning stock reservation and order insertion.
func (r *OrderRepo) DB() *sql.DB { return r.db }

const orderColumns = "id,customer_id,beekeeper_id,product_id,quantity,unit_price_cents,status,created_at,updated_at"

func scanOrder(row interface{ Scan(...any) error }) (model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.BeekeeperID, &o.ProductID,
		&o.Quantity, &o.UnitPriceCents, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// CreateTx inserts a PROCESSING order and its initial history entry within
// the caller's transaction. The generated ID is populated on the record.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO orders (customer_id, beekeeper_id, product_id, quantity, unit_price_cents, status) VALUES (?,?,?,?,?,?)",
		o.CustomerID, o.BeekeeperID, o.ProductID, o.Quantity, o.UnitPriceCents, model.OrderProcessing)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	o.Status = model.OrderProcessing
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO order_status_history (order_id, status) VALUES (?,?)",
		o.ID, model.OrderProcessing); err != nil {
		return err
	}
	return tx.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM orders WHERE id=?", o.ID).
		Scan(&o.CreatedAt, &o.UpdatedAt)
}

// GetByID fetches an order, mapping sql.ErrNoRows to ErrOrderNotFound.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.Order{}, ErrOrderNotFound
	}
	return o, err
}

// OrderView is an order joined with the product's name and image and the
// customer's name, the shape used by listings.
type OrderView struct {
	model.Order
	ProductName  string
	ProductImage string
	CustomerName string
}

const orderViewQuery = `SELECT o.id,o.customer_id,o.beekeeper_id,o.product_id,o.quantity,o.unit_price_cents,o.status,o.created_at,o.updated_at,
p.name, p.image_path, cu.name
FROM orders o
JOIN products p ON p.id = o.product_id
JOIN users cu ON cu.id = o.customer_id`

func (r *OrderRepo) listViews(ctx context.Context, where string, args ...any) ([]OrderView, error) {
	rows, err := r.db.QueryContext(ctx, orderViewQuery+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []OrderView{}
	for rows.Next() {
		var v OrderView
		if err := rows.Scan(&v.ID, &v.CustomerID, &v.BeekeeperID, &v.ProductID,
			&v.Quantity, &v.UnitPriceCents, &v.Status, &v.CreatedAt, &v.UpdatedAt,
			&v.ProductName, &v.ProductImage, &v.CustomerName); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListForCustomer returns the customer's own orders, newest first.
func (r *OrderRepo) ListForCustomer(ctx context.Context, customerID uint64) ([]OrderView, error) {
	return r.listViews(ctx, " WHERE o.customer_id=? ORDER BY o.created_at DESC, o.id DESC", customerID)
}

// ListForBeekeeper returns orders for products sold by the beekeeper,
// newest first. The beekeeper snapshot on the order makes this a direct
// filter rather than a join through products ownership.
func (r *OrderRepo) ListForBeekeeper(ctx context.Context, beekeeperID uint64) ([]OrderView, error) {
	return r.listViews(ctx, " WHERE o.beekeeper_id=? ORDER BY o.created_at DESC, o.id DESC", beekeeperID)
}

// ListAll returns every order with product and customer joined. Admin
// listing only.
func (r *OrderRepo) ListAll(ctx context.Context) ([]OrderView, error) {
	return r.listViews(ctx, " ORDER BY o.created_at DESC, o.id DESC")
}

// History returns an order's status history, oldest first.
func (r *OrderRepo) History(ctx context.Context, id uint64) ([]model.StatusEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT status, created_at FROM order_status_history WHERE order_id=? ORDER BY id ASC", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.StatusEntry{}
	for rows.Next() {
		var e model.StatusEntry
		if err := rows.Scan(&e.Status, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdateStatus applies a status change requested by the fulfilling beekeeper
// or an admin. The transition graph is enforced; disallowed edges return
// ErrInvalidTransition. The update and the history append share one
// transaction.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id, callerID uint64, isAdmin bool, newStatus string) (model.Order, error) {
	o, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Order{}, err
	}
	if !isAdmin && o.BeekeeperID != callerID {
		return model.Order{}, ErrForbidden
	}
	if !model.CanTransitionOrder(o.Status, newStatus) {
		return model.Order{}, ErrInvalidTransition
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Order{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx, "UPDATE orders SET status=? WHERE id=? AND status=?", newStatus, id, o.Status)
	if err != nil {
		return model.Order{}, err
	}
	// Conditional on the status just read; a concurrent transition that
	// committed first leaves zero rows and this one must not apply.
	if n, err := res.RowsAffected(); err != nil {
		return model.Order{}, err
	} else if n == 0 {
		return model.Order{}, ErrInvalidTransition
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO order_status_history (order_id, status) VALUES (?,?)", id, newStatus); err != nil {
		return model.Order{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Order{}, err
	}
	committed = true
	return r.GetByID(ctx, id)
}

// DeleteAll wipes every order and its history, returning the number of
// orders removed. Destructive; the admin router gates it.
func (r *OrderRepo) DeleteAll(ctx context.Context) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, "DELETE FROM order_status_history"); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM orders")
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return n, nil
}
