package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hivehelp/hivehelp-api/internal/model"
	"github.com/hivehelp/hivehelp-api/internal/utils"
)

// UserRepo provides persistence for the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,phone,password_hash,role,is_blocked,is_approved,locality,created_at,updated_at"

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role,
		&u.IsBlocked, &u.IsApproved, &u.Locality, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a user and returns its ID. Emails are normalized to lower
// case; a duplicate email maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, name, email, phone, password, role, locality string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, phone, password_hash, role, locality) VALUES (?,?,?,?,?,?)",
		name, email, phone, hash, role, locality)
	if err != nil {
		// 1062 = MySQL duplicate entry on the unique email index
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// UpdateProfile overwrites the caller-editable fields (name, phone) and
// returns the fresh row.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, name, phone string) (model.User, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, phone=? WHERE id=?", name, phone, id)
	if err != nil {
		return model.User{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Zero rows can also mean an unchanged row; confirm existence below.
		if _, err := r.GetByID(ctx, id); err == sql.ErrNoRows {
			return model.User{}, ErrUserNotFound
		}
	}
	return r.GetByID(ctx, id)
}

// ListAll returns every user, newest first. Admin listing only.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// BeekeeperSummary is the sanitized projection returned by locality lookups.
type BeekeeperSummary struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Locality string `json:"locality"`
}

// ListApprovedBeekeepersByLocality returns approved beekeepers whose
// locality matches exactly, ignoring case. Only name and locality are
// exposed.
func (r *UserRepo) ListApprovedBeekeepersByLocality(ctx context.Context, locality string) ([]BeekeeperSummary, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, locality FROM users WHERE role=? AND is_approved=1 AND LOWER(locality)=LOWER(?)",
		model.RoleBeekeeper, strings.TrimSpace(locality))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []BeekeeperSummary{}
	for rows.Next() {
		var b BeekeeperSummary
		if err := rows.Scan(&b.ID, &b.Name, &b.Locality); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// SetRole changes a user's role. The role must already be validated.
func (r *UserRepo) SetRole(ctx context.Context, id uint64, role string) (model.User, error) {
	if err := r.mustExist(ctx, id); err != nil {
		return model.User{}, err
	}
	if _, err := r.DB.ExecContext(ctx, "UPDATE users SET role=? WHERE id=?", role, id); err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// SetBlocked blocks or unblocks a user.
func (r *UserRepo) SetBlocked(ctx context.Context, id uint64, blocked bool) (model.User, error) {
	if err := r.mustExist(ctx, id); err != nil {
		return model.User{}, err
	}
	if _, err := r.DB.ExecContext(ctx, "UPDATE users SET is_blocked=? WHERE id=?", blocked, id); err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// Approve marks a user as approved.
func (r *UserRepo) Approve(ctx context.Context, id uint64) (model.User, error) {
	if err := r.mustExist(ctx, id); err != nil {
		return model.User{}, err
	}
	if _, err := r.DB.ExecContext(ctx, "UPDATE users SET is_approved=1 WHERE id=?", id); err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a user. Users still referenced by appointments or orders
// (as customer or beekeeper) cannot be deleted; that returns ErrConflict so
// no foreign key is left dangling.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	if err := r.mustExist(ctx, id); err != nil {
		return err
	}
	var refs int64
	err := r.DB.QueryRowContext(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM appointments WHERE customer_id=? OR beekeeper_id=?) +
		   (SELECT COUNT(*) FROM orders WHERE customer_id=? OR beekeeper_id=?)`,
		id, id, id, id).Scan(&refs)
	if err != nil {
		return err
	}
	if refs > 0 {
		return ErrConflict
	}
	_, err = r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	return err
}

func (r *UserRepo) mustExist(ctx context.Context, id uint64) error {
	var one int
	err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id=? LIMIT 1", id).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrUserNotFound
	}
	return err
}
