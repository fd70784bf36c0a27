package repository

import (
	"context"
	"database/sql"

	"github.com/hivehelp/hivehelp-api/internal/model"
)

// AppointmentRepo provides persistence for appointments and their
// append-only status history. Every status mutation runs in a transaction
// that updates the row and inserts exactly one history entry, keeping the
// latest history entry equal to the current status at all times.
type AppointmentRepo struct{ db *sql.DB }

func NewAppointmentRepo(db *sql.DB) *AppointmentRepo { return &AppointmentRepo{db: db} }

const appointmentColumns = `id,customer_id,beekeeper_id,full_name,email,phone,date,time,hivespot,address,
latitude,longitude,severity,photo_path,service_charge_cents,status,rating,review,created_at,updated_at`

func scanAppointment(row interface{ Scan(...any) error }) (model.Appointment, error) {
	var (
		a         model.Appointment
		beekeeper sql.NullInt64
		lat, lng  sql.NullFloat64
		rating    sql.NullInt64
		review    sql.NullString
	)
	err := row.Scan(&a.ID, &a.CustomerID, &beekeeper, &a.FullName, &a.Email, &a.Phone,
		&a.Date, &a.Time, &a.Hivespot, &a.Address, &lat, &lng, &a.Severity,
		&a.PhotoPath, &a.ServiceChargeCents, &a.Status, &rating, &review,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return model.Appointment{}, err
	}
	if beekeeper.Valid {
		v := uint64(beekeeper.Int64)
		a.BeekeeperID = &v
	}
	if lat.Valid {
		v := lat.Float64
		a.Latitude = &v
	}
	if lng.Valid {
		v := lng.Float64
		a.Longitude = &v
	}
	if rating.Valid {
		v := int(rating.Int64)
		a.Rating = &v
	}
	if review.Valid {
		v := review.String
		a.Review = &v
	}
	return a, nil
}

// NewAppointment carries the booking-time fields for Create.
type NewAppointment struct {
	CustomerID         uint64
	FullName           string
	Email              string
	Phone              string
	Date               string
	Time               string
	Hivespot           string
	Address            string
	Latitude           *float64
	Longitude          *float64
	Severity           string
	PhotoPath          string
	ServiceChargeCents int64
}

// Create inserts a PENDING appointment together with its initial history
// entry in one transaction.
func (r *AppointmentRepo) Create(ctx context.Context, in NewAppointment) (model.Appointment, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Appointment{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO appointments
		 (customer_id, full_name, email, phone, date, time, hivespot, address, latitude, longitude, severity, photo_path, service_charge_cents, status)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		in.CustomerID, in.FullName, in.Email, in.Phone, in.Date, in.Time,
		in.Hivespot, in.Address, in.Latitude, in.Longitude, in.Severity,
		in.PhotoPath, in.ServiceChargeCents, model.AppointmentPending)
	if err != nil {
		return model.Appointment{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Appointment{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO appointment_status_history (appointment_id, status) VALUES (?,?)",
		id, model.AppointmentPending); err != nil {
		return model.Appointment{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Appointment{}, err
	}
	committed = true
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches an appointment, mapping sql.ErrNoRows to
// ErrAppointmentNotFound.
func (r *AppointmentRepo) GetByID(ctx context.Context, id uint64) (model.Appointment, error) {
	a, err := scanAppointment(r.db.QueryRowContext(ctx,
		"SELECT "+appointmentColumns+" FROM appointments WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.Appointment{}, ErrAppointmentNotFound
	}
	return a, err
}

// AppointmentView is an appointment joined with the customer's and (when
// assigned) beekeeper's display names for listings.
type AppointmentView struct {
	model.Appointment
	CustomerName  string
	BeekeeperName *string
}

const appointmentViewQuery = `SELECT a.id,a.customer_id,a.beekeeper_id,a.full_name,a.email,a.phone,a.date,a.time,a.hivespot,a.address,
a.latitude,a.longitude,a.severity,a.photo_path,a.service_charge_cents,a.status,a.rating,a.review,a.created_at,a.updated_at,
cu.name, bk.name
FROM appointments a
JOIN users cu ON cu.id = a.customer_id
LEFT JOIN users bk ON bk.id = a.beekeeper_id`

func (r *AppointmentRepo) listViews(ctx context.Context, where string, args ...any) ([]AppointmentView, error) {
	rows, err := r.db.QueryContext(ctx, appointmentViewQuery+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []AppointmentView{}
	for rows.Next() {
		var (
			v         AppointmentView
			beekeeper sql.NullInt64
			lat, lng  sql.NullFloat64
			rating    sql.NullInt64
			review    sql.NullString
			bkName    sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.CustomerID, &beekeeper, &v.FullName, &v.Email, &v.Phone,
			&v.Date, &v.Time, &v.Hivespot, &v.Address, &lat, &lng, &v.Severity,
			&v.PhotoPath, &v.ServiceChargeCents, &v.Status, &rating, &review,
			&v.CreatedAt, &v.UpdatedAt, &v.CustomerName, &bkName); err != nil {
			return nil, err
		}
		if beekeeper.Valid {
			id := uint64(beekeeper.Int64)
			v.BeekeeperID = &id
		}
		if lat.Valid {
			f := lat.Float64
			v.Latitude = &f
		}
		if lng.Valid {
			f := lng.Float64
			v.Longitude = &f
		}
		if rating.Valid {
			n := int(rating.Int64)
			v.Rating = &n
		}
		if review.Valid {
			s := review.String
			v.Review = &s
		}
		if bkName.Valid {
			s := bkName.String
			v.BeekeeperName = &s
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListForCustomer returns the customer's own appointments, most recent date
// first.
func (r *AppointmentRepo) ListForCustomer(ctx context.Context, customerID uint64) ([]AppointmentView, error) {
	return r.listViews(ctx, " WHERE a.customer_id=? ORDER BY a.date DESC, a.id DESC", customerID)
}

// ListForBeekeeper returns appointments assigned to the beekeeper, most
// recent date first.
func (r *AppointmentRepo) ListForBeekeeper(ctx context.Context, beekeeperID uint64) ([]AppointmentView, error) {
	return r.listViews(ctx, " WHERE a.beekeeper_id=? ORDER BY a.date DESC, a.id DESC", beekeeperID)
}

// ListAll returns every appointment with names joined. Admin listing only.
func (r *AppointmentRepo) ListAll(ctx context.Context) ([]AppointmentView, error) {
	return r.listViews(ctx, " ORDER BY a.date DESC, a.id DESC")
}

// History returns an appointment's status history, oldest first.
func (r *AppointmentRepo) History(ctx context.Context, id uint64) ([]model.StatusEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT status, created_at FROM appointment_status_history WHERE appointment_id=? ORDER BY id ASC", id)
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

// transitionTx updates the status and appends the history entry in one
// transaction. The UPDATE is conditional on the status the caller read, so
// two concurrent transitions cannot both commit; the loser sees zero rows
// and gets ErrInvalidTransition.
func (r *AppointmentRepo) transitionTx(ctx context.Context, id uint64, from, to string, extra func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx, "UPDATE appointments SET status=? WHERE id=? AND status=?", to, id, from)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrInvalidTransition
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO appointment_status_history (appointment_id, status) VALUES (?,?)", id, to); err != nil {
		return err
	}
	if extra != nil {
		if err := extra(tx); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Cancel moves a PENDING appointment to CANCELLED on behalf of its owning
// customer. Returns ErrForbidden for any other caller and ErrInvalidState
// when the appointment is no longer pending.
func (r *AppointmentRepo) Cancel(ctx context.Context, id, customerID uint64) (model.Appointment, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	if a.CustomerID != customerID {
		return model.Appointment{}, ErrForbidden
	}
	if a.Status != model.AppointmentPending {
		return model.Appointment{}, ErrInvalidState
	}
	if err := r.transitionTx(ctx, id, a.Status, model.AppointmentCancelled, nil); err != nil {
		return model.Appointment{}, err
	}
	return r.GetByID(ctx, id)
}

// UpdateStatus applies a status change requested by the assigned beekeeper
// or an admin. The transition graph is enforced here; disallowed edges
// return ErrInvalidTransition.
func (r *AppointmentRepo) UpdateStatus(ctx context.Context, id, callerID uint64, isAdmin bool, newStatus string) (model.Appointment, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	if !isAdmin && (a.BeekeeperID == nil || *a.BeekeeperID != callerID) {
		return model.Appointment{}, ErrForbidden
	}
	if !model.CanTransitionAppointment(a.Status, newStatus) {
		return model.Appointment{}, ErrInvalidTransition
	}
	if err := r.transitionTx(ctx, id, a.Status, newStatus, nil); err != nil {
		return model.Appointment{}, err
	}
	return r.GetByID(ctx, id)
}

// Assign sets the beekeeper and moves a PENDING appointment to ACCEPTED,
// appending the history entry in the same transaction. Admin only; the
// handler gates the role.
func (r *AppointmentRepo) Assign(ctx context.Context, id, beekeeperID uint64) (model.Appointment, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	if !model.CanTransitionAppointment(a.Status, model.AppointmentAccepted) {
		return model.Appointment{}, ErrInvalidTransition
	}
	err = r.transitionTx(ctx, id, a.Status, model.AppointmentAccepted, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "UPDATE appointments SET beekeeper_id=? WHERE id=?", beekeeperID, id)
		return err
	})
	if err != nil {
		return model.Appointment{}, err
	}
	return r.GetByID(ctx, id)
}

// SetReview stores the customer's rating and review. Only the owning
// customer may review, and only once the job is COMPLETED.
func (r *AppointmentRepo) SetReview(ctx context.Context, id, customerID uint64, rating int, review string) (model.Appointment, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	if a.CustomerID != customerID {
		return model.Appointment{}, ErrForbidden
	}
	if a.Status != model.AppointmentCompleted {
		return model.Appointment{}, ErrInvalidState
	}
	if _, err := r.db.ExecContext(ctx,
		"UPDATE appointments SET rating=?, review=? WHERE id=?", rating, review, id); err != nil {
		return model.Appointment{}, err
	}
	return r.GetByID(ctx, id)
}

// DeleteAll wipes every appointment and its history, returning the number of
// appointments removed. Destructive; the admin router gates it.
func (r *AppointmentRepo) DeleteAll(ctx context.Context) (int64, error) {
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
	if _, err := tx.ExecContext(ctx, "DELETE FROM appointment_status_history"); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM appointments")
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
