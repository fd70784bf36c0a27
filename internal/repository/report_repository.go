package repository

import (
	"context"
	"database/sql"
	"time"
)

// ReportRepo computes the read-only aggregates behind the admin dashboards.
// Reports are derived views recomputed on every call; nothing is stored.
type ReportRepo struct{ db *sql.DB }

func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// MonthlyCount is one bucket of the trailing-12-month order series.
type MonthlyCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int64  `json:"count"`
}

// OrderReport aggregates order volume and revenue.
type OrderReport struct {
	TotalOrders  int64            `json:"total_orders"`
	RevenueCents int64            `json:"revenue_cents"` // Σ unit price × quantity
	ByStatus     map[string]int64 `json:"by_status"`
	Monthly      []MonthlyCount   `json:"monthly"`
}

// BeekeeperCount is one row of the per-beekeeper appointment breakdown.
type BeekeeperCount struct {
	BeekeeperID   uint64 `json:"beekeeper_id"`
	BeekeeperName string `json:"beekeeper_name"`
	Appointments  int64  `json:"appointments"`
}

// AppointmentReport aggregates appointment volume.
type AppointmentReport struct {
	TotalAppointments int64            `json:"total_appointments"`
	ByStatus          map[string]int64 `json:"by_status"`
	TopBeekeepers     []BeekeeperCount `json:"top_beekeepers"`
}

// MonthKeys returns the trailing n month labels (YYYY-MM) ending at the
// month of now, oldest first. Used to zero-fill buckets for months with no
// orders.
func MonthKeys(now time.Time, n int) []string {
	keys := make([]string, 0, n)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := n - 1; i >= 0; i-- {
		keys = append(keys, first.AddDate(0, -i, 0).Format("2006-01"))
	}
	return keys
}

// Orders builds the order report: total count, revenue, by-status counts and
// a trailing-12-month series.
func (r *ReportRepo) Orders(ctx context.Context) (OrderReport, error) {
	rep := OrderReport{ByStatus: map[string]int64{}}
	var revenue sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(unit_price_cents * quantity),0) FROM orders").
		Scan(&rep.TotalOrders, &revenue)
	if err != nil {
		return OrderReport{}, err
	}
	rep.RevenueCents = revenue.Int64

	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM orders GROUP BY status")
	if err != nil {
		return OrderReport{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return OrderReport{}, err
		}
		rep.ByStatus[status] = n
	}
	if err := rows.Err(); err != nil {
		return OrderReport{}, err
	}

	now := time.Now().UTC()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)
	mrows, err := r.db.QueryContext(ctx,
		`SELECT DATE_FORMAT(created_at, '%Y-%m') ym, COUNT(*)
		 FROM orders WHERE created_at >= ? GROUP BY ym`, since)
	if err != nil {
		return OrderReport{}, err
	}
	defer mrows.Close()
	counts := map[string]int64{}
	for mrows.Next() {
		var ym string
		var n int64
		if err := mrows.Scan(&ym, &n); err != nil {
			return OrderReport{}, err
		}
		counts[ym] = n
	}
	if err := mrows.Err(); err != nil {
		return OrderReport{}, err
	}
	for _, key := range MonthKeys(now, 12) {
		rep.Monthly = append(rep.Monthly, MonthlyCount{Month: key, Count: counts[key]})
	}
	return rep, nil
}

// Appointments builds the appointment report: total, by-status counts and
// the top-N beekeepers by assigned appointment count.
func (r *ReportRepo) Appointments(ctx context.Context, topN int) (AppointmentReport, error) {
	if topN <= 0 {
		topN = 5
	}
	rep := AppointmentReport{ByStatus: map[string]int64{}}
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM appointments").
		Scan(&rep.TotalAppointments); err != nil {
		return AppointmentReport{}, err
	}

	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM appointments GROUP BY status")
	if err != nil {
		return AppointmentReport{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return AppointmentReport{}, err
		}
		rep.ByStatus[status] = n
	}
	if err := rows.Err(); err != nil {
		return AppointmentReport{}, err
	}

	brows, err := r.db.QueryContext(ctx,
		`SELECT a.beekeeper_id, u.name, COUNT(*) c
		 FROM appointments a JOIN users u ON u.id = a.beekeeper_id
		 WHERE a.beekeeper_id IS NOT NULL
		 GROUP BY a.beekeeper_id, u.name
		 ORDER BY c DESC, a.beekeeper_id ASC
		 LIMIT ?`, topN)
	if err != nil {
		return AppointmentReport{}, err
	}
	defer brows.Close()
	rep.TopBeekeepers = []BeekeeperCount{}
	for brows.Next() {
		var b BeekeeperCount
		if err := brows.Scan(&b.BeekeeperID, &b.BeekeeperName, &b.Appointments); err != nil {
			return AppointmentReport{}, err
		}
		rep.TopBeekeepers = append(rep.TopBeekeepers, b)
	}
	return rep, brows.Err()
}
