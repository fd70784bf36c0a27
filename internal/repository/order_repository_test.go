package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivehelp/hivehelp-api/internal/model"
)

var orderRowColumns = []string{
	"id", "customer_id", "beekeeper_id", "product_id", "quantity",
	"unit_price_cents", "status", "created_at", "updated_at",
}

func orderRow(id uint64, status string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(orderRowColumns).AddRow(
		id, uint64(7), uint64(9), uint64(3), int64(2), int64(1250), status, now, now)
}

func expectOrderSelect(mock sqlmock.Sqlmock, rows *sqlmock.Rows) {
	mock.ExpectQuery("FROM orders WHERE id=\\? LIMIT 1").WillReturnRows(rows)
}

func TestCreateTxInsertsOrderWithInitialHistory(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WithArgs(uint64(7), uint64(9), uint64(3), int64(2), int64(1250), model.OrderProcessing).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_status_history (order_id, status) VALUES (?,?)")).
		WithArgs(uint64(42), model.OrderProcessing).
		WillReturnResult(sqlmock.NewResult(1, 1))
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at, updated_at FROM orders WHERE id=?")).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	repo := NewOrderRepo(db)
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	o := model.Order{CustomerID: 7, BeekeeperID: 9, ProductID: 3, Quantity: 2, UnitPriceCents: 1250}
	require.NoError(t, repo.CreateTx(context.Background(), tx, &o))
	require.NoError(t, tx.Commit())

	assert.Equal(t, uint64(42), o.ID)
	assert.Equal(t, model.OrderProcessing, o.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderUpdateStatusForbiddenForOtherBeekeeper(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectOrderSelect(mock, orderRow(1, model.OrderProcessing))

	_, err = NewOrderRepo(db).UpdateStatus(context.Background(), 1, 10, false, model.OrderShipped)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderUpdateStatusRejectsBadEdge(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectOrderSelect(mock, orderRow(1, model.OrderProcessing))

	_, err = NewOrderRepo(db).UpdateStatus(context.Background(), 1, 9, false, model.OrderCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderUpdateStatusCommitsAndAppends(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectOrderSelect(mock, orderRow(1, model.OrderProcessing))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status=? WHERE id=? AND status=?")).
		WithArgs(model.OrderShipped, uint64(1), model.OrderProcessing).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_status_history (order_id, status) VALUES (?,?)")).
		WithArgs(uint64(1), model.OrderShipped).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()
	expectOrderSelect(mock, orderRow(1, model.OrderShipped))

	o, err := NewOrderRepo(db).UpdateStatus(context.Background(), 1, 9, false, model.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, model.OrderShipped, o.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderUpdateStatusLostRaceRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// another transition committed after the read; the conditional update
	// matches nothing and no history row may be written
	expectOrderSelect(mock, orderRow(1, model.OrderShipped))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status=? WHERE id=? AND status=?")).
		WithArgs(model.OrderDelivered, uint64(1), model.OrderShipped).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err = NewOrderRepo(db).UpdateStatus(context.Background(), 1, 9, false, model.OrderDelivered)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}
