package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reserveStockSQL = "UPDATE products SET stock_quantity = stock_quantity - ? WHERE id=? AND stock_quantity >= ?"

func TestReserveStockTxDecrements(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(reserveStockSQL)).
		WithArgs(int64(3), uint64(9), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	repo := NewProductRepo(db)
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	assert.NoError(t, repo.ReserveStockTx(context.Background(), tx, 9, 3))
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveStockTxInsufficient(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// zero rows while the product exists: another order spent the units
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(reserveStockSQL)).
		WithArgs(int64(5), uint64(9), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM products WHERE id=? LIMIT 1")).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectRollback()

	repo := NewProductRepo(db)
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	assert.ErrorIs(t, repo.ReserveStockTx(context.Background(), tx, 9, 5), ErrInsufficientStock)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveStockTxUnknownProduct(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(reserveStockSQL)).
		WithArgs(int64(1), uint64(404), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM products WHERE id=? LIMIT 1")).
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectRollback()

	repo := NewProductRepo(db)
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	assert.ErrorIs(t, repo.ReserveStockTx(context.Background(), tx, 404, 1), ErrProductNotFound)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}
