package handler

import (
	"encoding/json"
	"net/http"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivehelp/hivehelp-api/internal/model"
	"github.com/hivehelp/hivehelp-api/internal/repository"
)

func newAdminHandlerWithMock(t *testing.T) (*AdminHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewAdminHandler(
		repository.NewUserRepo(db),
		repository.NewTokenRepo(db),
		repository.NewProductRepo(db),
		repository.NewAppointmentRepo(db),
		repository.NewOrderRepo(db),
		repository.NewReportRepo(db),
	), mock
}

func expectUserRow(mock sqlmock.Sqlmock, id uint64, blocked bool) {
	now := time.Now().UTC()
	mock.ExpectQuery("FROM users WHERE id=\\? LIMIT 1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "email", "phone", "password_hash", "role",
			"is_blocked", "is_approved", "locality", "created_at", "updated_at",
		}).AddRow(id, "Rui Tanaka", "rui@example.com", "555-0102", "x", model.RoleCustomer,
			blocked, false, "Eastfield", now, now))
}

// Blocking an account must also revoke its outstanding refresh tokens so the
// session cannot be renewed once the access token expires.
func TestSetBlockedRevokesRefreshTokens(t *testing.T) {
	h, mock := newAdminHandlerWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM users WHERE id=? LIMIT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET is_blocked=? WHERE id=?")).
		WithArgs(true, uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectUserRow(mock, 4, true)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked_at=NOW() WHERE user_id=? AND revoked_at IS NULL")).
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	c, rec := newJSONContext(t, http.MethodPatch, "/v1/admin/users/4/block", `{"is_blocked":true}`, 1, model.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues("4")

	require.NoError(t, h.SetBlocked(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp profileResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.IsBlocked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Unblocking leaves refresh tokens alone.
func TestSetBlockedFalseKeepsRefreshTokens(t *testing.T) {
	h, mock := newAdminHandlerWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM users WHERE id=? LIMIT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET is_blocked=? WHERE id=?")).
		WithArgs(false, uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectUserRow(mock, 4, false)

	c, rec := newJSONContext(t, http.MethodPatch, "/v1/admin/users/4/block", `{"is_blocked":false}`, 1, model.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues("4")

	require.NoError(t, h.SetBlocked(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
