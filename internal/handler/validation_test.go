package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/hivehelp/hivehelp-api/internal/config"
	"github.com/hivehelp/hivehelp-api/internal/repository"
)

// newJSONContext builds an echo context carrying a JSON body and, optionally,
// the claims the JWT middleware would have injected.
func newJSONContext(t *testing.T, method, target, body string, userID uint64, role string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user_id", userID)
		c.Set("role", role)
	}
	return c, rec
}

func TestRegisterRequiresFields(t *testing.T) {
	h := NewAuthHandler(config.Config{}, &repository.UserRepo{}, &repository.TokenRepo{})

	cases := []string{
		`{}`,
		`{"name":"Maya"}`,
		`{"name":"Maya","email":"maya@example.com"}`,
		`{"email":"maya@example.com","password":"hunter22"}`,
	}
	for _, body := range cases {
		c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/register", body, 0, "")
		assert.NoError(t, h.Register(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	h := NewAuthHandler(config.Config{}, &repository.UserRepo{}, &repository.TokenRepo{})

	c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/login", `{"email":"maya@example.com"}`, 0, "")
	assert.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshRequiresToken(t *testing.T) {
	h := NewAuthHandler(config.Config{}, &repository.UserRepo{}, &repository.TokenRepo{})

	c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/refresh", `{}`, 0, "")
	assert.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewRejectsOutOfRangeRating(t *testing.T) {
	h := NewAppointmentHandler(config.Config{}, &repository.AppointmentRepo{}, &repository.UserRepo{})

	for _, rating := range []string{"0", "6", "-1"} {
		c, rec := newJSONContext(t, http.MethodPost, "/v1/appointments/1/review",
			`{"rating":`+rating+`,"review":"great"}`, 7, "CUSTOMER")
		c.SetParamNames("id")
		c.SetParamValues("1")
		assert.NoError(t, h.Review(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "rating %s", rating)
	}
}

func TestAppointmentStatusRejectsUnknown(t *testing.T) {
	h := NewAppointmentHandler(config.Config{}, &repository.AppointmentRepo{}, &repository.UserRepo{})

	c, rec := newJSONContext(t, http.MethodPut, "/v1/beekeeper/appointments/1/status",
		`{"status":"FROZEN"}`, 7, "BEEKEEPER")
	c.SetParamNames("id")
	c.SetParamValues("1")
	assert.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelRejectsBadID(t *testing.T) {
	h := NewAppointmentHandler(config.Config{}, &repository.AppointmentRepo{}, &repository.UserRepo{})

	c, rec := newJSONContext(t, http.MethodPost, "/v1/appointments/abc/cancel", ``, 7, "CUSTOMER")
	c.SetParamNames("id")
	c.SetParamValues("abc")
	assert.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderCreateValidatesInput(t *testing.T) {
	h := NewOrderHandler(&repository.OrderRepo{}, &repository.ProductRepo{})

	cases := []string{
		`{}`,
		`{"product_id":3}`,
		`{"product_id":3,"quantity":0}`,
		`{"product_id":3,"quantity":-2}`,
		`{"quantity":1}`,
	}
	for _, body := range cases {
		c, rec := newJSONContext(t, http.MethodPost, "/v1/orders", body, 7, "CUSTOMER")
		assert.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestOrderStatusRejectsUnknown(t *testing.T) {
	h := NewOrderHandler(&repository.OrderRepo{}, &repository.ProductRepo{})

	c, rec := newJSONContext(t, http.MethodPut, "/v1/beekeeper/orders/1/status",
		`{"status":"TELEPORTED"}`, 7, "BEEKEEPER")
	c.SetParamNames("id")
	c.SetParamValues("1")
	assert.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminSetRoleRejectsUnknownRole(t *testing.T) {
	h := NewAdminHandler(&repository.UserRepo{}, &repository.TokenRepo{}, &repository.ProductRepo{}, &repository.AppointmentRepo{}, &repository.OrderRepo{}, &repository.ReportRepo{})

	c, rec := newJSONContext(t, http.MethodPut, "/v1/admin/users/1/role",
		`{"role":"SUPERUSER"}`, 1, "ADMIN")
	c.SetParamNames("id")
	c.SetParamValues("1")
	assert.NoError(t, h.SetRole(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAppointmentsReportTopBounds(t *testing.T) {
	h := NewAdminHandler(&repository.UserRepo{}, &repository.TokenRepo{}, &repository.ProductRepo{}, &repository.AppointmentRepo{}, &repository.OrderRepo{}, &repository.ReportRepo{})

	for _, top := range []string{"0", "101", "abc"} {
		c, rec := newJSONContext(t, http.MethodGet, "/v1/admin/reports/appointments?top="+top, ``, 1, "ADMIN")
		assert.NoError(t, h.AppointmentsReport(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "top %s", top)
	}
}
