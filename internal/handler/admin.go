package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hivehelp/hivehelp-api/internal/model"
	"github.com/hivehelp/hivehelp-api/internal/repository"
)

// AdminHandler implements moderation and platform-wide views. Every route
// here sits behind RequireRole(ADMIN) in the router; the handlers still pass
// isAdmin(c) down so the repositories skip ownership checks.
type AdminHandler struct {
	Users        *repository.UserRepo
	Tokens       *repository.TokenRepo
	Products     *repository.ProductRepo
	Appointments *repository.AppointmentRepo
	Orders       *repository.OrderRepo
	Reports      *repository.ReportRepo
}

func NewAdminHandler(u *repository.UserRepo, t *repository.TokenRepo, p *repository.ProductRepo, a *repository.AppointmentRepo, o *repository.OrderRepo, rep *repository.ReportRepo) *AdminHandler {
	if u == nil || t == nil || p == nil || a == nil || o == nil || rep == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Users: u, Tokens: t, Products: p, Appointments: a, Orders: o, Reports: rep}
}

// ----- users -----

// ListUsers returns every account, moderation flags included.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]profileResp, 0, len(users))
	for _, u := range users {
		out = append(out, toProfileResp(u))
	}
	return c.JSON(http.StatusOK, out)
}

// SetRole changes a user's role. This is the only path that can grant ADMIN.
func (h *AdminHandler) SetRole(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if !model.ValidRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.SetRole(ctx, id, role)
	if err != nil {
		return repoErr(c, err)
	}
	return c.JSON(http.StatusOK, toProfileResp(u))
}

// SetBlocked toggles the block flag. Blocking also revokes the user's
// outstanding refresh tokens, so the session dies as soon as the access
// token expires instead of being refreshable forever.
func (h *AdminHandler) SetBlocked(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req struct {
		Blocked bool `json:"is_blocked"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.SetBlocked(ctx, id, req.Blocked)
	if err != nil {
		return repoErr(c, err)
	}
	if req.Blocked {
		if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke sessions failed"})
		}
	}
	return c.JSON(http.StatusOK, toProfileResp(u))
}

// ApproveBeekeeper marks a beekeeper as vetted so they appear in locality
// lookups and can be assigned to appointments.
func (h *AdminHandler) ApproveBeekeeper(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Approve(ctx, id)
	if err != nil {
		return repoErr(c, err)
	}
	return c.JSON(http.StatusOK, toProfileResp(u))
}

// DeleteUser removes an account that has no appointments or orders on
// record. Referenced accounts come back as 409; block them instead.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		return repoErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

// ----- products -----

// ListProducts returns every listing with owner names, sold-out included.
func (h *AdminHandler) ListProducts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	listings, err := h.Products.ListAllWithOwner(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]productResp, 0, len(listings))
	for _, l := range listings {
		out = append(out, toListingResp(l))
	}
	return c.JSON(http.StatusOK, out)
}

// ----- appointments -----

// ListAppointments returns every appointment with customer and beekeeper
// names joined.
func (h *AdminHandler) ListAppointments(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	views, err := h.Appointments.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]appointmentResp, 0, len(views))
	for _, v := range views {
		out = append(out, toAppointmentViewResp(v))
	}
	return c.JSON(http.StatusOK, out)
}

// AssignBeekeeper attaches an approved beekeeper to a pending appointment
// and moves it to ACCEPTED in the same transaction.
func (h *AdminHandler) AssignBeekeeper(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment id"})
	}
	var req struct {
		BeekeeperID uint64 `json:"beekeeper_id"`
	}
	if err := c.Bind(&req); err != nil || req.BeekeeperID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "beekeeper_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bk, err := h.Users.GetByID(ctx, req.BeekeeperID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "beekeeper not found"})
	}
	if bk.Role != model.RoleBeekeeper || !bk.IsApproved {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user is not an approved beekeeper"})
	}

	a, err := h.Appointments.Assign(ctx, id, req.BeekeeperID)
	if err != nil {
		return repoErr(c, err)
	}
	history, err := h.Appointments.History(ctx, a.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toAppointmentResp(a, history))
}

// DeleteAllAppointments wipes every appointment and its history. The count
// of removed appointments comes back so the caller can audit the purge.
func (h *AdminHandler) DeleteAllAppointments(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.Appointments.DeleteAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}

// ----- orders -----

// ListOrders returns every order with product and customer joined.
func (h *AdminHandler) ListOrders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	views, err := h.Orders.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, viewsToResp(views))
}

// DeleteAllOrders wipes every order and its history, returning the count.
func (h *AdminHandler) DeleteAllOrders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.Orders.DeleteAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}

// ----- reports -----

// OrdersReport returns sales totals, a per-status breakdown and monthly
// volume for the trailing year.
func (h *AdminHandler) OrdersReport(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rep, err := h.Reports.Orders(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, rep)
}

// AppointmentsReport returns appointment totals, a per-status breakdown and
// the busiest beekeepers. ?top=N bounds the leaderboard, default 5.
func (h *AdminHandler) AppointmentsReport(c echo.Context) error {
	topN := 5
	if v := c.QueryParam("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "top must be 1-100"})
		}
		topN = n
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rep, err := h.Reports.Appointments(ctx, topN)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, rep)
}
