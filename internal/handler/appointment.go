package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hivehelp/hivehelp-api/internal/config"
	"github.com/hivehelp/hivehelp-api/internal/model"
	"github.com/hivehelp/hivehelp-api/internal/repository"
	"github.com/hivehelp/hivehelp-api/internal/upload"
)

// AppointmentHandler serves booking, listing, cancellation, review and
// status updates for pest-removal appointments. JWT authentication and role
// middleware run before every method here.
type AppointmentHandler struct {
	Cfg          config.Config
	Appointments *repository.AppointmentRepo
	Users        *repository.UserRepo
}

func NewAppointmentHandler(cfg config.Config, a *repository.AppointmentRepo, u *repository.UserRepo) *AppointmentHandler {
	if a == nil || u == nil {
		panic("nil repository passed to NewAppointmentHandler")
	}
	return &AppointmentHandler{Cfg: cfg, Appointments: a, Users: u}
}

type appointmentResp struct {
	ID                 uint64              `json:"id"`
	CustomerID         uint64              `json:"customer_id"`
	CustomerName       string              `json:"customer_name,omitempty"`
	BeekeeperID        *uint64             `json:"beekeeper_id,omitempty"`
	BeekeeperName      *string             `json:"beekeeper_name,omitempty"`
	FullName           string              `json:"full_name"`
	Email              string              `json:"email"`
	Phone              string              `json:"phone"`
	Date               string              `json:"date"`
	Time               string              `json:"time"`
	Hivespot           string              `json:"hivespot"`
	Address            string              `json:"address"`
	Latitude           *float64            `json:"latitude,omitempty"`
	Longitude          *float64            `json:"longitude,omitempty"`
	Severity           string              `json:"severity"`
	Photo              string              `json:"photo,omitempty"`
	ServiceChargeCents int64               `json:"service_charge_cents"`
	Status             string              `json:"status"`
	Rating             *int                `json:"rating,omitempty"`
	Review             *string             `json:"review,omitempty"`
	StatusHistory      []model.StatusEntry `json:"status_history,omitempty"`
}

func toAppointmentResp(a model.Appointment, history []model.StatusEntry) appointmentResp {
	return appointmentResp{
		ID:                 a.ID,
		CustomerID:         a.CustomerID,
		BeekeeperID:        a.BeekeeperID,
		FullName:           a.FullName,
		Email:              a.Email,
		Phone:              a.Phone,
		Date:               a.Date,
		Time:               a.Time,
		Hivespot:           a.Hivespot,
		Address:            a.Address,
		Latitude:           a.Latitude,
		Longitude:          a.Longitude,
		Severity:           a.Severity,
		Photo:              a.PhotoPath,
		ServiceChargeCents: a.ServiceChargeCents,
		Status:             a.Status,
		Rating:             a.Rating,
		Review:             a.Review,
		StatusHistory:      history,
	}
}

func toAppointmentViewResp(v repository.AppointmentView) appointmentResp {
	r := toAppointmentResp(v.Appointment, nil)
	r.CustomerName = v.CustomerName
	r.BeekeeperName = v.BeekeeperName
	return r
}

// Book handles the customer booking form (multipart, optional photo). The
// requester must still exist; a stale token for a deleted account cannot
// book. New appointments start PENDING with the flat service charge.
func (h *AppointmentHandler) Book(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, userID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "user not found, please login again"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	in := repository.NewAppointment{
		CustomerID:         userID,
		FullName:           strings.TrimSpace(c.FormValue("full_name")),
		Email:              strings.TrimSpace(c.FormValue("email")),
		Phone:              strings.TrimSpace(c.FormValue("phone")),
		Date:               strings.TrimSpace(c.FormValue("date")),
		Time:               strings.TrimSpace(c.FormValue("time")),
		Hivespot:           strings.TrimSpace(c.FormValue("hivespot")),
		Address:            strings.TrimSpace(c.FormValue("address")),
		Severity:           strings.TrimSpace(c.FormValue("severity")),
		ServiceChargeCents: int64(h.Cfg.ServiceChargeCts),
	}
	if in.FullName == "" || in.Date == "" || in.Address == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "full_name, date and address required"})
	}
	if v := c.FormValue("latitude"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			in.Latitude = &f
		}
	}
	if v := c.FormValue("longitude"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			in.Longitude = &f
		}
	}
	if fh, err := c.FormFile("photo"); err == nil && fh != nil {
		in.PhotoPath, err = upload.Save(h.Cfg.UploadDir, fh)
		if err != nil {
			if err == upload.ErrUnsupportedType {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported photo type"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store photo failed"})
		}
	}

	a, err := h.Appointments.Create(ctx, in)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create appointment failed"})
	}
	history, err := h.Appointments.History(ctx, a.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusCreated, toAppointmentResp(a, history))
}

// List returns appointments scoped by role: beekeepers see jobs assigned to
// them, customers see their own bookings. Most recent date first.
func (h *AppointmentHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var views []repository.AppointmentView
	if getRole(c) == model.RoleBeekeeper {
		views, err = h.Appointments.ListForBeekeeper(ctx, userID)
	} else {
		views, err = h.Appointments.ListForCustomer(ctx, userID)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]appointmentResp, 0, len(views))
	for _, v := range views {
		out = append(out, toAppointmentViewResp(v))
	}
	return c.JSON(http.StatusOK, out)
}

// Cancel lets the owning customer cancel a still-pending appointment.
// Calling it again yields 409 because the appointment is no longer pending.
func (h *AppointmentHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Appointments.Cancel(ctx, id, userID)
	if err != nil {
		return repoErr(c, err)
	}
	history, err := h.Appointments.History(ctx, a.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toAppointmentResp(a, history))
}

// Review records the owning customer's rating (1-5) and text once the job
// is completed.
func (h *AppointmentHandler) Review(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment id"})
	}
	var req struct {
		Rating int    `json:"rating"`
		Review string `json:"review"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1 and 5"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Appointments.SetReview(ctx, id, userID, req.Rating, strings.TrimSpace(req.Review))
	if err != nil {
		return repoErr(c, err)
	}
	return c.JSON(http.StatusOK, toAppointmentResp(a, nil))
}

// UpdateStatus applies a transition requested by the assigned beekeeper (or
// an admin through the admin router). The transition graph is enforced;
// anything else gets 409.
func (h *AppointmentHandler) UpdateStatus(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment id"})
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if !model.ValidAppointmentStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Appointments.UpdateStatus(ctx, id, userID, isAdmin(c), status)
	if err != nil {
		return repoErr(c, err)
	}
	history, err := h.Appointments.History(ctx, a.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toAppointmentResp(a, history))
}
