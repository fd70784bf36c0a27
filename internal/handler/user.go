package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hivehelp/hivehelp-api/internal/model"
	"github.com/hivehelp/hivehelp-api/internal/repository"
)

// UserHandler serves profile endpoints and the locality-based beekeeper
// lookup. All routes require authentication; the password hash is never
// serialized.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(u *repository.UserRepo) *UserHandler {
	if u == nil {
		panic("nil repository passed to NewUserHandler")
	}
	return &UserHandler{Users: u}
}

type profileResp struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Role       string `json:"role"`
	IsBlocked  bool   `json:"is_blocked"`
	IsApproved bool   `json:"is_approved"`
	Locality   string `json:"locality"`
}

func toProfileResp(u model.User) profileResp {
	return profileResp{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		Role:       u.Role,
		IsBlocked:  u.IsBlocked,
		IsApproved: u.IsApproved,
		Locality:   u.Locality,
	}
}

// Me returns the authenticated user's profile.
func (h *UserHandler) Me(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toProfileResp(u))
}

// UpdateMe overwrites the caller's name and phone. Role, email and the
// moderation flags are not editable here.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, userID, req.Name, strings.TrimSpace(req.Phone))
	if err != nil {
		return repoErr(c, err)
	}
	return c.JSON(http.StatusOK, toProfileResp(u))
}

// BeekeepersByLocality lists approved beekeepers serving a locality,
// matched case-insensitively and exactly.
func (h *UserHandler) BeekeepersByLocality(c echo.Context) error {
	locality := strings.TrimSpace(c.Param("locality"))
	if locality == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "locality required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	beekeepers, err := h.Users.ListApprovedBeekeepersByLocality(ctx, locality)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, beekeepers)
}
