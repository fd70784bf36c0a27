package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hivehelp/hivehelp-api/internal/model"
	"github.com/hivehelp/hivehelp-api/internal/queue"
	"github.com/hivehelp/hivehelp-api/internal/repository"
	queue_publisher "github.com/hivehelp/hivehelp-api/internal/service"
)

// OrderHandler serves honey-product checkout and order tracking. Checkout
// runs stock reservation and order insertion in one transaction so a sold-out
// product can never be oversold under concurrent requests.
type OrderHandler struct {
	Orders   *repository.OrderRepo
	Products *repository.ProductRepo
}

func NewOrderHandler(o *repository.OrderRepo, p *repository.ProductRepo) *OrderHandler {
	if o == nil || p == nil {
		panic("nil repository passed to NewOrderHandler")
	}
	return &OrderHandler{Orders: o, Products: p}
}

type orderResp struct {
	ID             uint64              `json:"id"`
	CustomerID     uint64              `json:"customer_id"`
	CustomerName   string              `json:"customer_name,omitempty"`
	BeekeeperID    uint64              `json:"beekeeper_id"`
	ProductID      uint64              `json:"product_id"`
	ProductName    string              `json:"product_name,omitempty"`
	ProductImage   string              `json:"product_image,omitempty"`
	Quantity       int64               `json:"quantity"`
	UnitPriceCents int64               `json:"unit_price_cents"`
	TotalCents     int64               `json:"total_cents"`
	Status         string              `json:"status"`
	CreatedAt      time.Time           `json:"created_at"`
	StatusHistory  []model.StatusEntry `json:"status_history,omitempty"`
}

func toOrderResp(o model.Order, history []model.StatusEntry) orderResp {
	return orderResp{
		ID:             o.ID,
		CustomerID:     o.CustomerID,
		BeekeeperID:    o.BeekeeperID,
		ProductID:      o.ProductID,
		Quantity:       o.Quantity,
		UnitPriceCents: o.UnitPriceCents,
		TotalCents:     o.UnitPriceCents * o.Quantity,
		Status:         o.Status,
		CreatedAt:      o.CreatedAt,
		StatusHistory:  history,
	}
}

func toOrderViewResp(v repository.OrderView) orderResp {
	r := toOrderResp(v.Order, nil)
	r.ProductName = v.ProductName
	r.ProductImage = v.ProductImage
	r.CustomerName = v.CustomerName
	return r
}

// Create places an order for a product. The unit price is snapshotted from
// the product at purchase time, so later price edits don't rewrite past
// orders. Stock is decremented with a conditional update inside the same
// transaction as the insert; losing the race returns 409.
func (h *OrderHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req struct {
		ProductID uint64 `json:"product_id"`
		Quantity  int64  `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ProductID == 0 || req.Quantity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id and positive quantity required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Products.GetByID(ctx, req.ProductID)
	if err != nil {
		return repoErr(c, err)
	}

	tx, err := h.Orders.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Products.ReserveStockTx(ctx, tx, p.ID, req.Quantity); err != nil {
		return repoErr(c, err)
	}
	order := model.Order{
		CustomerID:     userID,
		BeekeeperID:    p.BeekeeperID,
		ProductID:      p.ID,
		Quantity:       req.Quantity,
		UnitPriceCents: p.PriceCents,
	}
	if err := h.Orders.CreateTx(ctx, tx, &order); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create order failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	committed = true

	// Notification is best-effort; the order stands even if the broker is down.
	evt := queue.OrderPlacedEvent{
		OrderID:        order.ID,
		CustomerID:     order.CustomerID,
		BeekeeperID:    order.BeekeeperID,
		ProductID:      order.ProductID,
		ProductName:    p.Name,
		Quantity:       order.Quantity,
		UnitPriceCents: order.UnitPriceCents,
		TotalCents:     order.UnitPriceCents * order.Quantity,
		PlacedAt:       order.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := queue_publisher.PublishOrderPlaced(ctx, evt); err != nil {
		log.Printf("order %d: publish order.placed failed: %v", order.ID, err)
	}

	history, err := h.Orders.History(ctx, order.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	resp := toOrderResp(order, history)
	resp.ProductName = p.Name
	resp.ProductImage = p.ImagePath
	return c.JSON(http.StatusCreated, resp)
}

// ListMine returns the calling customer's orders, newest first.
func (h *OrderHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	views, err := h.Orders.ListForCustomer(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, viewsToResp(views))
}

// ListForBeekeeper returns incoming orders for the calling beekeeper's
// products, newest first.
func (h *OrderHandler) ListForBeekeeper(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	views, err := h.Orders.ListForBeekeeper(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, viewsToResp(views))
}

// History returns an order's status trail. Visible to the customer who
// placed it, the fulfilling beekeeper and admins.
func (h *OrderHandler) History(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	o, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		return repoErr(c, err)
	}
	if !isAdmin(c) && o.CustomerID != userID && o.BeekeeperID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	history, err := h.Orders.History(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toOrderResp(o, history))
}

// UpdateStatus moves an order along its fulfilment lifecycle. The fulfilling
// beekeeper (or an admin) drives it; the transition graph rejects anything
// else with 409.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if !model.ValidOrderStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	o, err := h.Orders.UpdateStatus(ctx, id, userID, isAdmin(c), status)
	if err != nil {
		return repoErr(c, err)
	}
	history, err := h.Orders.History(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toOrderResp(o, history))
}

func viewsToResp(views []repository.OrderView) []orderResp {
	out := make([]orderResp, 0, len(views))
	for _, v := range views {
		out = append(out, toOrderViewResp(v))
	}
	return out
}
