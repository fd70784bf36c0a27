package handler

import (
	"context"
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

// ProductHandler serves the honey store: browsing for customers, listing
// management for beekeepers. Create and update accept multipart forms so an
// image can ride along; the image bytes go to the upload store and only the
// stored filename is persisted.
type ProductHandler struct {
	Cfg      config.Config
	Products *repository.ProductRepo
}

func NewProductHandler(cfg config.Config, p *repository.ProductRepo) *ProductHandler {
	if p == nil {
		panic("nil repository passed to NewProductHandler")
	}
	return &ProductHandler{Cfg: cfg, Products: p}
}

type productResp struct {
	ID            uint64 `json:"id"`
	BeekeeperID   uint64 `json:"beekeeper_id"`
	BeekeeperName string `json:"beekeeper_name,omitempty"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	PriceCents    int64  `json:"price_cents"`
	StockQuantity int64  `json:"stock_quantity"`
	Image         string `json:"image,omitempty"`
}

func toProductResp(p model.Product) productResp {
	return productResp{
		ID:            p.ID,
		BeekeeperID:   p.BeekeeperID,
		Name:          p.Name,
		Description:   p.Description,
		PriceCents:    p.PriceCents,
		StockQuantity: p.StockQuantity,
		Image:         p.ImagePath,
	}
}

func toListingResp(l repository.ProductListing) productResp {
	r := toProductResp(l.Product)
	r.BeekeeperName = l.BeekeeperName
	return r
}

// ListAvailable returns in-stock products with owner names for the store
// front. Any authenticated user may browse.
func (h *ProductHandler) ListAvailable(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	listings, err := h.Products.ListAvailable(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]productResp, 0, len(listings))
	for _, l := range listings {
		out = append(out, toListingResp(l))
	}
	return c.JSON(http.StatusOK, out)
}

// ListMine returns the calling beekeeper's products, sold-out ones included.
func (h *ProductHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	products, err := h.Products.ListByBeekeeper(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]productResp, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResp(p))
	}
	return c.JSON(http.StatusOK, out)
}

// Create adds a listing for the calling beekeeper. Multipart fields: name,
// description, price_cents, stock_quantity, optional image file.
func (h *ProductHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	name := strings.TrimSpace(c.FormValue("name"))
	description := strings.TrimSpace(c.FormValue("description"))
	priceCents, errPrice := strconv.ParseInt(c.FormValue("price_cents"), 10, 64)
	stock, errStock := strconv.ParseInt(c.FormValue("stock_quantity"), 10, 64)
	if name == "" || description == "" || errPrice != nil || priceCents <= 0 || errStock != nil || stock < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, description, price_cents and stock_quantity required"})
	}

	imagePath := ""
	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		imagePath, err = upload.Save(h.Cfg.UploadDir, fh)
		if err != nil {
			if err == upload.ErrUnsupportedType {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported image type"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store image failed"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Products.Create(ctx, userID, name, description, priceCents, stock, imagePath)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create product failed"})
	}
	return c.JSON(http.StatusCreated, toProductResp(p))
}

// Update applies a partial patch to a listing. Only the owning beekeeper or
// an admin may edit; fields absent from the form are left untouched.
func (h *ProductHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	var patch repository.ProductPatch
	if v := c.FormValue("name"); v != "" {
		name := strings.TrimSpace(v)
		patch.Name = &name
	}
	if v := c.FormValue("description"); v != "" {
		desc := strings.TrimSpace(v)
		patch.Description = &desc
	}
	if v := c.FormValue("price_cents"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid price_cents"})
		}
		patch.PriceCents = &n
	}
	if v := c.FormValue("stock_quantity"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid stock_quantity"})
		}
		patch.Stock = &n
	}
	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		stored, err := upload.Save(h.Cfg.UploadDir, fh)
		if err != nil {
			if err == upload.ErrUnsupportedType {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported image type"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store image failed"})
		}
		patch.ImagePath = &stored
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Products.Update(ctx, id, userID, isAdmin(c), patch)
	if err != nil {
		return repoErr(c, err)
	}
	return c.JSON(http.StatusOK, toProductResp(p))
}

// Delete removes a listing. Owner or admin only.
func (h *ProductHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Products.Delete(ctx, id, userID, isAdmin(c)); err != nil {
		return repoErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}
