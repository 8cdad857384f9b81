package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Andressalasf/API-Store/internal/config"
	"github.com/Andressalasf/API-Store/internal/model"
	"github.com/Andressalasf/API-Store/internal/repository"
)

// ProductHandler serves the public catalog endpoints.  All reads join the
// product's category; list endpoints paginate with ?limit= and ?offset=.
type ProductHandler struct {
	Cfg      config.Config
	Products *repository.ProductRepo
}

func NewProductHandler(cfg config.Config, p *repository.ProductRepo) *ProductHandler {
	return &ProductHandler{Cfg: cfg, Products: p}
}

type productReq struct {
	Title       *string  `json:"title"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
	CategoryID  *uint64  `json:"category_id"`
	Images      []string `json:"images"`
}

// GetAll returns a paginated product listing.
func (h *ProductHandler) GetAll(c echo.Context) error {
	limit, offset := limitOffset(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	products, err := h.Products.List(ctx, limit, offset)
	if err != nil {
		return internalError(c, err, h.Cfg.Env)
	}
	return c.JSON(http.StatusOK, products)
}

// GetByID returns one product or 404.
func (h *ProductHandler) GetByID(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid product id", nil, h.Cfg.Env)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "Product not found", nil, h.Cfg.Env)
		}
		return internalError(c, err, h.Cfg.Env)
	}
	return c.JSON(http.StatusOK, p)
}

// GetByCategory lists the products of one category, paginated.
func (h *ProductHandler) GetByCategory(c echo.Context) error {
	categoryID, err := pathID(c, "categoryId")
	if err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid category id", nil, h.Cfg.Env)
	}
	limit, offset := limitOffset(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	products, err := h.Products.ListByCategory(ctx, categoryID, limit, offset)
	if err != nil {
		return internalError(c, err, h.Cfg.Env)
	}
	return c.JSON(http.StatusOK, products)
}

// Search finds products whose title contains the ?title= term.
func (h *ProductHandler) Search(c echo.Context) error {
	term := c.QueryParam("title")
	if term == "" {
		return respondError(c, http.StatusBadRequest, "Search term is required", nil, h.Cfg.Env)
	}
	limit, offset := limitOffset(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	products, err := h.Products.SearchByTitle(ctx, term, limit, offset)
	if err != nil {
		return internalError(c, err, h.Cfg.Env)
	}
	return c.JSON(http.StatusOK, products)
}

// Create inserts a product.  Title and a non-zero price are required.
func (h *ProductHandler) Create(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid request body", err, h.Cfg.Env)
	}
	if req.Title == nil || *req.Title == "" || req.Price == nil || *req.Price == 0 {
		return respondError(c, http.StatusBadRequest, "Title and price are required", nil, h.Cfg.Env)
	}
	images := req.Images
	if images == nil {
		images = []string{}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Products.Create(ctx, model.Product{
		Title:       *req.Title,
		Price:       *req.Price,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Images:      images,
	})
	if err != nil {
		return internalError(c, err, h.Cfg.Env)
	}
	return c.JSON(http.StatusCreated, p)
}

// Update applies a partial update; absent fields keep their value.
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid product id", nil, h.Cfg.Env)
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid request body", err, h.Cfg.Env)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Existence first so a partial update of a missing product is a clean 404.
	if _, err := h.Products.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "Product not found", nil, h.Cfg.Env)
		}
		return internalError(c, err, h.Cfg.Env)
	}

	p, err := h.Products.Update(ctx, id, repository.ProductUpdate{
		Title:       req.Title,
		Price:       req.Price,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Images:      req.Images,
	})
	if err != nil {
		return internalError(c, err, h.Cfg.Env)
	}
	return c.JSON(http.StatusOK, p)
}

// Delete removes a product or reports 404.
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid product id", nil, h.Cfg.Env)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "Product not found", nil, h.Cfg.Env)
		}
		return internalError(c, err, h.Cfg.Env)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully", "id": id})
}
