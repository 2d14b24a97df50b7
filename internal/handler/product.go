package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tg-marketplace/internal/api"
	"github.com/iliyamo/tg-marketplace/internal/model"
	"github.com/iliyamo/tg-marketplace/internal/service"
)

// ProductHandler serves the catalogue and purchases.
type ProductHandler struct {
	Products  *service.ProductService
	Purchaser *service.Purchaser
}

func NewProductHandler(p *service.ProductService, pu *service.Purchaser) *ProductHandler {
	return &ProductHandler{Products: p, Purchaser: pu}
}

// List returns unsold products.
func (h *ProductHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	ps, err := h.Products.ListAvailable(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.ProductsResponse{Products: ps})
}

func (h *ProductHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	p, err := h.Products.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	var req api.ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	p, err := h.Products.Create(ctx, uid, req.Name, req.Price, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// Update applies a partial update; absent fields keep their value.
func (h *ProductHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var patch model.ProductPatch
	if err := c.Bind(&patch); err != nil {
		return badRequest("invalid body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	p, err := h.Products.Update(ctx, id, uid, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Products.Delete(ctx, id, uid); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.MessageResponse{Message: "Product deleted"})
}

func (h *ProductHandler) Purchase(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Purchaser.Purchase(ctx, uid, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.MessageResponse{Message: "Purchase successful"})
}
