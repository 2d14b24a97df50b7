package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tg-marketplace/internal/api"
	"github.com/iliyamo/tg-marketplace/internal/search"
	"github.com/iliyamo/tg-marketplace/internal/service"
)

// ManageHandler serves operational endpoints and search.
type ManageHandler struct {
	Manage   *service.ManageService
	Searcher search.Searcher
}

func NewManageHandler(m *service.ManageService, s search.Searcher) *ManageHandler {
	return &ManageHandler{Manage: m, Searcher: s}
}

// Health reports whether the database answers.
func (h *ManageHandler) Health(c echo.Context) error {
	if err := h.Manage.Health(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.HealthResponse{Status: "ok", Message: "Database connection is healthy"})
}

func (h *ManageHandler) Users(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	us, err := h.Manage.Users(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.UsersResponse{Users: us})
}

// Populate seeds fifty demo products owned by the caller.
func (h *ManageHandler) Populate(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	ps, err := h.Manage.Populate(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, api.PopulateResponse{Message: "Products created", Created: len(ps)})
}

// Search ranks products against the q query parameter.
func (h *ManageHandler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return badRequest("query is required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	results, err := h.Searcher.Search(ctx, q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.SearchResponse{Results: results})
}
