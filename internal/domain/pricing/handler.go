package pricing

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hims/hims/internal/domain/catalog"
	"github.com/hims/hims/internal/platform/auth"
	"github.com/hims/hims/pkg/pagination"
)

type Handler struct {
	resolver *Resolver
	svc      *Service
}

func NewHandler(resolver *Resolver, svc *Service) *Handler {
	return &Handler{resolver: resolver, svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	resolveGroup := api.Group("", auth.RequireRole("admin", "billing", "frontdesk"))
	resolveGroup.POST("/pricing/resolve", h.Resolve)
	resolveGroup.GET("/pricing/compare", h.Compare)

	readGroup := api.Group("", auth.RequireRole("admin", "billing"))
	readGroup.GET("/pricing-rules", h.ListRules)
	readGroup.GET("/pricing-rules/:id", h.GetRule)

	writeGroup := api.Group("", auth.RequireRole("admin"))
	writeGroup.POST("/pricing-rules", h.CreateRule)
	writeGroup.PUT("/pricing-rules/:id", h.UpdateRule)
	writeGroup.DELETE("/pricing-rules/:id", h.DeleteRule)
}

func (h *Handler) Resolve(c echo.Context) error {
	var req ResolveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resolved, err := h.resolver.Resolve(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrInvalidItemRef):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, catalog.ErrItemNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, resolved)
}

func (h *Handler) Compare(c echo.Context) error {
	ref, err := itemRefFromQuery(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cmp, err := h.resolver.Compare(c.Request().Context(), ref)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrInvalidItemRef):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, catalog.ErrItemNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, cmp)
}

func itemRefFromQuery(c echo.Context) (catalog.ItemRef, error) {
	var ref catalog.ItemRef
	if raw := c.QueryParam("service_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return ref, errors.New("invalid service_id")
		}
		ref.ServiceID = &id
	}
	if raw := c.QueryParam("lab_test_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return ref, errors.New("invalid lab_test_id")
		}
		ref.LabTestID = &id
	}
	return ref, nil
}

// -- Rule Handlers --

func (h *Handler) CreateRule(c echo.Context) error {
	var r PricingRule
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateRule(c.Request().Context(), &r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) GetRule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	r, err := h.svc.GetRule(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "rule not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) ListRules(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListRules(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateRule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var r PricingRule
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r.ID = id
	if err := h.svc.UpdateRule(c.Request().Context(), &r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteRule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteRule(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
