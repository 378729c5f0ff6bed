package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/liceolabs/prospect-crm/api/internal/dto"
	"github.com/liceolabs/prospect-crm/api/internal/repository"
	"github.com/liceolabs/prospect-crm/api/internal/service"
)

// LeadsHandler exposes the lead CRUD and calendar endpoints.
type LeadsHandler struct {
	leads *service.LeadsService
}

// NewLeadsHandler creates a new handler instance.
func NewLeadsHandler(leads *service.LeadsService) *LeadsHandler {
	return &LeadsHandler{leads: leads}
}

// List handles GET /leads requests.
func (h *LeadsHandler) List(c echo.Context) error {
	leads, err := h.leads.ListLeads(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list leads")
	}
	return Success(c, http.StatusOK, "leads retrieved", leads)
}

// Get handles GET /leads/:id requests.
func (h *LeadsHandler) Get(c echo.Context) error {
	lead, err := h.leads.GetLead(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return Error(c, http.StatusNotFound, "lead not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to load lead")
	}
	return Success(c, http.StatusOK, "lead retrieved", lead)
}

// Create handles POST /leads requests.
func (h *LeadsHandler) Create(c echo.Context) error {
	var req dto.CreateLeadRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	lead, err := h.leads.CreateLead(c.Request().Context(), req)
	if err != nil {
		var verr service.ValidationError
		if errors.As(err, &verr) {
			return Error(c, http.StatusBadRequest, verr.Error())
		}
		return Error(c, http.StatusInternalServerError, "failed to create lead")
	}
	return Success(c, http.StatusCreated, "lead created", lead)
}

// Update handles PATCH /leads/:id requests.
func (h *LeadsHandler) Update(c echo.Context) error {
	var req dto.UpdateLeadRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	lead, err := h.leads.UpdateLead(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		var verr service.ValidationError
		switch {
		case errors.Is(err, repository.ErrLeadNotFound):
			return Error(c, http.StatusNotFound, "lead not found")
		case errors.As(err, &verr):
			return Error(c, http.StatusBadRequest, verr.Error())
		default:
			return Error(c, http.StatusInternalServerError, "failed to update lead")
		}
	}
	return Success(c, http.StatusOK, "lead updated", lead)
}

// Delete handles DELETE /leads/:id requests.
func (h *LeadsHandler) Delete(c echo.Context) error {
	if err := h.leads.DeleteLead(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return Error(c, http.StatusNotFound, "lead not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to delete lead")
	}
	return Success(c, http.StatusOK, "lead deleted", nil)
}

// ListScheduled handles GET /leads/scheduled?from&to requests.
func (h *LeadsHandler) ListScheduled(c echo.Context) error {
	var from, to time.Time

	if raw := strings.TrimSpace(c.QueryParam("from")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Error(c, http.StatusBadRequest, "invalid from (use RFC3339)")
		}
		from = parsed
	}
	if raw := strings.TrimSpace(c.QueryParam("to")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Error(c, http.StatusBadRequest, "invalid to (use RFC3339)")
		}
		to = parsed
	}

	leads, err := h.leads.ListScheduled(c.Request().Context(), from, to)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list scheduled leads")
	}
	return Success(c, http.StatusOK, "scheduled leads retrieved", leads)
}
