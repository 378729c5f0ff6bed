package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/liceolabs/prospect-crm/api/internal/entity"
)

// CatalogHandler serves the static source and business-unit catalogs.
type CatalogHandler struct{}

// NewCatalogHandler creates a new handler instance.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// List handles GET /catalogs requests.
func (h *CatalogHandler) List(c echo.Context) error {
	return Success(c, http.StatusOK, "catalogs retrieved", map[string]any{
		"sources":        entity.SourceCatalog,
		"business_units": entity.BusinessUnits,
	})
}
