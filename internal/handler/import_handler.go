package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/liceolabs/prospect-crm/api/internal/dto"
	"github.com/liceolabs/prospect-crm/api/internal/service"
	"github.com/liceolabs/prospect-crm/api/internal/service/importer"
)

// ImportHandler handles bulk lead ingestion from spreadsheet uploads.
type ImportHandler struct {
	leads *service.LeadsService
}

// NewImportHandler wires a handler backed by the leads service.
func NewImportHandler(leads *service.LeadsService) *ImportHandler {
	return &ImportHandler{leads: leads}
}

// Upload handles POST /admin/import requests. The file format is chosen by
// extension: .xlsx goes through the spreadsheet reader, everything else is
// treated as CSV.
func (h *ImportHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing import file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	var rows []importer.Row
	if strings.EqualFold(filepath.Ext(fileHeader.Filename), ".xlsx") {
		rows, err = importer.ReadXLSX(file)
	} else {
		rows, err = importer.ReadCSV(file)
	}
	if err != nil {
		if errors.Is(err, importer.ErrEmptyFile) {
			return Error(c, http.StatusBadRequest, "import file is empty")
		}
		return Error(c, http.StatusBadRequest, "unable to parse import file")
	}

	summary, err := h.leads.ImportLeads(c.Request().Context(), rows)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to import leads")
	}

	return Success(c, http.StatusOK, "leads imported", dto.ImportSummaryResponse{
		Added:      summary.Added,
		Duplicates: summary.Duplicates,
		Total:      summary.Total,
		Warnings:   summary.Warnings,
	})
}
