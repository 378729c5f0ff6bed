package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/liceolabs/prospect-crm/api/internal/dto"
	"github.com/liceolabs/prospect-crm/api/internal/entity"
	"github.com/liceolabs/prospect-crm/api/internal/service"
)

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestImportHandler_Upload(t *testing.T) {
	e := echo.New()
	var created []entity.Lead
	handler := NewImportHandler(service.NewLeadsService(&stubLeadsRepo{
		getAll: func(ctx context.Context) ([]entity.Lead, error) { return nil, nil },
		create: func(ctx context.Context, lead *entity.Lead) (*entity.Lead, error) {
			created = append(created, *lead)
			stored := *lead
			stored.ID = uuid.New()
			return &stored, nil
		},
	}))

	csv := "Nombre,Correo,Telefono\n" +
		"maría lópez,maria@example.com,55-1234-5678\n" +
		"juan pérez,maria@example.com,5599999999\n"
	body, contentType := multipartUpload(t, "leads.csv", csv)

	req := httptest.NewRequest(http.MethodPost, "/admin/import", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Upload(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data dto.ImportSummaryResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.Added != 1 || resp.Data.Duplicates != 1 || resp.Data.Total != 2 {
		t.Fatalf("unexpected summary: %+v", resp.Data)
	}
	if len(created) != 1 || created[0].Name != "María López" {
		t.Fatalf("unexpected created leads: %+v", created)
	}
	if created[0].Source != "Imported" {
		t.Fatalf("expected default source, got %q", created[0].Source)
	}
}

func TestImportHandler_Upload_MissingFile(t *testing.T) {
	e := echo.New()
	handler := NewImportHandler(service.NewLeadsService(&stubLeadsRepo{}))

	req := httptest.NewRequest(http.MethodPost, "/admin/import", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = handler.Upload(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestImportHandler_Upload_EmptyFile(t *testing.T) {
	e := echo.New()
	handler := NewImportHandler(service.NewLeadsService(&stubLeadsRepo{}))

	body, contentType := multipartUpload(t, "empty.csv", "")
	req := httptest.NewRequest(http.MethodPost, "/admin/import", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = handler.Upload(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
