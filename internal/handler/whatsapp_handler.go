package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/liceolabs/prospect-crm/api/internal/dto"
	"github.com/liceolabs/prospect-crm/api/internal/repository"
	"github.com/liceolabs/prospect-crm/api/internal/service"
)

// emptyTwiML tells Twilio the webhook was handled and no reply should be
// sent back to the prospect.
const emptyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

// WhatsAppHandler exposes the messaging endpoints: outbound sends, the
// inbound provider webhook, and the unread flag.
type WhatsAppHandler struct {
	whatsapp *service.WhatsAppService
}

// NewWhatsAppHandler creates a new handler instance.
func NewWhatsAppHandler(whatsapp *service.WhatsAppService) *WhatsAppHandler {
	return &WhatsAppHandler{whatsapp: whatsapp}
}

// Send handles POST /whatsapp/send/:id requests.
func (h *WhatsAppHandler) Send(c echo.Context) error {
	var req dto.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	msg, err := h.whatsapp.SendMessage(c.Request().Context(), c.Param("id"), req.Content)
	if err != nil {
		var verr service.ValidationError
		switch {
		case errors.Is(err, service.ErrWhatsAppUnconfigured):
			return Error(c, http.StatusServiceUnavailable, "whatsapp is not configured")
		case errors.Is(err, repository.ErrLeadNotFound):
			return Error(c, http.StatusNotFound, "lead not found")
		case errors.Is(err, service.ErrLeadWithoutPhone):
			return Error(c, http.StatusBadRequest, "lead has no phone number")
		case errors.As(err, &verr):
			return Error(c, http.StatusBadRequest, verr.Error())
		default:
			return Error(c, http.StatusInternalServerError, "failed to send message")
		}
	}
	return Success(c, http.StatusOK, "message sent", msg)
}

// Webhook handles POST /whatsapp/webhook form posts from the provider.
// The response is always empty TwiML: delivery problems on our side are
// not something the provider can fix by retrying.
func (h *WhatsAppHandler) Webhook(c echo.Context) error {
	msg := dto.InboundMessage{
		From:       c.FormValue("From"),
		Body:       c.FormValue("Body"),
		MessageSID: c.FormValue("MessageSid"),
	}

	if err := h.whatsapp.ReceiveMessage(c.Request().Context(), msg); err != nil {
		c.Logger().Errorf("whatsapp webhook: %v", err)
	}
	return c.XMLBlob(http.StatusOK, []byte(emptyTwiML))
}

// MarkRead handles POST /whatsapp/read/:id requests.
func (h *WhatsAppHandler) MarkRead(c echo.Context) error {
	if err := h.whatsapp.MarkRead(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return Error(c, http.StatusNotFound, "lead not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to mark lead as read")
	}
	return Success(c, http.StatusOK, "lead marked as read", nil)
}
