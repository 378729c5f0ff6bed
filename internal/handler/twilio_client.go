package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioClient sends WhatsApp messages through Twilio's Messages API.
type TwilioClient struct {
	client     *http.Client
	baseURL    string
	accountSID string
	authToken  string
	from       string
}

// NewTwilioClient builds a sender for the given account. from is the
// sandbox or business WhatsApp number, without the "whatsapp:" prefix.
func NewTwilioClient(client *http.Client, accountSID, authToken, from string) *TwilioClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &TwilioClient{
		client:     client,
		baseURL:    twilioAPIBase,
		accountSID: accountSID,
		authToken:  authToken,
		from:       strings.TrimPrefix(from, "whatsapp:"),
	}
}

// Send posts a form-encoded message create request and surfaces Twilio's
// error message on failure.
func (c *TwilioClient) Send(ctx context.Context, toE164, body string) error {
	form := url.Values{}
	form.Set("From", "whatsapp:"+c.from)
	form.Set("To", "whatsapp:"+toE164)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build twilio request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("twilio error: %s", extractTwilioError(resp.Body))
	}
	return nil
}

func extractTwilioError(body io.Reader) string {
	var payload struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil || payload.Message == "" {
		return "unknown error"
	}
	if payload.Code != 0 {
		return fmt.Sprintf("%s (code %d)", payload.Message, payload.Code)
	}
	return payload.Message
}
