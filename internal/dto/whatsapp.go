package dto

// SendMessageRequest is the payload for an executive-sent WhatsApp message.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// InboundMessage carries the fields of interest from a Twilio webhook form
// post: the sender's WhatsApp number, the body, and the provider message id
// used for idempotent delivery.
type InboundMessage struct {
	From       string
	Body       string
	MessageSID string
}
