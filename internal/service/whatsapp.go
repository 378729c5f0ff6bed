package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/liceolabs/prospect-crm/api/internal/dto"
	"github.com/liceolabs/prospect-crm/api/internal/entity"
	"github.com/liceolabs/prospect-crm/api/internal/repository"
	"github.com/liceolabs/prospect-crm/api/internal/service/cleaner"
)

// phoneSuffixLen is how many trailing digits are used to correlate an
// inbound message with a stored lead. Provider numbers carry country
// prefixes the stored form may lack, so only the suffix is comparable.
const phoneSuffixLen = 10

var (
	// ErrWhatsAppUnconfigured marks a send attempt without provider credentials.
	ErrWhatsAppUnconfigured = errors.New("whatsapp sender is not configured")
	// ErrLeadWithoutPhone marks a send attempt to a lead with no phone on file.
	ErrLeadWithoutPhone = errors.New("lead has no phone number")
)

// MessageSender delivers an outbound WhatsApp message. Implementations wrap
// the provider's HTTP API.
type MessageSender interface {
	Send(ctx context.Context, toE164, body string) error
}

// IdempotencyStore remembers provider message ids so redelivered webhooks
// are dropped instead of duplicated into the history.
type IdempotencyStore interface {
	// FirstSeen records the key and reports whether this was its first use.
	FirstSeen(ctx context.Context, key string) (bool, error)
}

// WhatsAppService coordinates outbound sends, inbound webhook correlation,
// and the unread flag.
type WhatsAppService struct {
	leads  repository.LeadsRepository
	sender MessageSender
	dedup  IdempotencyStore
	region string
}

// NewWhatsAppService wires the messaging service. sender and dedup may be
// nil: a nil sender makes SendMessage fail with ErrWhatsAppUnconfigured, a
// nil dedup disables webhook idempotency.
func NewWhatsAppService(leads repository.LeadsRepository, sender MessageSender, dedup IdempotencyStore, defaultRegion string) *WhatsAppService {
	region := strings.ToUpper(strings.TrimSpace(defaultRegion))
	if region == "" {
		region = defaultPhoneRegion
	}
	return &WhatsAppService{leads: leads, sender: sender, dedup: dedup, region: region}
}

// SendMessage delivers content to the lead's WhatsApp number and appends the
// executive message to the history.
func (s *WhatsAppService) SendMessage(ctx context.Context, leadID, content string) (*entity.Message, error) {
	if s.sender == nil {
		return nil, ErrWhatsAppUnconfigured
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, validationErrorf("message content is required")
	}

	lead, err := s.leads.GetByID(ctx, parseLeadID(leadID))
	if err != nil {
		return nil, err
	}
	if lead.Phone == "" {
		return nil, ErrLeadWithoutPhone
	}

	to := FormatE164(lead.Phone, s.region)
	if to == "" {
		return nil, validationErrorf("phone %q cannot be formatted for delivery", lead.Phone)
	}

	if err := s.sender.Send(ctx, to, content); err != nil {
		return nil, fmt.Errorf("send whatsapp message: %w", err)
	}

	return s.leads.AppendMessage(ctx, lead.ID, entity.Message{
		ID:      ulid.Make().String(),
		Sender:  entity.SenderExecutive,
		Content: content,
	})
}

// ReceiveMessage correlates an inbound webhook with a lead by phone suffix
// and appends the prospect message, raising the unread flag. An unmatched
// or replayed message is dropped silently: the provider retries on errors,
// and there is nothing useful to retry here.
func (s *WhatsAppService) ReceiveMessage(ctx context.Context, msg dto.InboundMessage) error {
	if s.dedup != nil && msg.MessageSID != "" {
		first, err := s.dedup.FirstSeen(ctx, msg.MessageSID)
		if err != nil {
			log.Printf("whatsapp dedup check failed, accepting message %s: %v", msg.MessageSID, err)
		} else if !first {
			return nil
		}
	}

	digits := cleaner.NormalizePhone(msg.From)
	if len(digits) > phoneSuffixLen {
		digits = digits[len(digits)-phoneSuffixLen:]
	}

	lead, err := s.leads.FindByPhoneSuffix(ctx, digits)
	if err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			log.Printf("inbound whatsapp message from unknown number (suffix %s), dropped", digits)
			return nil
		}
		return err
	}

	_, err = s.leads.AppendMessage(ctx, lead.ID, entity.Message{
		ID:      ulid.Make().String(),
		Sender:  entity.SenderProspect,
		Content: msg.Body,
	})
	return err
}

// MarkRead clears the lead's unread flag.
func (s *WhatsAppService) MarkRead(ctx context.Context, leadID string) error {
	read := false
	_, err := s.leads.Update(ctx, parseLeadID(leadID), repository.LeadPatch{HasUnread: &read})
	return err
}
