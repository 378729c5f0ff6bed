package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/liceolabs/prospect-crm/api/internal/entity"
)

var (
	// ErrLeadNotFound is returned for lookups, updates, and deletes against
	// an unknown lead id. Callers map it to a 404; it never indicates a
	// broken store.
	ErrLeadNotFound = errors.New("lead not found")

	// ErrStoreCorrupt is returned by the file backend when neither the
	// primary document nor its backup can be decoded. It is fatal on
	// purpose: papering over it with an empty store would silently lose data.
	ErrStoreCorrupt = errors.New("lead store corrupt")
)

// LeadPatch carries a partial update. Nil fields are left untouched.
// Conversation history is deliberately absent: it is append-only and can
// only grow through AppendMessage.
type LeadPatch struct {
	Name          *string
	Phone         *string
	Email         *string
	Source        *string
	Status        *entity.LeadStatus
	Priority      *entity.LeadPriority
	Tags          *[]string
	BusinessUnit  *string
	InterestCycle *string
	Observations  *string
	ScheduledAt   *time.Time
	ClearSchedule bool
	HasUnread     *bool
}

// LeadsRepository is the uniform store contract over leads. Two backends
// implement it: a JSON-file store with a single-generation backup and a
// PostgreSQL store. The backend is chosen once at startup and injected.
type LeadsRepository interface {
	GetAll(ctx context.Context) ([]entity.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Lead, error)
	// FindByPhoneSuffix returns the newest lead whose stored phone contains
	// the given digit string. Used to correlate inbound WhatsApp messages.
	FindByPhoneSuffix(ctx context.Context, digits string) (*entity.Lead, error)
	Create(ctx context.Context, lead *entity.Lead) (*entity.Lead, error)
	Update(ctx context.Context, id uuid.UUID, patch LeadPatch) (*entity.Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// AppendMessage adds one message to the lead's history. A message from
	// the prospect also raises the unread flag.
	AppendMessage(ctx context.Context, leadID uuid.UUID, msg entity.Message) (*entity.Message, error)
}

// applyPatch merges a patch into a lead in place and bumps UpdatedAt.
// Shared by both backends so partial-update semantics cannot drift.
func applyPatch(lead *entity.Lead, patch LeadPatch, now time.Time) {
	if patch.Name != nil {
		lead.Name = *patch.Name
	}
	if patch.Phone != nil {
		lead.Phone = *patch.Phone
	}
	if patch.Email != nil {
		lead.Email = *patch.Email
	}
	if patch.Source != nil {
		lead.Source = *patch.Source
	}
	if patch.Status != nil {
		lead.Status = *patch.Status
	}
	if patch.Priority != nil {
		lead.Priority = *patch.Priority
	}
	if patch.Tags != nil {
		lead.Tags = append([]string(nil), (*patch.Tags)...)
	}
	if patch.BusinessUnit != nil {
		lead.BusinessUnit = *patch.BusinessUnit
	}
	if patch.InterestCycle != nil {
		lead.InterestCycle = *patch.InterestCycle
	}
	if patch.Observations != nil {
		lead.Observations = *patch.Observations
	}
	if patch.ScheduledAt != nil {
		ts := *patch.ScheduledAt
		lead.ScheduledAt = &ts
	} else if patch.ClearSchedule {
		lead.ScheduledAt = nil
	}
	if patch.HasUnread != nil {
		lead.HasUnread = *patch.HasUnread
	}
	lead.UpdatedAt = now
}
