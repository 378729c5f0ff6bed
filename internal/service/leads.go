package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/liceolabs/prospect-crm/api/internal/dto"
	"github.com/liceolabs/prospect-crm/api/internal/entity"
	"github.com/liceolabs/prospect-crm/api/internal/repository"
	"github.com/liceolabs/prospect-crm/api/internal/service/cleaner"
	"github.com/liceolabs/prospect-crm/api/internal/service/importer"
)

const minPhoneDigits = 10

// LeadsService exposes the operations of the lead pipeline: CRUD with
// validation, the bulk import run, and the scheduled-appointment window.
type LeadsService struct {
	repo repository.LeadsRepository
}

// ImportSummary reports how many rows became leads during an import run.
type ImportSummary struct {
	Added      int
	Duplicates int
	Total      int
	Warnings   []string
}

// NewLeadsService creates a new instance of LeadsService.
func NewLeadsService(repo repository.LeadsRepository) *LeadsService {
	return &LeadsService{repo: repo}
}

// parseLeadID maps malformed ids onto uuid.Nil, which no stored lead ever
// carries, so lookups fail with the not-found sentinel.
func parseLeadID(id string) uuid.UUID {
	leadID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil
	}
	return leadID
}

// ListLeads returns every lead with history attached.
func (s *LeadsService) ListLeads(ctx context.Context) ([]entity.Lead, error) {
	return s.repo.GetAll(ctx)
}

// GetLead returns one lead by its string id.
func (s *LeadsService) GetLead(ctx context.Context, id string) (*entity.Lead, error) {
	leadID, err := uuid.Parse(id)
	if err != nil {
		return nil, repository.ErrLeadNotFound
	}
	return s.repo.GetByID(ctx, leadID)
}

// CreateLead validates and persists a manually registered lead.
func (s *LeadsService) CreateLead(ctx context.Context, req dto.CreateLeadRequest) (*entity.Lead, error) {
	name := cleaner.NormalizeName(req.Name)
	if name == "" {
		return nil, validationErrorf("name is required")
	}

	phone := cleaner.NormalizePhone(req.Phone)
	if phone != "" && len(phone) < minPhoneDigits {
		return nil, validationErrorf("phone must have at least %d digits", minPhoneDigits)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != "" && !ValidEmail(email) {
		return nil, validationErrorf("email %q is not a valid address", email)
	}

	status := entity.StatusNew
	if req.Status != "" {
		status = entity.LeadStatus(req.Status)
		if !status.Valid() {
			return nil, validationErrorf("unknown status %q", req.Status)
		}
	}

	priority := entity.PriorityWarm
	if req.Priority != "" {
		priority = entity.LeadPriority(req.Priority)
		if !priority.Valid() {
			return nil, validationErrorf("unknown priority %q", req.Priority)
		}
	}

	if req.BusinessUnit != "" && !entity.KnownBusinessUnit(req.BusinessUnit) {
		return nil, validationErrorf("unknown business unit %q", req.BusinessUnit)
	}

	lead := &entity.Lead{
		Name:          name,
		Phone:         phone,
		Email:         email,
		Source:        strings.TrimSpace(req.Source),
		Status:        status,
		Priority:      priority,
		Tags:          req.Tags,
		BusinessUnit:  req.BusinessUnit,
		InterestCycle: strings.TrimSpace(req.InterestCycle),
		Observations:  strings.TrimSpace(req.Observations),
	}
	if lead.Source == "" {
		lead.Source = "Manual"
	}
	return s.repo.Create(ctx, lead)
}

// UpdateLead applies a validated partial patch.
func (s *LeadsService) UpdateLead(ctx context.Context, id string, req dto.UpdateLeadRequest) (*entity.Lead, error) {
	leadID, err := uuid.Parse(id)
	if err != nil {
		return nil, repository.ErrLeadNotFound
	}

	var patch repository.LeadPatch

	if req.Name != nil {
		name := cleaner.NormalizeName(*req.Name)
		if name == "" {
			return nil, validationErrorf("name cannot be empty")
		}
		patch.Name = &name
	}
	if req.Phone != nil {
		phone := cleaner.NormalizePhone(*req.Phone)
		if phone != "" && len(phone) < minPhoneDigits {
			return nil, validationErrorf("phone must have at least %d digits", minPhoneDigits)
		}
		patch.Phone = &phone
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != "" && !ValidEmail(email) {
			return nil, validationErrorf("email %q is not a valid address", email)
		}
		patch.Email = &email
	}
	if req.Source != nil {
		source := strings.TrimSpace(*req.Source)
		patch.Source = &source
	}
	if req.Status != nil {
		status := entity.LeadStatus(*req.Status)
		if !status.Valid() {
			return nil, validationErrorf("unknown status %q", *req.Status)
		}
		patch.Status = &status
	}
	if req.Priority != nil {
		priority := entity.LeadPriority(*req.Priority)
		if !priority.Valid() {
			return nil, validationErrorf("unknown priority %q", *req.Priority)
		}
		patch.Priority = &priority
	}
	if req.Tags != nil {
		patch.Tags = req.Tags
	}
	if req.BusinessUnit != nil {
		unit := strings.TrimSpace(*req.BusinessUnit)
		if unit != "" && !entity.KnownBusinessUnit(unit) {
			return nil, validationErrorf("unknown business unit %q", unit)
		}
		patch.BusinessUnit = &unit
	}
	if req.InterestCycle != nil {
		cycle := strings.TrimSpace(*req.InterestCycle)
		patch.InterestCycle = &cycle
	}
	if req.Observations != nil {
		obs := strings.TrimSpace(*req.Observations)
		patch.Observations = &obs
	}
	if req.ScheduledAt != nil {
		patch.ScheduledAt = req.ScheduledAt
	} else if req.ClearSchedule {
		patch.ClearSchedule = true
	}

	return s.repo.Update(ctx, leadID, patch)
}

// DeleteLead removes a lead and its conversation history.
func (s *LeadsService) DeleteLead(ctx context.Context, id string) error {
	leadID, err := uuid.Parse(id)
	if err != nil {
		return repository.ErrLeadNotFound
	}
	return s.repo.Delete(ctx, leadID)
}

// ListScheduled returns leads whose appointment falls inside [from, to].
// Zero bounds leave that side of the window open.
func (s *LeadsService) ListScheduled(ctx context.Context, from, to time.Time) ([]entity.Lead, error) {
	leads, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	scheduled := make([]entity.Lead, 0)
	for _, lead := range leads {
		if lead.ScheduledAt == nil {
			continue
		}
		at := *lead.ScheduledAt
		if !from.IsZero() && at.Before(from) {
			continue
		}
		if !to.IsZero() && at.After(to) {
			continue
		}
		scheduled = append(scheduled, lead)
	}
	return scheduled, nil
}

// ImportLeads runs the normalization pipeline over extracted rows: sniff the
// columns, normalize name and phone, skip duplicates against both the stored
// leads and the rows already accepted in this batch, and persist the rest.
// Duplicates are counted, never treated as errors.
func (s *LeadsService) ImportLeads(ctx context.Context, rows []importer.Row) (ImportSummary, error) {
	existing, err := s.repo.GetAll(ctx)
	if err != nil {
		return ImportSummary{}, err
	}
	index := cleaner.NewDuplicateIndex(existing)

	summary := ImportSummary{Total: len(rows)}
	for i, row := range rows {
		candidate := importer.Extract(row)
		summary.Warnings = append(summary.Warnings, candidate.Warnings...)

		lead := entity.Lead{
			Name:     cleaner.NormalizeName(candidate.Name),
			Phone:    cleaner.NormalizePhone(candidate.Phone),
			Email:    strings.ToLower(strings.TrimSpace(candidate.Email)),
			Source:   candidate.Source,
			Status:   entity.StatusNew,
			Priority: entity.PriorityWarm,
		}

		// Rows that resolve to no contact fields are still imported, but the
		// operator gets a warning for each so they can be cleaned up.
		if lead.Name == "" && lead.Email == "" && lead.Phone == "" {
			if row.Empty() {
				summary.Warnings = append(summary.Warnings, fmt.Sprintf("row %d is empty; imported as an empty lead", i+1))
			} else {
				summary.Warnings = append(summary.Warnings, fmt.Sprintf("row %d resolved to an empty lead after normalization", i+1))
			}
		}

		if index.Seen(lead.Email, lead.Phone) {
			summary.Duplicates++
			continue
		}

		if _, err := s.repo.Create(ctx, &lead); err != nil {
			return summary, err
		}
		index.Add(lead.Email, lead.Phone)
		summary.Added++
	}
	return summary, nil
}
