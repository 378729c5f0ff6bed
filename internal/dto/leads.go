package dto

import "time"

// CreateLeadRequest captures a manually registered lead.
type CreateLeadRequest struct {
	Name          string   `json:"name"`
	Phone         string   `json:"phone"`
	Email         string   `json:"email"`
	Source        string   `json:"source"`
	Status        string   `json:"status"`
	Priority      string   `json:"priority"`
	Tags          []string `json:"tags"`
	BusinessUnit  string   `json:"business_unit"`
	InterestCycle string   `json:"interest_cycle"`
	Observations  string   `json:"observations"`
}

// UpdateLeadRequest captures partial lead updates; absent fields stay
// untouched, and an explicit null scheduled_at clears the appointment.
type UpdateLeadRequest struct {
	Name          *string    `json:"name,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	Email         *string    `json:"email,omitempty"`
	Source        *string    `json:"source,omitempty"`
	Status        *string    `json:"status,omitempty"`
	Priority      *string    `json:"priority,omitempty"`
	Tags          *[]string  `json:"tags,omitempty"`
	BusinessUnit  *string    `json:"business_unit,omitempty"`
	InterestCycle *string    `json:"interest_cycle,omitempty"`
	Observations  *string    `json:"observations,omitempty"`
	ScheduledAt   *time.Time `json:"scheduled_at,omitempty"`
	ClearSchedule bool       `json:"clear_schedule,omitempty"`
}

// ImportSummaryResponse reports the outcome of a bulk lead import.
type ImportSummaryResponse struct {
	Added      int      `json:"added"`
	Duplicates int      `json:"duplicates"`
	Total      int      `json:"total"`
	Warnings   []string `json:"warnings,omitempty"`
}
