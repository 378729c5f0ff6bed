package entity

import (
	"time"

	"github.com/google/uuid"
)

// LeadStatus is the lead's position in the sales pipeline.
type LeadStatus string

// Pipeline stages, in the order leads typically move through them.
const (
	StatusNew            LeadStatus = "new"
	StatusCleaned        LeadStatus = "cleaned"
	StatusContacted      LeadStatus = "contacted"
	StatusInConversation LeadStatus = "in_conversation"
	StatusScheduled      LeadStatus = "scheduled"
	StatusNoShow         LeadStatus = "no_show"
	StatusRescheduled    LeadStatus = "rescheduled"
	StatusEnrolled       LeadStatus = "enrolled"
	StatusNotEnrolled    LeadStatus = "not_enrolled"
)

var leadStatuses = map[LeadStatus]struct{}{
	StatusNew:            {},
	StatusCleaned:        {},
	StatusContacted:      {},
	StatusInConversation: {},
	StatusScheduled:      {},
	StatusNoShow:         {},
	StatusRescheduled:    {},
	StatusEnrolled:       {},
	StatusNotEnrolled:    {},
}

// Valid reports whether the status is one of the fixed pipeline stages.
func (s LeadStatus) Valid() bool {
	_, ok := leadStatuses[s]
	return ok
}

// LeadPriority ranks how actively a lead should be worked.
type LeadPriority string

const (
	PriorityHot  LeadPriority = "hot"
	PriorityWarm LeadPriority = "warm"
	PriorityCold LeadPriority = "cold"
)

// Valid reports whether the priority is a known value.
func (p LeadPriority) Valid() bool {
	return p == PriorityHot || p == PriorityWarm || p == PriorityCold
}

// MessageSender identifies which side of the conversation wrote a message.
type MessageSender string

const (
	SenderExecutive MessageSender = "executive"
	SenderProspect  MessageSender = "prospect"
)

// Valid reports whether the sender role is known.
func (s MessageSender) Valid() bool {
	return s == SenderExecutive || s == SenderProspect
}

// Message is one entry in a lead's conversation history. History is
// append-only and ordered by insertion; message IDs are ULIDs so the
// lexicographic order matches the chronological one.
type Message struct {
	ID        string        `json:"id"`
	Sender    MessageSender `json:"sender"`
	Content   string        `json:"content"`
	Timestamp time.Time     `json:"timestamp"`
}

// Lead is a prospective customer tracked through the pipeline.
type Lead struct {
	ID             uuid.UUID    `json:"id"`
	Name           string       `json:"name"`
	Phone          string       `json:"phone"`
	Email          string       `json:"email,omitempty"`
	Source         string       `json:"source"`
	Status         LeadStatus   `json:"status"`
	Priority       LeadPriority `json:"priority,omitempty"`
	Tags           []string     `json:"tags"`
	BusinessUnit   string       `json:"business_unit,omitempty"`
	InterestCycle  string       `json:"interest_cycle,omitempty"`
	Observations   string       `json:"observations,omitempty"`
	ScheduledAt    *time.Time   `json:"scheduled_at,omitempty"`
	HasUnread      bool         `json:"has_unread_messages"`
	History        []Message    `json:"history"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
