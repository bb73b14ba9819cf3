package models

import (
	"math"
	"time"
)

// CaseStatus is the lifecycle state of a case
type CaseStatus string

// Case statuses
const (
	CaseStatusDraft           CaseStatus = "draft"
	CaseStatusActive          CaseStatus = "active"
	CaseStatusUnderReview     CaseStatus = "under_review"
	CaseStatusPendingApproval CaseStatus = "pending_approval"
	CaseStatusCompleted       CaseStatus = "completed"
	CaseStatusArchived        CaseStatus = "archived"
	CaseStatusClosed          CaseStatus = "closed"
)

// CaseStatuses lists every case status in lifecycle order
var CaseStatuses = []CaseStatus{
	CaseStatusDraft,
	CaseStatusActive,
	CaseStatusUnderReview,
	CaseStatusPendingApproval,
	CaseStatusCompleted,
	CaseStatusArchived,
	CaseStatusClosed,
}

// Valid reports whether s is a known case status
func (s CaseStatus) Valid() bool {
	switch s {
	case CaseStatusDraft, CaseStatusActive, CaseStatusUnderReview, CaseStatusPendingApproval,
		CaseStatusCompleted, CaseStatusArchived, CaseStatusClosed:
		return true
	}
	return false
}

// Terminal reports whether entering s closes the case
func (s CaseStatus) Terminal() bool {
	return s == CaseStatusArchived || s == CaseStatusClosed
}

// Priority ranks how urgently a case is worked
type Priority string

// Case priorities
const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Priorities lists every priority from lowest to highest
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Valid reports whether p is a known priority
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// StatusChange records one case status transition
type StatusChange struct {
	From      CaseStatus `json:"from" bson:"from"`
	To        CaseStatus `json:"to" bson:"to"`
	Notes     string     `json:"notes,omitempty" bson:"notes,omitempty"`
	ChangedAt time.Time  `json:"changedAt" bson:"changedAt"`
}

// Case holds the structure for the cases collection. A case is the top-level
// investigation record and owns exactly one accident.
type Case struct {
	ID            string                 `json:"_id" bson:"_id"`
	CaseNumber    string                 `json:"caseNumber" bson:"caseNumber" validate:"required,max=32"`
	Title         string                 `json:"title" bson:"title" validate:"required,max=255"`
	Description   string                 `json:"description" bson:"description"`
	Status        CaseStatus             `json:"status" bson:"status" validate:"enum"`
	Priority      Priority               `json:"priority" bson:"priority" validate:"enum"`
	UserID        string                 `json:"userID" bson:"userID" validate:"required"`
	AssignedTo    string                 `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	DueDate       *time.Time             `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	ClosedAt      *time.Time             `json:"closedAt,omitempty" bson:"closedAt,omitempty"`
	Tags          []string               `json:"tags" bson:"tags"`
	Metadata      map[string]interface{} `json:"metadata" bson:"metadata"`
	StatusHistory []StatusChange         `json:"statusHistory" bson:"statusHistory"`
	CreatedAt     time.Time              `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt" bson:"updatedAt"`
	Version       int32                  `json:"__v" bson:"__v"`
}

// IsOverdue is true when a due date exists, has passed and the case is not closed
func (c Case) IsOverdue(now time.Time) bool {
	return c.DueDate != nil && c.DueDate.Before(now) && c.Status != CaseStatusClosed
}

// DaysOpen counts whole days, rounded up, from creation to closedAt or now
func (c Case) DaysOpen(now time.Time) int {
	end := now
	if c.ClosedAt != nil {
		end = *c.ClosedAt
	}
	d := end.Sub(c.CreatedAt)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}
