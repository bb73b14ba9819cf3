package models

import "time"

// ClaimType is the coverage a claim is filed under
type ClaimType string

// Claim types
const (
	ClaimTypeCollision         ClaimType = "collision"
	ClaimTypeComprehensive     ClaimType = "comprehensive"
	ClaimTypeLiability         ClaimType = "liability"
	ClaimTypePersonalInjury    ClaimType = "personal_injury"
	ClaimTypePropertyDamage    ClaimType = "property_damage"
	ClaimTypeUninsuredMotorist ClaimType = "uninsured_motorist"
	ClaimTypeOther             ClaimType = "other"
)

// Valid reports whether t is a known claim type
func (t ClaimType) Valid() bool {
	switch t {
	case ClaimTypeCollision, ClaimTypeComprehensive, ClaimTypeLiability, ClaimTypePersonalInjury,
		ClaimTypePropertyDamage, ClaimTypeUninsuredMotorist, ClaimTypeOther:
		return true
	}
	return false
}

// ClaimStatus is the lifecycle state of an insurance claim
type ClaimStatus string

// Claim statuses
const (
	ClaimStatusDraft                  ClaimStatus = "draft"
	ClaimStatusSubmitted              ClaimStatus = "submitted"
	ClaimStatusUnderReview            ClaimStatus = "under_review"
	ClaimStatusAdditionalInfoRequired ClaimStatus = "additional_info_required"
	ClaimStatusApproved               ClaimStatus = "approved"
	ClaimStatusPartiallyApproved      ClaimStatus = "partially_approved"
	ClaimStatusDenied                 ClaimStatus = "denied"
	ClaimStatusAppealed               ClaimStatus = "appealed"
	ClaimStatusSettled                ClaimStatus = "settled"
	ClaimStatusClosed                 ClaimStatus = "closed"
)

// Valid reports whether s is a known claim status
func (s ClaimStatus) Valid() bool {
	switch s {
	case ClaimStatusDraft, ClaimStatusSubmitted, ClaimStatusUnderReview, ClaimStatusAdditionalInfoRequired,
		ClaimStatusApproved, ClaimStatusPartiallyApproved, ClaimStatusDenied, ClaimStatusAppealed,
		ClaimStatusSettled, ClaimStatusClosed:
		return true
	}
	return false
}

// Pending reports whether the insurer still owes a decision
func (s ClaimStatus) Pending() bool {
	switch s {
	case ClaimStatusSubmitted, ClaimStatusUnderReview, ClaimStatusAdditionalInfoRequired:
		return true
	}
	return false
}

// Resolved reports whether the claim has a decision or is finished
func (s ClaimStatus) Resolved() bool {
	switch s {
	case ClaimStatusApproved, ClaimStatusPartiallyApproved, ClaimStatusDenied, ClaimStatusSettled, ClaimStatusClosed:
		return true
	}
	return false
}

// ClaimDocument is a document attached to a claim
type ClaimDocument struct {
	Name       string    `json:"name" bson:"name"`
	URL        string    `json:"url" bson:"url"`
	Kind       string    `json:"kind,omitempty" bson:"kind,omitempty"`
	UploadedAt time.Time `json:"uploadedAt" bson:"uploadedAt"`
}

// Communication is a logged exchange with the insurer
type Communication struct {
	Channel string    `json:"channel" bson:"channel"`
	Author  string    `json:"author" bson:"author"`
	Message string    `json:"message" bson:"message"`
	SentAt  time.Time `json:"sentAt" bson:"sentAt"`
}

// Payment is one disbursement on a claim
type Payment struct {
	Amount    float64   `json:"amount" bson:"amount"`
	Reference string    `json:"reference,omitempty" bson:"reference,omitempty"`
	Method    string    `json:"method,omitempty" bson:"method,omitempty"`
	PaidAt    time.Time `json:"paidAt" bson:"paidAt"`
}

// InsuranceClaim holds the structure for the insuranceClaims collection. The
// status timestamps are owned by the claim state machine and written once.
type InsuranceClaim struct {
	ID              string          `json:"_id" bson:"_id"`
	CaseID          string          `json:"caseID" bson:"caseID" validate:"required"`
	ClaimNumber     string          `json:"claimNumber" bson:"claimNumber" validate:"required,max=50"`
	Type            ClaimType       `json:"type" bson:"type" validate:"enum"`
	Insurer         string          `json:"insurer" bson:"insurer" validate:"required,max=255"`
	PolicyNumber    string          `json:"policyNumber,omitempty" bson:"policyNumber,omitempty"`
	Status          ClaimStatus     `json:"status" bson:"status" validate:"enum"`
	Amount          float64         `json:"amount" bson:"amount" validate:"gt=0"`
	ApprovedAmount  *float64        `json:"approvedAmount,omitempty" bson:"approvedAmount,omitempty" validate:"omitempty,gte=0"`
	PaidAmount      *float64        `json:"paidAmount,omitempty" bson:"paidAmount,omitempty" validate:"omitempty,gte=0"`
	Deductible      *float64        `json:"deductible,omitempty" bson:"deductible,omitempty" validate:"omitempty,gte=0"`
	FiledDate       time.Time       `json:"filedDate" bson:"filedDate"`
	SubmittedDate   *time.Time      `json:"submittedDate,omitempty" bson:"submittedDate,omitempty"`
	ReviewStartDate *time.Time      `json:"reviewStartDate,omitempty" bson:"reviewStartDate,omitempty"`
	DecisionDate    *time.Time      `json:"decisionDate,omitempty" bson:"decisionDate,omitempty"`
	SettlementDate  *time.Time      `json:"settlementDate,omitempty" bson:"settlementDate,omitempty"`
	ClosedDate      *time.Time      `json:"closedDate,omitempty" bson:"closedDate,omitempty"`
	Documents       []ClaimDocument `json:"documents" bson:"documents"`
	Communications  []Communication `json:"communications" bson:"communications"`
	Payments        []Payment       `json:"payments" bson:"payments"`
	CreatedAt       time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt" bson:"updatedAt"`
	Version         int32           `json:"__v" bson:"__v"`
}

// IsPending reports whether the claim awaits the insurer
func (c InsuranceClaim) IsPending() bool {
	return c.Status.Pending()
}

// IsResolved reports whether the claim has been decided or finished
func (c InsuranceClaim) IsResolved() bool {
	return c.Status.Resolved()
}

// OutstandingAmount is what remains to be paid against the approved amount, or
// the claimed amount when nothing is approved yet. Never negative.
func (c InsuranceClaim) OutstandingAmount() float64 {
	base := c.Amount
	if c.ApprovedAmount != nil {
		base = *c.ApprovedAmount
	}
	paid := 0.0
	if c.PaidAmount != nil {
		paid = *c.PaidAmount
	}
	if base-paid < 0 {
		return 0
	}
	return base - paid
}

// RecoveryPercentage is the share of the claimed amount paid so far
func (c InsuranceClaim) RecoveryPercentage() float64 {
	if c.Amount == 0 || c.PaidAmount == nil {
		return 0
	}
	return *c.PaidAmount / c.Amount * 100
}
