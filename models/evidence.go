package models

import "time"

// EvidenceType is the kind of evidence collected
type EvidenceType string

// Evidence types
const (
	EvidenceTypePhoto        EvidenceType = "photo"
	EvidenceTypeVideo        EvidenceType = "video"
	EvidenceTypeDocument     EvidenceType = "document"
	EvidenceTypePhysicalItem EvidenceType = "physical_item"
	EvidenceTypeDigitalData  EvidenceType = "digital_data"
	EvidenceTypeMeasurement  EvidenceType = "measurement"
	EvidenceTypeOther        EvidenceType = "other"
)

// Valid reports whether t is a known evidence type
func (t EvidenceType) Valid() bool {
	switch t {
	case EvidenceTypePhoto, EvidenceTypeVideo, EvidenceTypeDocument, EvidenceTypePhysicalItem,
		EvidenceTypeDigitalData, EvidenceTypeMeasurement, EvidenceTypeOther:
		return true
	}
	return false
}

// EvidenceSource is where a piece of evidence came from
type EvidenceSource string

// Evidence sources
const (
	SourceScene        EvidenceSource = "scene"
	SourceWitness      EvidenceSource = "witness"
	SourcePolice       EvidenceSource = "police"
	SourceVehicle      EvidenceSource = "vehicle"
	SourceSurveillance EvidenceSource = "surveillance"
	SourceOther        EvidenceSource = "other"
)

// Valid reports whether s is a known evidence source
func (s EvidenceSource) Valid() bool {
	switch s {
	case SourceScene, SourceWitness, SourcePolice, SourceVehicle, SourceSurveillance, SourceOther:
		return true
	}
	return false
}

// CustodyStatus is where an evidence item is in its chain of custody
type CustodyStatus string

// Custody statuses
const (
	CustodyCollected   CustodyStatus = "collected"
	CustodyInStorage   CustodyStatus = "in_storage"
	CustodyTransferred CustodyStatus = "transferred"
	CustodyAnalyzed    CustodyStatus = "analyzed"
	CustodyReleased    CustodyStatus = "released"
	CustodyDestroyed   CustodyStatus = "destroyed"
)

// Valid reports whether s is a known custody status
func (s CustodyStatus) Valid() bool {
	switch s {
	case CustodyCollected, CustodyInStorage, CustodyTransferred, CustodyAnalyzed, CustodyReleased, CustodyDestroyed:
		return true
	}
	return false
}

// CustodyEntry is one hand-over in the chain of custody. Entries are never
// edited or removed once written.
type CustodyEntry struct {
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	From      string    `json:"from" bson:"from"`
	To        string    `json:"to" bson:"to"`
	Reason    string    `json:"reason" bson:"reason"`
	Signature string    `json:"signature,omitempty" bson:"signature,omitempty"`
}

// Evidence holds the structure for the evidence collection
type Evidence struct {
	ID               string         `json:"_id" bson:"_id"`
	AccidentID       string         `json:"accidentID" bson:"accidentID" validate:"required"`
	EvidenceNumber   string         `json:"evidenceNumber" bson:"evidenceNumber" validate:"required"`
	Type             EvidenceType   `json:"type" bson:"type" validate:"enum"`
	Source           EvidenceSource `json:"source" bson:"source" validate:"enum"`
	Description      string         `json:"description" bson:"description" validate:"required"`
	CollectedBy      string         `json:"collectedBy" bson:"collectedBy" validate:"required"`
	CollectedAt      time.Time      `json:"collectedAt" bson:"collectedAt"`
	CustodyStatus    CustodyStatus  `json:"custodyStatus" bson:"custodyStatus" validate:"enum"`
	CurrentCustodian string         `json:"currentCustodian,omitempty" bson:"currentCustodian,omitempty"`
	ChainOfCustody   []CustodyEntry `json:"chainOfCustody" bson:"chainOfCustody"`
	CopyNumber       int            `json:"copyNumber" bson:"copyNumber" validate:"gte=1"`
	Priority         *int           `json:"priority,omitempty" bson:"priority,omitempty" validate:"omitempty,gte=1,lte=5"`
	IsAdmissible     bool           `json:"isAdmissible" bson:"isAdmissible"`
	AnalyzedDate     *time.Time     `json:"analyzedDate,omitempty" bson:"analyzedDate,omitempty"`
	AnalyzedBy       string         `json:"analyzedBy,omitempty" bson:"analyzedBy,omitempty"`
	Findings         string         `json:"findings,omitempty" bson:"findings,omitempty"`
	AnalysisNotes    string         `json:"analysisNotes,omitempty" bson:"analysisNotes,omitempty"`
	Tags             []string       `json:"tags" bson:"tags"`
	CreatedAt        time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt" bson:"updatedAt"`
	Version          int32          `json:"__v" bson:"__v"`
}
