package lifecycle_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/accident-recon-api/lifecycle"
	"github.com/linesmerrill/accident-recon-api/models"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestTransitionCase_ClosedAtStampedOnce(t *testing.T) {
	for _, terminal := range []models.CaseStatus{models.CaseStatusClosed, models.CaseStatusArchived} {
		t.Run(string(terminal), func(t *testing.T) {
			c := models.Case{Status: models.CaseStatusActive, CreatedAt: t0}

			closed, err := lifecycle.TransitionCase(c, terminal, "done", t0.Add(time.Hour))
			require.NoError(t, err)
			require.NotNil(t, closed.ClosedAt)
			assert.Equal(t, t0.Add(time.Hour), *closed.ClosedAt)

			again, err := lifecycle.TransitionCase(closed, terminal, "", t0.Add(48*time.Hour))
			require.NoError(t, err)
			assert.Equal(t, t0.Add(time.Hour), *again.ClosedAt)

			reopened, err := lifecycle.TransitionCase(again, models.CaseStatusActive, "reopened", t0.Add(72*time.Hour))
			require.NoError(t, err)
			require.NotNil(t, reopened.ClosedAt, "leaving a closed status keeps closedAt")
			assert.Equal(t, t0.Add(time.Hour), *reopened.ClosedAt)
			assert.Len(t, reopened.StatusHistory, 3)
			assert.Nil(t, c.ClosedAt, "input must not change")
		})
	}
}

func TestTransitionCase_AnyToAny(t *testing.T) {
	for _, from := range models.CaseStatuses {
		for _, to := range models.CaseStatuses {
			out, err := lifecycle.TransitionCase(models.Case{Status: from}, to, "", t0)
			require.NoError(t, err)
			assert.Equal(t, to, out.Status)
			assert.Equal(t, to.Terminal(), out.ClosedAt != nil)
		}
	}
	_, err := lifecycle.TransitionCase(models.Case{}, "reopened", "", t0)
	var ve *models.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestTransitionCase_HistoryDoesNotAlias(t *testing.T) {
	c := models.Case{Status: models.CaseStatusDraft, StatusHistory: make([]models.StatusChange, 0, 4)}
	a, _ := lifecycle.TransitionCase(c, models.CaseStatusActive, "a", t0)
	b, _ := lifecycle.TransitionCase(c, models.CaseStatusClosed, "b", t0)
	assert.Equal(t, models.CaseStatusActive, a.StatusHistory[0].To)
	assert.Equal(t, models.CaseStatusClosed, b.StatusHistory[0].To)
}

func TestCase_DerivedFields(t *testing.T) {
	past := t0.Add(-24 * time.Hour)
	c := models.Case{Status: models.CaseStatusActive, DueDate: &past, CreatedAt: t0.Add(-36 * time.Hour)}
	assert.True(t, c.IsOverdue(t0))
	assert.Equal(t, 2, c.DaysOpen(t0))

	closed, err := lifecycle.TransitionCase(c, models.CaseStatusClosed, "", t0)
	require.NoError(t, err)
	assert.False(t, closed.IsOverdue(t0.Add(1000*time.Hour)))
	assert.Equal(t, 2, closed.DaysOpen(t0.Add(1000*time.Hour)))

	assert.False(t, models.Case{Status: models.CaseStatusActive}.IsOverdue(t0))
}

func TestTransitionClaim_StampsOnce(t *testing.T) {
	tests := []struct {
		status models.ClaimStatus
		field  func(c models.InsuranceClaim) *time.Time
	}{
		{models.ClaimStatusSubmitted, func(c models.InsuranceClaim) *time.Time { return c.SubmittedDate }},
		{models.ClaimStatusUnderReview, func(c models.InsuranceClaim) *time.Time { return c.ReviewStartDate }},
		{models.ClaimStatusApproved, func(c models.InsuranceClaim) *time.Time { return c.DecisionDate }},
		{models.ClaimStatusPartiallyApproved, func(c models.InsuranceClaim) *time.Time { return c.DecisionDate }},
		{models.ClaimStatusDenied, func(c models.InsuranceClaim) *time.Time { return c.DecisionDate }},
		{models.ClaimStatusSettled, func(c models.InsuranceClaim) *time.Time { return c.SettlementDate }},
		{models.ClaimStatusClosed, func(c models.InsuranceClaim) *time.Time { return c.ClosedDate }},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			first, err := lifecycle.TransitionClaim(models.InsuranceClaim{Status: models.ClaimStatusDraft}, tt.status, t0)
			require.NoError(t, err)
			require.NotNil(t, tt.field(first))
			assert.Equal(t, t0, *tt.field(first))

			second, err := lifecycle.TransitionClaim(first, tt.status, t0.Add(time.Hour))
			require.NoError(t, err)
			assert.Equal(t, t0, *tt.field(second))
		})
	}
}

func TestTransitionClaim_NoStampStatuses(t *testing.T) {
	for _, s := range []models.ClaimStatus{models.ClaimStatusDraft, models.ClaimStatusAdditionalInfoRequired, models.ClaimStatusAppealed} {
		out, err := lifecycle.TransitionClaim(models.InsuranceClaim{}, s, t0)
		require.NoError(t, err)
		assert.Nil(t, out.SubmittedDate)
		assert.Nil(t, out.ReviewStartDate)
		assert.Nil(t, out.DecisionDate)
		assert.Nil(t, out.SettlementDate)
		assert.Nil(t, out.ClosedDate)
	}
}

func TestClaim_DerivedFields(t *testing.T) {
	approved, paid := 800.0, 200.0
	c := models.InsuranceClaim{Amount: 1000, Status: models.ClaimStatusUnderReview}
	assert.True(t, c.IsPending())
	assert.False(t, c.IsResolved())
	assert.Equal(t, 1000.0, c.OutstandingAmount())
	assert.Equal(t, 0.0, c.RecoveryPercentage())

	c.ApprovedAmount, c.PaidAmount, c.Status = &approved, &paid, models.ClaimStatusApproved
	assert.True(t, c.IsResolved())
	assert.Equal(t, 600.0, c.OutstandingAmount())
	assert.Equal(t, 20.0, c.RecoveryPercentage())

	over := 900.0
	c.PaidAmount = &over
	assert.Equal(t, 0.0, c.OutstandingAmount())

	assert.Equal(t, 0.0, models.InsuranceClaim{PaidAmount: &paid}.RecoveryPercentage())
}

func TestRecordPayment(t *testing.T) {
	approved := 500.0
	c := models.InsuranceClaim{Amount: 1000, ApprovedAmount: &approved}

	c, err := lifecycle.RecordPayment(c, models.Payment{Amount: 300}, t0)
	require.NoError(t, err)
	assert.Equal(t, 300.0, *c.PaidAmount)
	assert.Equal(t, t0, c.Payments[0].PaidAt)

	_, err = lifecycle.RecordPayment(c, models.Payment{Amount: 250}, t0)
	var ve *models.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "paidAmount", ve.Field)

	c, err = lifecycle.RecordPayment(c, models.Payment{Amount: 200}, t0)
	require.NoError(t, err)
	assert.Equal(t, 500.0, *c.PaidAmount)
	assert.Len(t, c.Payments, 2)

	_, err = lifecycle.RecordPayment(c, models.Payment{Amount: 0}, t0)
	assert.Error(t, err)
}

func TestRecordPayment_WithoutApproval(t *testing.T) {
	c, err := lifecycle.RecordPayment(models.InsuranceClaim{Amount: 100}, models.Payment{Amount: 40}, t0)
	require.NoError(t, err)
	assert.Equal(t, 40.0, *c.PaidAmount)
}

func TestTransferCustody_AppendOnly(t *testing.T) {
	e := models.Evidence{CollectedBy: "Officer Lee", CustodyStatus: models.CustodyCollected, ChainOfCustody: []models.CustodyEntry{}}
	var snapshots []models.Evidence
	for i := 1; i <= 5; i++ {
		var err error
		e, err = lifecycle.TransferCustody(e, fmt.Sprintf("holder-%d", i), "transfer", "", t0.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		snapshots = append(snapshots, e)
	}
	require.Len(t, e.ChainOfCustody, 5)
	assert.Equal(t, "holder-5", e.CurrentCustodian)
	assert.Equal(t, models.CustodyTransferred, e.CustodyStatus)
	assert.Equal(t, "Officer Lee", e.ChainOfCustody[0].From)
	for i := 1; i < 5; i++ {
		assert.Equal(t, e.ChainOfCustody[i-1].To, e.ChainOfCustody[i].From)
	}
	for i, s := range snapshots {
		assert.Len(t, s.ChainOfCustody, i+1)
		assert.Equal(t, e.ChainOfCustody[:i+1], s.ChainOfCustody)
	}
}

func TestAddCustodyEntry_ExplicitFrom(t *testing.T) {
	e, err := lifecycle.AddCustodyEntry(models.Evidence{}, "Officer Lee", "Lab Tech Smith", "lab analysis", "sig", t0)
	require.NoError(t, err)
	assert.Equal(t, "Lab Tech Smith", e.CurrentCustodian)
	assert.Equal(t, "sig", e.ChainOfCustody[0].Signature)
	assert.Equal(t, models.CustodyStatus(""), e.CustodyStatus, "plain entries do not change custody status")

	_, err = lifecycle.AddCustodyEntry(e, "a", "", "r", "", t0)
	assert.Error(t, err)
}

func TestMarkAnalyzed_DoesNotTouchChain(t *testing.T) {
	e, err := lifecycle.TransferCustody(models.Evidence{CollectedBy: "Officer Lee"}, "Lab Tech Smith", "lab analysis", "", t0)
	require.NoError(t, err)

	analyzed, err := lifecycle.MarkAnalyzed(e, "Lab Tech Smith", "brake failure", "", t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, analyzed.ChainOfCustody, 1)
	assert.Equal(t, models.CustodyAnalyzed, analyzed.CustodyStatus)
	assert.Equal(t, "brake failure", analyzed.Findings)
	require.NotNil(t, analyzed.AnalyzedDate)
	assert.Equal(t, "Lab Tech Smith", analyzed.CurrentCustodian)
}

func TestSetCustodyStatus(t *testing.T) {
	e := models.Evidence{CustodyStatus: models.CustodyCollected, ChainOfCustody: []models.CustodyEntry{}}
	for _, status := range []models.CustodyStatus{models.CustodyTransferred, models.CustodyAnalyzed, "misplaced"} {
		_, err := lifecycle.SetCustodyStatus(e, status, t0)
		var verr *models.ValidationError
		require.True(t, errors.As(err, &verr), "status %s", status)
		assert.Equal(t, "custodyStatus", verr.Field)
	}

	stored, err := lifecycle.SetCustodyStatus(e, models.CustodyInStorage, t0)
	require.NoError(t, err)
	assert.Equal(t, models.CustodyInStorage, stored.CustodyStatus)
	assert.Equal(t, t0, stored.UpdatedAt)
	assert.Empty(t, stored.ChainOfCustody)

	same, err := lifecycle.SetCustodyStatus(stored, models.CustodyInStorage, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, t0, same.UpdatedAt, "unchanged status is a no-op")
}

func TestDocumentsAndCommunications(t *testing.T) {
	c, err := lifecycle.AddClaimDocument(models.InsuranceClaim{}, models.ClaimDocument{Name: "estimate.pdf"}, t0)
	require.NoError(t, err)
	c, err = lifecycle.AddClaimCommunication(c, models.Communication{Channel: "email", Message: "sent estimate"}, t0)
	require.NoError(t, err)
	assert.Len(t, c.Documents, 1)
	assert.Len(t, c.Communications, 1)
	assert.Equal(t, t0, c.Communications[0].SentAt)
}

func TestAccidentSeverity(t *testing.T) {
	assert.Equal(t, models.SeverityMinor, models.Accident{}.Severity())
	assert.Equal(t, models.SeverityModerate, models.Accident{Injuries: 2}.Severity())
	assert.Equal(t, models.SeveritySevere, models.Accident{Injuries: 3}.Severity())
	assert.Equal(t, models.SeverityFatal, models.Accident{Injuries: 0, Fatalities: 1}.Severity())
}

func TestVehicleKinematics(t *testing.T) {
	v := models.Vehicle{
		InitialPosition: &models.Position{X: 0, Y: 0, Heading: 350},
		FinalPosition:   &models.Position{X: 3, Y: 4, Heading: 20},
	}
	assert.Equal(t, 5.0, v.Displacement())
	assert.Equal(t, 30.0, v.HeadingChange())
	assert.Equal(t, 0.0, models.Vehicle{}.Displacement())
}
