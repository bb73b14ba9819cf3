package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/accident-recon-api/databases"
	"github.com/linesmerrill/accident-recon-api/investigation"
	"github.com/linesmerrill/accident-recon-api/models"
)

var now = time.Date(2024, time.March, 14, 9, 30, 0, 0, time.UTC)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(toEmail, toName, subject, htmlContent, plainText string) error {
	args := m.Called(toEmail, toName, subject, htmlContent, plainText)
	return args.Error(0)
}

func newUser(t *testing.T, svc *investigation.Service, email, first string) models.User {
	t.Helper()
	u, err := svc.CreateUser(context.Background(), models.User{
		Email:     email,
		FirstName: first,
		LastName:  "Reyes",
		Role:      models.RoleInvestigator,
	}, "correct horse battery")
	require.NoError(t, err)
	return u
}

func newCase(t *testing.T, svc *investigation.Service, title, owner string, due time.Time) models.Case {
	t.Helper()
	c, err := svc.CreateCase(context.Background(), models.Case{Title: title, UserID: owner, DueDate: &due})
	require.NoError(t, err)
	return c
}

// seed creates two overdue cases for dana (one assigned to lee), plus cases
// that must not trigger a reminder
func seed(t *testing.T) *Scheduler {
	t.Helper()
	ctx := context.Background()
	svc := investigation.NewService(databases.NewMemoryStore(),
		investigation.WithClock(func() time.Time { return now }),
		investigation.WithPasswordCost(bcrypt.MinCost),
	)
	dana := newUser(t, svc, "dana@example.com", "Dana")
	lee := newUser(t, svc, "lee@example.com", "Lee")
	gone := newUser(t, svc, "gone@example.com", "Gone")

	first := newCase(t, svc, "Rear-end on Route 9", dana.ID, now.Add(-72*time.Hour))
	_, err := svc.AssignCase(ctx, first.ID, lee.ID)
	require.NoError(t, err)
	newCase(t, svc, "Side swipe", dana.ID, now.Add(-2*time.Hour))
	newCase(t, svc, "Not due yet", dana.ID, now.Add(24*time.Hour))
	closed := newCase(t, svc, "Already closed", dana.ID, now.Add(-24*time.Hour))
	_, err = svc.TransitionCaseStatus(ctx, closed.ID, models.CaseStatusClosed, "")
	require.NoError(t, err)
	newCase(t, svc, "Owner left", gone.ID, now.Add(-24*time.Hour))
	_, err = svc.DeactivateUser(ctx, gone.ID)
	require.NoError(t, err)

	s := NewScheduler(svc, "0 6 * * *", nil)
	s.now = func() time.Time { return now }
	return s
}

func TestScheduler_SweepOverdue(t *testing.T) {
	s := seed(t)
	mailer := &mockMailer{}
	mailer.On("Send", "dana@example.com", "Dana Reyes", "2 investigation cases are past due",
		mock.MatchedBy(func(html string) bool {
			return strings.Contains(html, "Rear-end on Route 9") &&
				strings.Contains(html, "Side swipe") &&
				strings.Contains(html, "3 days") &&
				!strings.Contains(html, "Not due yet")
		}), mock.Anything).Return(nil).Once()
	mailer.On("Send", "lee@example.com", "Lee Reyes", "1 investigation case is past due",
		mock.Anything, mock.Anything).Return(nil).Once()
	s.Mailer = mailer

	sent, err := s.SweepOverdue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	mailer.AssertExpectations(t)
}

func TestScheduler_SweepOverdueMailerFailure(t *testing.T) {
	s := seed(t)
	mailer := &mockMailer{}
	mailer.On("Send", "dana@example.com", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("mocked-error"))
	mailer.On("Send", "lee@example.com", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil)
	s.Mailer = mailer

	sent, err := s.SweepOverdue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestScheduler_SweepOverdueWithoutMailer(t *testing.T) {
	s := seed(t)

	sent, err := s.SweepOverdue(context.Background())

	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestScheduler_StartRejectsBadCronExpression(t *testing.T) {
	svc := investigation.NewService(databases.NewMemoryStore())
	s := NewScheduler(svc, "every now and then", nil)

	assert.Error(t, s.Start())
}

func TestScheduler_StartAndStop(t *testing.T) {
	svc := investigation.NewService(databases.NewMemoryStore())
	s := NewScheduler(svc, "@every 1h", nil)

	require.NoError(t, s.Start())
	s.Stop()
}
