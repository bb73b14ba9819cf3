package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/linesmerrill/accident-recon-api/api"
	"github.com/linesmerrill/accident-recon-api/investigation"
	"github.com/linesmerrill/accident-recon-api/models"
	templates "github.com/linesmerrill/accident-recon-api/templates/html"
)

// Scheduler runs the periodic overdue-case sweep
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	Svc      *investigation.Service
	Mailer   Mailer
	now      func() time.Time
}

// NewScheduler creates a scheduler that sweeps on the cron schedule. A nil mailer
// only logs what would have been sent.
func NewScheduler(svc *investigation.Service, schedule string, mailer Mailer) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		schedule: schedule,
		Svc:      svc,
		Mailer:   mailer,
		now:      time.Now,
	}
}

// Start registers the sweep and starts the cron loop
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runOverdueSweep); err != nil {
		zap.S().Errorw("failed to register overdue sweep job", "schedule", s.schedule, "error", err)
		return err
	}
	s.cron.Start()
	zap.S().Infow("Overdue case scheduler started", "schedule", s.schedule)
	return nil
}

// Stop waits for a running sweep to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Overdue case scheduler stopped")
}

func (s *Scheduler) runOverdueSweep() {
	ctx, cancel := api.WithSweepTimeout(context.Background())
	defer cancel()

	sent, err := s.SweepOverdue(ctx)
	if err != nil {
		zap.S().Errorw("overdue sweep failed", "error", err)
		return
	}
	zap.S().Infow("overdue sweep finished", "remindersSent", sent)
}

type recipient struct {
	user  models.User
	cases []templates.OverdueCase
}

// SweepOverdue sends one reminder to every active owner or assignee of an
// overdue case and returns how many were delivered
func (s *Scheduler) SweepOverdue(ctx context.Context) (int, error) {
	cases, err := s.Svc.OverdueCases(ctx)
	if err != nil {
		return 0, err
	}
	if len(cases) == 0 {
		zap.S().Debug("no overdue cases")
		return 0, nil
	}

	now := s.now().UTC()
	var order []string
	byUser := map[string]*recipient{}
	for _, c := range cases {
		row := templates.OverdueCase{
			CaseNumber:  c.CaseNumber,
			Title:       c.Title,
			DueDate:     *c.DueDate,
			DaysOverdue: max(1, int(now.Sub(*c.DueDate)/(24*time.Hour))),
		}
		ids := []string{c.UserID}
		if c.AssignedTo != "" && c.AssignedTo != c.UserID {
			ids = append(ids, c.AssignedTo)
		}
		for _, id := range ids {
			if r, ok := byUser[id]; ok {
				r.cases = append(r.cases, row)
				continue
			}
			u, err := s.Svc.Repos().Users.FindByID(ctx, id)
			if err != nil {
				zap.S().Debugw("skipping reminder for unknown user", "userID", id, "caseNumber", c.CaseNumber, "error", err)
				continue
			}
			if !u.IsActive {
				continue
			}
			byUser[id] = &recipient{user: u, cases: []templates.OverdueCase{row}}
			order = append(order, id)
		}
	}

	sent := 0
	for _, id := range order {
		r := byUser[id]
		subject := templates.OverdueSubject(len(r.cases))
		if s.Mailer == nil {
			zap.S().Infow("overdue reminder not sent, no mailer configured", "userID", id, "cases", len(r.cases))
			continue
		}
		name := r.user.FullName()
		err := s.Mailer.Send(r.user.Email, name, subject,
			templates.RenderOverdueCasesEmail(name, r.cases),
			templates.RenderOverdueCasesText(name, r.cases))
		if err != nil {
			zap.S().Errorw("failed to send overdue reminder", "userID", id, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}
