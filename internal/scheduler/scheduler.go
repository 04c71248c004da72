package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/barnmonitor/internal/apperrors"
	"github.com/mamadbah2/barnmonitor/internal/config"
	"github.com/mamadbah2/barnmonitor/internal/domain/models"
	"github.com/mamadbah2/barnmonitor/internal/repository/mongodb"
	"github.com/mamadbah2/barnmonitor/internal/service/whatsapp"
	"github.com/mamadbah2/barnmonitor/internal/session"
)

// Reporter produces the dashboard figures and the weekly text.
type Reporter interface {
	Summary(ctx context.Context) (*models.DashboardSummary, error)
	WeeklyReport(ctx context.Context, end time.Time) (string, error)
}

// SessionRestorer revalidates the stored session against the API.
type SessionRestorer interface {
	RestoreSession(ctx context.Context) (*models.Session, error)
}

// Deps groups the collaborators of the scheduled jobs. Snapshots and Messaging may be nil.
type Deps struct {
	Reporter  Reporter
	Sessions  SessionRestorer
	Store     session.Store
	Snapshots mongodb.Repository
	Messaging whatsapp.MessagingService
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron   *cron.Cron
	deps   Deps
	cfg    config.ReportingConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewScheduler creates a new scheduler instance running jobs in the configured timezone.
func NewScheduler(cfg config.ReportingConfig, deps Deps, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		deps:   deps,
		cfg:    cfg,
		logger: logger,
		now:    func() time.Time { return time.Now().In(loc) },
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler")

	if _, err := s.cron.AddFunc(s.cfg.SessionCheckSchedule, s.run("session check", s.RevalidateSession)); err != nil {
		return fmt.Errorf("schedule session check: %w", err)
	}

	if s.deps.Snapshots != nil {
		if _, err := s.cron.AddFunc(s.cfg.SnapshotSchedule, s.run("dashboard snapshot", s.SnapshotDashboard)); err != nil {
			return fmt.Errorf("schedule dashboard snapshot: %w", err)
		}
	} else {
		s.logger.Info("snapshot store not configured, dashboard snapshots disabled")
	}

	if s.deps.Messaging != nil {
		if _, err := s.cron.AddFunc(s.cfg.WeeklyReportSchedule, s.run("weekly report", s.SendWeeklyReport)); err != nil {
			return fmt.Errorf("schedule weekly report: %w", err)
		}
	} else {
		s.logger.Info("whatsapp not configured, weekly report disabled")
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// RevalidateSession asks the API whether the stored session is still valid.
func (s *Scheduler) RevalidateSession(ctx context.Context) error {
	current, err := s.deps.Store.Get()
	if err != nil || current == nil {
		return err
	}

	restored, err := s.deps.Sessions.RestoreSession(ctx)
	if err != nil {
		return err
	}
	if restored == nil {
		s.logger.Info("stored session no longer valid, cleared", zap.Int("farmer_id", current.UserID()))
	}
	return nil
}

// SnapshotDashboard stores today's dashboard figures.
func (s *Scheduler) SnapshotDashboard(ctx context.Context) error {
	summary, err := s.deps.Reporter.Summary(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoSession) {
			s.logger.Debug("no session, snapshot skipped")
			return nil
		}
		return err
	}

	now := s.now()
	snapshot := models.DashboardSnapshot{
		Date:      mongodb.SnapshotDay(now),
		Summary:   *summary,
		CreatedAt: now.UTC(),
	}
	if err := s.deps.Snapshots.SaveDashboardSnapshot(ctx, snapshot); err != nil {
		return err
	}

	s.logger.Info("dashboard snapshot saved", zap.Int("farmer_id", summary.FarmerID))
	return nil
}

// SendWeeklyReport sends the weekly summary to the logged in farmer's phone.
func (s *Scheduler) SendWeeklyReport(ctx context.Context) error {
	current, err := s.deps.Store.Get()
	if err != nil {
		return err
	}
	if current == nil {
		s.logger.Debug("no session, weekly report skipped")
		return nil
	}
	if current.User.Phone == "" {
		s.logger.Warn("farmer has no phone number, weekly report skipped", zap.Int("farmer_id", current.UserID()))
		return nil
	}

	report, err := s.deps.Reporter.WeeklyReport(ctx, s.now())
	if err != nil {
		return err
	}

	req := models.OutboundMessageRequest{
		To:      current.User.Phone,
		Message: report,
	}
	if err := s.deps.Messaging.SendOutbound(ctx, req); err != nil {
		return err
	}

	s.logger.Info("weekly report sent successfully", zap.Int("farmer_id", current.UserID()))
	return nil
}

func (s *Scheduler) run(name string, job func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := job(ctx); err != nil {
			s.logger.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
		}
	}
}
