package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/notify"
	"fintrack/internal/services"
)

// Overviews is the read side the digest needs.
type Overviews interface {
	Overview(ctx context.Context, userID string) (services.Overview, error)
}

// DigestJob mails each user with an email address their urgent tips.
type DigestJob struct {
	profiles ledger.ProfileStore
	finance  Overviews
	mailer   notify.Mailer
	logger   *log.Logger
}

func NewDigestJob(profiles ledger.ProfileStore, fin Overviews, mailer notify.Mailer, logger *log.Logger) *DigestJob {
	return &DigestJob{
		profiles: profiles,
		finance:  fin,
		mailer:   mailer,
		logger:   logger.WithComponent(log.ComponentDigest),
	}
}

// DigestReport counts the outcome of one run.
type DigestReport struct {
	Sent    int
	Skipped int
	Failed  int
}

// Run sends one digest per profile. Per-user failures are logged and
// counted; only a failure to list profiles aborts the run.
func (j *DigestJob) Run(ctx context.Context) (DigestReport, error) {
	var rep DigestReport
	profiles, err := j.profiles.ListProfiles(ctx)
	if err != nil {
		return rep, fmt.Errorf("list profiles: %w", err)
	}

	for _, p := range profiles {
		if ctx.Err() != nil {
			return rep, ctx.Err()
		}
		if strings.TrimSpace(p.Email) == "" {
			rep.Skipped++
			continue
		}
		ov, err := j.finance.Overview(ctx, p.UserID)
		if err != nil {
			rep.Failed++
			j.logger.ErrorContext(ctx, "Digest overview failed", log.FieldUserID, p.UserID, log.FieldError, err)
			continue
		}
		tips := notify.DigestTips(ov.Tips)
		if len(tips) == 0 {
			rep.Skipped++
			continue
		}
		msg, err := notify.Digest{Profile: p, Snapshot: ov.Snapshot, Tips: tips}.Render()
		if err == nil {
			err = j.mailer.Send(ctx, msg)
		}
		if err != nil {
			rep.Failed++
			j.logger.ErrorContext(ctx, "Digest delivery failed", log.FieldUserID, p.UserID, log.FieldError, err)
			continue
		}
		rep.Sent++
	}

	j.logger.InfoContext(ctx, "Digest run finished",
		log.FieldOperation, log.OpDigest,
		"sent", rep.Sent,
		"skipped", rep.Skipped,
		"failed", rep.Failed)
	return rep, nil
}

// Scheduler fires the digest on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	job     *DigestJob
	timeout time.Duration
	logger  *log.Logger
}

// NewScheduler parses a standard five-field cron expression.
func NewScheduler(schedule string, job *DigestJob, timeout time.Duration, logger *log.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		job:     job,
		timeout: timeout,
		logger:  logger.WithComponent(log.ComponentDigest),
	}
	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		return nil, fmt.Errorf("invalid digest schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.job.Run(ctx); err != nil {
		s.logger.Error("Digest run failed", log.FieldError, err)
	}
}

// Next reports when the digest fires next. Zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Digest scheduler started", "next_run", s.Next())
}

// Stop waits for a running digest to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("Digest still running at shutdown")
	}
}
