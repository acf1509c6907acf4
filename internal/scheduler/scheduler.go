// Package scheduler runs the periodic maintenance jobs: the daily streak
// sweep, daily quote-engagement archival, and weekly pulse-survey
// materialization. Jobs are idempotent; a failed run is logged and metered
// and the job simply fires again on its next tick.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/harborwell/wellness-backend/internal/domain"
	"github.com/harborwell/wellness-backend/internal/repo"
	"github.com/harborwell/wellness-backend/internal/services"
)

var (
	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_job_runs_total",
			Help: "Scheduler job executions by job and outcome.",
		},
		[]string{"job", "outcome"},
	)
	jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheduler_job_duration_seconds",
			Help:    "Scheduler job wall time.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)
)

func init() {
	prometheus.MustRegister(jobRuns, jobDuration)
}

// Job is one scheduled unit of work. Daily maintenance that depends on UTC
// day buckets sets AlignUTC so runs land shortly after midnight instead of
// drifting with process start time; Interval drives the other jobs.
type Job struct {
	Name     string
	Interval time.Duration
	AlignUTC bool
	Run      func(ctx context.Context) error
}

// Scheduler drives registered jobs on their own tickers.
type Scheduler struct {
	Wellness *services.WellnessService
	Quotes   *services.QuoteService
	DB       *gorm.DB
	Notify   services.Notifier
	Log      zerolog.Logger

	// QuoteRetentionDays defaults to 90.
	QuoteRetentionDays int

	jobs   []Job
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Register adds a custom job before Start.
func (s *Scheduler) Register(j Job) { s.jobs = append(s.jobs, j) }

// Start registers the standard jobs and launches one goroutine per job.
// Each job also runs once shortly after start so a restarted process does
// not wait a full interval for overdue maintenance.
func (s *Scheduler) Start() {
	s.Register(Job{Name: "streak_sweep", AlignUTC: true, Run: s.sweepStreaks})
	s.Register(Job{Name: "quote_archival", AlignUTC: true, Run: s.archiveQuotes})
	s.Register(Job{Name: "pulse_survey", Interval: 7 * 24 * time.Hour, Run: s.materializePulse})

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, j)
	}
}

// Stop cancels all job loops and waits for in-flight runs.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, j Job) {
	defer s.wg.Done()

	// initial run, staggered to let the process settle
	select {
	case <-time.After(10 * time.Second):
		s.runJob(ctx, j)
	case <-ctx.Done():
		return
	}

	if j.AlignUTC {
		for {
			select {
			case <-time.After(untilNextRunUTC(time.Now())):
				s.runJob(ctx, j)
			case <-ctx.Done():
				return
			}
		}
	}

	t := time.NewTicker(j.Interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.runJob(ctx, j)
		case <-ctx.Done():
			return
		}
	}
}

// untilNextRunUTC returns the delay to the next daily boundary at 00:05 UTC,
// a few minutes past midnight so day-bucket queries see the completed day.
func untilNextRunUTC(now time.Time) time.Duration {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 5, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

func (s *Scheduler) runJob(ctx context.Context, j Job) {
	start := time.Now()
	runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	err := j.Run(runCtx)
	cancel()
	jobDuration.WithLabelValues(j.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		jobRuns.WithLabelValues(j.Name, "error").Inc()
		s.Log.Error().Err(err).Str("job", j.Name).Msg("scheduler job failed")
		return
	}
	jobRuns.WithLabelValues(j.Name, "ok").Inc()
}

// sweepStreaks zeroes streaks for users whose last check-in predates
// yesterday and re-evaluates their risk.
func (s *Scheduler) sweepStreaks(ctx context.Context) error {
	reset, err := s.Wellness.SweepStreaks(ctx)
	if err != nil {
		return err
	}
	s.Log.Info().Int("reset", reset).Msg("streak sweep complete")
	return nil
}

// archiveQuotes flags quote engagements older than the retention window.
func (s *Scheduler) archiveQuotes(ctx context.Context) error {
	n, err := s.Quotes.ArchiveOld(ctx, s.QuoteRetentionDays)
	if err != nil {
		return err
	}
	s.Log.Info().Int64("archived", n).Msg("quote archival complete")
	return nil
}

// materializePulse notifies every eligible user who has not answered an
// active pulse survey in the last seven days. Re-running is harmless: users
// who answered since are excluded by the query.
func (s *Scheduler) materializePulse(ctx context.Context) error {
	var surveys []domain.Survey
	if err := s.DB.WithContext(ctx).
		Where("active = ? AND kind = ?", true, domain.SurveyKindPulse).
		Order("id asc").
		Find(&surveys).Error; err != nil {
		return err
	}
	since := time.Now().UTC().AddDate(0, 0, -7)
	notified := 0
	for _, sv := range surveys {
		userIDs, err := repo.UsersWithoutResponseSince(ctx, s.DB, sv.ID, since)
		if err != nil {
			return err
		}
		for _, uid := range userIDs {
			s.Notify.Notify(uid, services.NotifyPulseSurveyDue,
				"Pulse survey due",
				"Your weekly pulse survey \""+sv.Title+"\" is waiting.",
				map[string]any{"survey_id": sv.ID})
			notified++
		}
	}
	s.Log.Info().Int("notified", notified).Int("surveys", len(surveys)).Msg("pulse materialization complete")
	return nil
}
