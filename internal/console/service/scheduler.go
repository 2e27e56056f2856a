package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/specter/internal/console/domain"
	"github.com/aussiebroadwan/specter/internal/console/store"
	"github.com/aussiebroadwan/specter/pkg/entra"
	"github.com/aussiebroadwan/specter/pkg/slogx"
)

const (
	DefaultPollInterval    = 5 * time.Minute
	DefaultExpiryThreshold = 10 * time.Minute

	historySize         = 100
	defaultHistoryLimit = 20
)

var (
	ErrSchedulerRunning    = errors.New("scheduler already running")
	ErrSchedulerNotRunning = errors.New("scheduler not running")
	ErrInvalidConfig       = errors.New("interval and threshold must be positive")
)

type SchedulerConfig struct {
	Interval  time.Duration `json:"interval"`
	Threshold time.Duration `json:"threshold"`
}

func (c SchedulerConfig) withDefaults() SchedulerConfig {
	if c.Interval <= 0 {
		c.Interval = DefaultPollInterval
	}
	if c.Threshold <= 0 {
		c.Threshold = DefaultExpiryThreshold
	}
	return c
}

type SchedulerDeps struct {
	Store    store.Store
	Exchange *ExchangeService
	Locator  *RefreshLocator
	Logger   *slog.Logger
	Now      func() time.Time
}

// TickReport summarises one pass over the expiring tokens.
type TickReport struct {
	StartedAt  time.Time              `json:"started_at"`
	Duration   time.Duration          `json:"duration"`
	Candidates int                    `json:"candidates"`
	Refreshed  int                    `json:"refreshed"`
	Failed     int                    `json:"failed"`
	Superseded int                    `json:"superseded,omitempty"`
	Results    []domain.RefreshResult `json:"results,omitempty"`
	Aborted    bool                   `json:"aborted,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

type SchedulerStatus struct {
	Running        bool            `json:"running"`
	Config         SchedulerConfig `json:"config"`
	LastRunAt      *time.Time      `json:"last_run_at,omitempty"`
	NextRunAt      *time.Time      `json:"next_run_at,omitempty"`
	LastReport     *TickReport     `json:"last_report,omitempty"`
	Ticks          int             `json:"ticks"`
	TotalRefreshed int             `json:"total_refreshed"`
	TotalFailed    int             `json:"total_failed"`
}

// Scheduler refreshes access tokens shortly before they expire. It is built
// explicitly and owned by the application; Start and Stop may be called
// repeatedly.
type Scheduler struct {
	deps SchedulerDeps
	log  *slog.Logger

	// tickMu serialises ticks. Timer ticks skip when it is held, TriggerNow
	// waits for it.
	tickMu sync.Mutex

	mu         sync.Mutex
	cfg        SchedulerConfig
	running    bool
	stopCh     chan struct{}
	doneCh     chan struct{}
	reschedule chan struct{}
	lastRunAt  *time.Time
	nextRunAt  *time.Time
	lastReport *TickReport
	ticks      int
	refreshed  int
	failed     int
	history    ring
}

func NewScheduler(deps SchedulerDeps, cfg SchedulerConfig) *Scheduler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		deps: deps,
		log:  log.With("component", "scheduler"),
		cfg:  cfg.withDefaults(),
	}
}

func (s *Scheduler) now() time.Time {
	if s.deps.Now != nil {
		return s.deps.Now().UTC()
	}
	return time.Now().UTC()
}

// Start launches the timer goroutine.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrSchedulerRunning
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.reschedule = make(chan struct{}, 1)
	next := s.now().Add(s.cfg.Interval)
	s.nextRunAt = &next

	go s.run(s.stopCh, s.doneCh, s.reschedule)

	s.record(domain.EventSchedulerStarted,
		fmt.Sprintf("scheduler started (interval %s, threshold %s)", s.cfg.Interval, s.cfg.Threshold),
		s.cfg)
	s.log.Info("scheduler started", "interval", s.cfg.Interval, "threshold", s.cfg.Threshold)
	return nil
}

// Stop halts the timer and waits for an in-flight tick to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.running = false
	stop, done := s.stopCh, s.doneCh
	s.nextRunAt = nil
	s.mu.Unlock()

	close(stop)
	<-done

	s.mu.Lock()
	s.record(domain.EventSchedulerStopped, "scheduler stopped", nil)
	s.mu.Unlock()
	s.log.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) run(stop <-chan struct{}, done chan<- struct{}, reschedule <-chan struct{}) {
	defer close(done)

	timer := time.NewTimer(s.interval())
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-reschedule:
			timer.Reset(s.armNext())
		case <-timer.C:
			if s.tickMu.TryLock() {
				s.tick(context.Background())
				s.tickMu.Unlock()
			} else {
				s.log.Debug("tick skipped, previous tick still running")
			}
			timer.Reset(s.armNext())
		}
	}
}

func (s *Scheduler) interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Interval
}

// armNext records the next run and returns the delay until it.
func (s *Scheduler) armNext() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.now().Add(s.cfg.Interval)
	s.nextRunAt = &next
	return s.cfg.Interval
}

// TriggerNow runs one tick synchronously, waiting for any tick in flight.
func (s *Scheduler) TriggerNow(ctx context.Context) TickReport {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	return s.tick(ctx)
}

func (s *Scheduler) tick(ctx context.Context) TickReport {
	ctx = slogx.WithContext(ctx, s.log)
	start := s.now()
	report := TickReport{StartedAt: start}

	s.mu.Lock()
	threshold := s.cfg.Threshold
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return s.abort(report, err)
	}

	candidates, err := s.deps.Store.Tokens().ListExpiring(ctx, start, start.Add(threshold))
	if err != nil {
		return s.abort(report, err)
	}

	report.Candidates = len(candidates)
	horizon := start.Add(threshold)
	for _, tok := range candidates {
		replaced, err := s.supersede(ctx, tok, horizon)
		if err != nil {
			return s.abort(report, err)
		}
		if replaced {
			report.Superseded++
			continue
		}

		res := s.refresh(ctx, tok)
		if res.OK() {
			report.Refreshed++
		} else {
			report.Failed++
		}
		report.Results = append(report.Results, res)
	}
	report.Duration = s.now().Sub(start)

	s.mu.Lock()
	s.finish(report)
	s.record(domain.EventCheckComplete,
		fmt.Sprintf("checked %d expiring tokens: %d refreshed, %d failed, %d already replaced",
			report.Candidates, report.Refreshed, report.Failed, report.Superseded),
		report)
	s.mu.Unlock()

	s.log.Info("expiry check complete",
		"candidates", report.Candidates,
		"refreshed", report.Refreshed,
		"failed", report.Failed,
		"superseded", report.Superseded,
	)
	return report
}

func (s *Scheduler) abort(report TickReport, err error) TickReport {
	report.Aborted = true
	report.Error = err.Error()
	report.Duration = s.now().Sub(report.StartedAt)

	s.mu.Lock()
	s.finish(report)
	s.record(domain.EventCheckAborted, "expiry check aborted: "+err.Error(), report)
	s.mu.Unlock()

	s.log.Warn("expiry check aborted", "error", err)
	return report
}

// finish must be called with s.mu held.
func (s *Scheduler) finish(report TickReport) {
	at := report.StartedAt
	s.lastRunAt = &at
	s.lastReport = &report
	s.ticks++
	s.refreshed += report.Refreshed
	s.failed += report.Failed
}

// supersede reports whether tok already has a replacement for the same
// identity, client and audience that outlives horizon. An active tok hands
// the active pointer to that replacement.
func (s *Scheduler) supersede(ctx context.Context, tok domain.Token, horizon time.Time) (bool, error) {
	if tok.UPN == "" {
		return false, nil
	}
	newer, err := s.deps.Store.Tokens().ListTokens(ctx, store.TokenFilter{
		Kind:         domain.KindAccessToken,
		UPN:          tok.UPN,
		ClientID:     tok.ClientID,
		Audience:     tok.Audience,
		NonExpiredAt: &horizon,
	})
	if err != nil {
		return false, fmt.Errorf("searching replacements: %w", err)
	}

	var best *domain.Token
	for i := range newer {
		n := newer[i]
		if n.ID == tok.ID || n.ExpiresAt == nil || !n.ExpiresAt.After(horizon) || n.IsPlaceholder() {
			continue
		}
		if best == nil || laterExpiry(n.ExpiresAt, best.ExpiresAt) {
			best = &newer[i]
		}
	}
	if best == nil {
		return false, nil
	}

	if tok.IsActive {
		err := s.deps.Store.WithTx(ctx, func(tx store.Tx) error {
			return tx.Tokens().SetActive(ctx, best.ID)
		})
		if err != nil {
			return false, fmt.Errorf("moving active token: %w", err)
		}
	}
	s.log.Debug("token already replaced", "token_id", tok.ID, "replacement_id", best.ID)
	return true, nil
}

// refresh mints a replacement for tok with the same client and audience.
// Failures are reported, never returned.
func (s *Scheduler) refresh(ctx context.Context, tok domain.Token) domain.RefreshResult {
	res := domain.RefreshResult{
		TokenID:  tok.ID,
		UPN:      tok.UPN,
		ClientID: tok.ClientID,
		Audience: tok.Audience,
	}
	if tok.UPN == "" {
		res.Error = "token has no identity to refresh for"
		return res
	}

	src, err := s.deps.Locator.Locate(ctx, tok.UPN, tok.ClientID, &tok)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.RTOrigin = src.Origin

	derived, _, err := s.deps.Exchange.Redeem(ctx, RedeemRequest{
		Source:   src,
		ClientID: tok.ClientID,
		Scope:    entra.DefaultScope(tok.Audience),
		UPN:      tok.UPN,
		Origin:   domain.SourceRefresh,
		Activate: tok.IsActive,
	})
	if err != nil {
		res.Error = err.Error()
		s.log.Warn("token refresh failed", "token_id", tok.ID, "error", err)
		return res
	}
	res.NewTokenID = derived.ID
	return res
}

func (s *Scheduler) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := SchedulerStatus{
		Running:        s.running,
		Config:         s.cfg,
		LastRunAt:      s.lastRunAt,
		NextRunAt:      s.nextRunAt,
		Ticks:          s.ticks,
		TotalRefreshed: s.refreshed,
		TotalFailed:    s.failed,
	}
	if s.lastReport != nil {
		r := *s.lastReport
		r.Results = nil
		st.LastReport = &r
	}
	return st
}

// UpdateConfig changes the interval and/or threshold. A running scheduler
// restarts its timer with the new interval.
func (s *Scheduler) UpdateConfig(interval, threshold *time.Duration) (SchedulerConfig, error) {
	if (interval != nil && *interval <= 0) || (threshold != nil && *threshold <= 0) {
		return SchedulerConfig{}, ErrInvalidConfig
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if interval != nil {
		s.cfg.Interval = *interval
	}
	if threshold != nil {
		s.cfg.Threshold = *threshold
	}
	if s.running && interval != nil {
		select {
		case s.reschedule <- struct{}{}:
		default:
		}
	}

	s.record(domain.EventConfigUpdated,
		fmt.Sprintf("config updated (interval %s, threshold %s)", s.cfg.Interval, s.cfg.Threshold),
		s.cfg)
	s.log.Info("scheduler config updated", "interval", s.cfg.Interval, "threshold", s.cfg.Threshold)
	return s.cfg, nil
}

// History returns up to limit events, newest first.
func (s *Scheduler) History(limit int) []domain.SchedulerEvent {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, historySize)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.newest(limit)
}

// Expiring lists access tokens expiring within threshold, or within the
// configured threshold when threshold is not positive.
func (s *Scheduler) Expiring(ctx context.Context, threshold time.Duration) ([]domain.Token, error) {
	if threshold <= 0 {
		s.mu.Lock()
		threshold = s.cfg.Threshold
		s.mu.Unlock()
	}
	now := s.now()
	return s.deps.Store.Tokens().ListExpiring(ctx, now, now.Add(threshold))
}

// record must be called with s.mu held.
func (s *Scheduler) record(typ domain.EventType, msg string, data any) {
	s.history.push(domain.SchedulerEvent{At: s.now(), Type: typ, Message: msg, Data: data})
}

// ring keeps the last historySize events.
type ring struct {
	buf  [historySize]domain.SchedulerEvent
	next int
	n    int
}

func (r *ring) push(e domain.SchedulerEvent) {
	r.buf[r.next] = e
	r.next = (r.next + 1) % historySize
	if r.n < historySize {
		r.n++
	}
}

func (r *ring) newest(limit int) []domain.SchedulerEvent {
	limit = min(limit, r.n)
	out := make([]domain.SchedulerEvent, 0, limit)
	for i := 1; i <= limit; i++ {
		out = append(out, r.buf[(r.next-i+historySize)%historySize])
	}
	return out
}
