package application

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/challenge-harvester/internal/domain"
	"github.com/bnema/challenge-harvester/internal/ports"
	"github.com/google/uuid"
)

type SettleFunc func(session *WidgetSession, outcome domain.Outcome)

type SessionOptions struct {
	SiteKey string
	Theme   string
	Timeout time.Duration
}

// WidgetSession drives one render/execute cycle of the widget. The first of success,
// error, expiry, timeout or cancellation settles it; every later signal is dropped.
type WidgetSession struct {
	id        string
	strategy  domain.Strategy
	createdAt time.Time

	widget   ports.WidgetCapability
	clock    ports.Clock
	opts     SessionOptions
	onSettle SettleFunc

	outcome atomic.Pointer[domain.Outcome]

	mu         sync.Mutex
	overlay    ports.Overlay
	rendering  bool
	timer      ports.Timer
	widgetID   ports.WidgetID
	releaseErr error
}

func NewWidgetSession(strategy domain.Strategy, widget ports.WidgetCapability, clock ports.Clock, opts SessionOptions, onSettle SettleFunc) *WidgetSession {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &WidgetSession{
		id:        uuid.New().String()[:8],
		strategy:  strategy,
		createdAt: clock.Now(),
		widget:    widget,
		clock:     clock,
		opts:      opts,
		onSettle:  onSettle,
	}
}

func (s *WidgetSession) ID() string {
	return s.id
}

func (s *WidgetSession) Strategy() domain.Strategy {
	return s.strategy
}

func (s *WidgetSession) CreatedAt() time.Time {
	return s.createdAt
}

func (s *WidgetSession) Settled() bool {
	return s.outcome.Load() != nil
}

// Outcome returns the settled outcome, or a pending one.
func (s *WidgetSession) Outcome() domain.Outcome {
	if outcome := s.outcome.Load(); outcome != nil {
		return *outcome
	}

	return domain.Outcome{Kind: domain.OutcomePending}
}

func (s *WidgetSession) WidgetID() ports.WidgetID {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.widgetID
}

func (s *WidgetSession) ReleaseErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.releaseErr
}

// Start mounts the overlay, arms the timeout, renders the widget and, for the
// unattended strategy, executes it. Callbacks may settle the session before Start returns.
func (s *WidgetSession) Start(ctx context.Context) {
	s.mu.Lock()
	if s.Settled() {
		s.mu.Unlock()
		return
	}

	overlay, err := s.widget.Mount(ctx, ports.MountRequest{SessionID: s.id, Strategy: s.strategy})
	if err != nil {
		s.mu.Unlock()
		s.settle(domain.FailureOutcome(&domain.WidgetError{Stage: domain.WidgetStageRender, Err: fmt.Errorf("mount overlay: %w", err)}))
		return
	}
	s.overlay = overlay
	s.timer = s.clock.AfterFunc(s.opts.Timeout, func() {
		s.settle(domain.TimeoutOutcome())
	})
	if s.Settled() {
		s.releaseLocked()
		s.mu.Unlock()
		return
	}
	// A settlement from here until Render returns leaves the overlay mounted; it is
	// released once Render is done so the widget never renders into a released host.
	s.rendering = true
	s.mu.Unlock()

	widgetID, err := s.widget.Render(overlay, ports.RenderOptions{
		SiteKey: s.opts.SiteKey,
		Size:    s.strategy.WidgetSize(),
		Theme:   s.opts.Theme,
		Callback: func(token string) {
			s.settle(domain.SuccessOutcome(s.strategy, token))
		},
		ErrorCallback: func(err error) {
			s.settle(domain.FailureOutcome(&domain.WidgetError{Stage: domain.WidgetStageCallback, Err: err}))
		},
		ExpiredCallback: func() {
			s.settle(domain.ExpiredOutcome())
		},
	})

	s.mu.Lock()
	s.rendering = false
	if err == nil {
		s.widgetID = widgetID
	}
	if s.Settled() {
		s.releaseLocked()
	}
	s.mu.Unlock()

	if err != nil {
		s.settle(domain.FailureOutcome(&domain.WidgetError{Stage: domain.WidgetStageRender, Err: err}))
		return
	}

	if s.strategy != domain.StrategyUnattended || s.Settled() {
		return
	}

	if err := s.widget.Execute(widgetID); err != nil {
		s.settle(domain.FailureOutcome(&domain.WidgetError{Stage: domain.WidgetStageExecute, Err: err}))
	}
}

// Cancel tears the session down without an acted-upon outcome.
func (s *WidgetSession) Cancel() bool {
	return s.settle(domain.CancelledOutcome())
}

func (s *WidgetSession) settle(outcome domain.Outcome) bool {
	if !s.outcome.CompareAndSwap(nil, &outcome) {
		return false
	}

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if !s.rendering {
		s.releaseLocked()
	}
	s.mu.Unlock()

	if s.onSettle != nil {
		s.onSettle(s, outcome)
	}

	return true
}

func (s *WidgetSession) releaseLocked() {
	if s.overlay != nil {
		s.releaseErr = s.overlay.Release()
		s.overlay = nil
	}
}
