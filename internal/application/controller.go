package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bnema/challenge-harvester/internal/domain"
	"github.com/bnema/challenge-harvester/internal/ports"
)

type NextAction int

const (
	ActionNone NextAction = iota
	ActionAttempt
	ActionAwaitOutcome
	ActionSubmit
)

func (a NextAction) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionAttempt:
		return "attempt"
	case ActionAwaitOutcome:
		return "await_outcome"
	case ActionSubmit:
		return "submit"
	default:
		return "unknown"
	}
}

type Capabilities struct {
	Unattended  ports.WidgetCapability
	Interactive ports.WidgetCapability
}

func (c Capabilities) For(strategy domain.Strategy) ports.WidgetCapability {
	if strategy == domain.StrategyInteractive {
		return c.Interactive
	}

	return c.Unattended
}

type ControllerDeps struct {
	Widgets   Capabilities
	Pacer     *Pacer
	Submitter *Submitter
	Publisher ports.StatusPublisher
	Clock     ports.Clock
	Logger    *slog.Logger
}

// Controller owns the scheduler state and is the only component that arms timers or
// creates widget sessions. At most one timer and one session exist at any time.
type Controller struct {
	policy    Policy
	widgets   Capabilities
	pacer     *Pacer
	submitter *Submitter
	publisher ports.StatusPublisher
	clock     ports.Clock
	logger    *slog.Logger

	mu      sync.Mutex
	state   domain.SchedulerState
	started bool
	seq     uint64
	timer   ports.Timer
	session *WidgetSession
	next    NextAction
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewController(policy Policy, deps ControllerDeps) (*Controller, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if deps.Widgets.Unattended == nil && policy.Selection != domain.SelectionForcedInteractive {
		return nil, domain.NewConfigError("widget", "no unattended widget capability configured")
	}
	if deps.Widgets.Interactive == nil && policy.Selection != domain.SelectionForcedUnattended {
		return nil, domain.NewConfigError("widget", "no interactive widget capability configured")
	}
	if deps.Submitter == nil {
		return nil, domain.NewConfigError("collector", "no submitter configured")
	}

	pacer := deps.Pacer
	if pacer == nil {
		var err error
		pacer, err = NewPacer(nil)
		if err != nil {
			return nil, err
		}
	}

	clock := deps.Clock
	if clock == nil {
		clock = ports.SystemClock{}
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		policy:    policy,
		widgets:   deps.Widgets,
		pacer:     pacer,
		submitter: deps.Submitter,
		publisher: deps.Publisher,
		clock:     clock,
		logger:    logger,
		state: domain.SchedulerState{
			ActiveStrategy: policy.Selection.InitialStrategy(),
			Mode:           domain.ModeFor(policy.Selection.InitialStrategy()),
		},
		done: make(chan struct{}),
	}, nil
}

// Start enters the initial strategy and schedules the first attempt immediately.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Mode == domain.ModeStopped {
		return domain.ErrStopped
	}
	if c.started {
		return domain.ErrAlreadyStarted
	}

	c.started = true
	c.ctx, c.cancel = context.WithCancel(ctx)

	strategy := c.policy.Selection.InitialStrategy()
	c.logger.Info("harvester started", "selection", c.policy.Selection, "strategy", strategy)
	c.enterLocked(strategy, fmt.Sprintf("Harvester started (mode: %s)", c.policy.Selection))
	c.publishLocked()

	return nil
}

// Stop cancels the pending timer, tears down any in-flight session and enters Stopped.
// It is idempotent.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state.Mode == domain.ModeStopped {
		c.mu.Unlock()
		return
	}

	session := c.detachLocked()
	c.state.Mode = domain.ModeStopped
	c.next = ActionNone
	c.state.NextAttemptAt = time.Time{}
	c.state.LastMessage = fmt.Sprintf("Stopped. Tokens: %d", c.state.TokenCount)
	if c.cancel != nil {
		c.cancel()
	}
	close(c.done)
	c.logger.Info("harvester stopped",
		"strategy", c.state.ActiveStrategy,
		"tokens", c.state.TokenCount,
		"unattended_failures", c.state.ConsecutiveUnattendedFailures,
	)
	c.publishLocked()
	c.mu.Unlock()

	cancelSession(session)
}

// ForceStrategy switches to strategy with the same teardown as Stop. It is a no-op when
// the strategy is already active.
func (c *Controller) ForceStrategy(strategy domain.Strategy) error {
	if !strategy.Valid() {
		return fmt.Errorf("force strategy: unknown strategy %q", strategy)
	}
	if c.widgets.For(strategy) == nil {
		return fmt.Errorf("force strategy %s: no widget capability configured", strategy)
	}

	c.mu.Lock()
	if err := c.operableLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.state.ActiveStrategy == strategy {
		c.mu.Unlock()
		return nil
	}
	session := c.detachLocked()
	c.mu.Unlock()

	cancelSession(session)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.operableLocked(); err != nil {
		return err
	}
	if strategy == domain.StrategyUnattended {
		c.state.ConsecutiveUnattendedFailures = 0
	}
	c.logger.Info("strategy forced", "strategy", strategy)
	c.enterLocked(strategy, fmt.Sprintf("Switched to %s mode", strategy))
	c.publishLocked()

	return nil
}

func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state.Snapshot(c.policy.Selection, c.clock.Now())
}

func (c *Controller) NextAction() NextAction {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.next
}

func (c *Controller) operableLocked() error {
	if c.state.Mode == domain.ModeStopped {
		return domain.ErrStopped
	}
	if !c.started {
		return domain.ErrNotStarted
	}

	return nil
}

func (c *Controller) enterLocked(strategy domain.Strategy, message string) {
	c.state.ActiveStrategy = strategy
	c.state.Mode = domain.ModeFor(strategy)
	c.state.LastMessage = message
	c.armLocked(0)
}

// armLocked replaces any pending timer with one that fires after delay.
func (c *Controller) armLocked(delay time.Duration) {
	c.clearTimerLocked()

	seq := c.seq
	c.next = ActionAttempt
	c.state.NextAttemptAt = c.clock.Now().Add(delay)
	c.timer = c.clock.AfterFunc(delay, func() {
		c.fire(seq)
	})
}

func (c *Controller) clearTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.seq++
}

// detachLocked invalidates the pending timer and the in-flight session. The returned
// session must be cancelled after the lock is released.
func (c *Controller) detachLocked() *WidgetSession {
	c.clearTimerLocked()
	session := c.session
	c.session = nil
	c.next = ActionNone

	return session
}

func cancelSession(session *WidgetSession) {
	if session != nil {
		session.Cancel()
	}
}

func (c *Controller) fire(seq uint64) {
	c.mu.Lock()
	if seq != c.seq || c.state.Mode == domain.ModeStopped || c.session != nil {
		c.mu.Unlock()
		return
	}
	c.timer = nil

	strategy := c.state.ActiveStrategy
	widget := c.widgets.For(strategy)
	if !widget.Ready() {
		poll := c.policy.readinessPoll(strategy)
		c.logger.Debug("widget not ready", "strategy", strategy, "poll", poll, "error", domain.ErrWidgetUnavailable)
		c.state.LastMessage = "Waiting for challenge widget..."
		c.armLocked(poll)
		c.publishLocked()
		c.mu.Unlock()
		return
	}

	session := NewWidgetSession(strategy, widget, c.clock, SessionOptions{
		SiteKey: c.policy.SiteKey,
		Theme:   c.policy.Theme,
		Timeout: c.policy.SessionTimeout,
	}, c.onSettle)
	c.session = session
	c.next = ActionAwaitOutcome
	c.state.NextAttemptAt = time.Time{}
	if strategy == domain.StrategyInteractive {
		c.state.LastMessage = "Solve the challenge to harvest a token"
	} else {
		c.state.LastMessage = "Running unattended challenge..."
	}
	c.logger.Debug("session started", "strategy", strategy, "session", session.ID())
	c.publishLocked()
	ctx := c.ctx
	c.mu.Unlock()

	session.Start(ctx)
}

func (c *Controller) onSettle(session *WidgetSession, outcome domain.Outcome) {
	c.mu.Lock()
	if c.session != session {
		c.mu.Unlock()
		return
	}
	c.session = nil

	strategy := session.Strategy()
	decision := c.policy.Classify(strategy, outcome, c.state.ConsecutiveUnattendedFailures, c.pacer)
	c.state.ConsecutiveUnattendedFailures = decision.Failures
	c.logger.Info("session settled",
		"strategy", strategy,
		"session", session.ID(),
		"outcome", outcome.Kind,
		"decision", decision.Kind,
		"delay", decision.Delay,
		"failures", decision.Failures,
		"error", outcome.Err,
	)

	switch decision.Kind {
	case domain.DecisionDiscard:
		c.next = ActionNone
		c.mu.Unlock()
		return
	case domain.DecisionSwitchStrategy:
		c.logger.Warn("unattended strategy rejected, switching",
			"failures", decision.Failures,
			"strategy", decision.Next,
		)
		c.enterLocked(decision.Next, fmt.Sprintf("Unattended failed %dx. Switched to %s mode", decision.Failures, decision.Next))
		c.publishLocked()
		c.mu.Unlock()
		return
	case domain.DecisionRetryWithBackoff:
		c.state.LastMessage = fmt.Sprintf("Failed (%dx). Retry in %s", decision.Failures, formatDelay(decision.Delay))
		c.armLocked(decision.Delay)
		c.publishLocked()
		c.mu.Unlock()
		return
	}

	if !decision.Submit {
		c.state.LastMessage = fmt.Sprintf("%s. New widget in %s", outcomeLabel(outcome), formatDelay(decision.Delay))
		c.armLocked(decision.Delay)
		c.publishLocked()
		c.mu.Unlock()
		return
	}

	c.state.HarvestNumber++
	harvest := c.state.HarvestNumber
	c.state.LastMessage = fmt.Sprintf("Token #%d captured! Sending...", harvest)
	c.next = ActionSubmit
	seq := c.seq
	ctx := c.ctx
	c.publishLocked()
	c.mu.Unlock()

	total, err := c.submitter.Submit(ctx, outcome.Token, harvest)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.state.LastMessage = fmt.Sprintf("Token #%d store failed: %v.", harvest, err)
	} else {
		c.state.TokenCount++
		c.state.StoredTotal = total
		c.state.LastMessage = fmt.Sprintf("Token #%d stored! Total: %d.", harvest, total)
	}

	if seq != c.seq || c.state.Mode == domain.ModeStopped {
		c.publishLocked()
		return
	}

	c.state.LastMessage += fmt.Sprintf(" Next in %s", formatDelay(decision.Delay))
	c.armLocked(decision.Delay)
	c.publishLocked()
}

func (c *Controller) publishLocked() {
	if c.publisher == nil {
		return
	}

	c.publisher.Publish(c.state.Snapshot(c.policy.Selection, c.clock.Now()))
}

func outcomeLabel(outcome domain.Outcome) string {
	switch outcome.Kind {
	case domain.OutcomeExpired:
		return "Token expired"
	case domain.OutcomeTimeout:
		return "Widget expired"
	default:
		if outcome.RenderFailed() {
			return fmt.Sprintf("Error: %v", outcome.Err)
		}
		return "Challenge failed"
	}
}

func formatDelay(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
