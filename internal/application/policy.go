package application

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/bnema/challenge-harvester/internal/domain"
)

const backoffMultiplier = 1.5

var (
	// SteadyPacing is the unattended cadence of the long-running loop.
	SteadyPacing = Range{Min: 80 * time.Second, Max: 100 * time.Second}
	// RapidPacing is the short cadence of the simple unattended loop.
	RapidPacing = Range{Min: 8 * time.Second, Max: 12 * time.Second}
)

type InteractiveDelays struct {
	Success     time.Duration
	Expired     time.Duration
	Error       time.Duration
	Timeout     time.Duration
	RenderError time.Duration
}

// Policy holds the tunable scheduling constants. The defaults are empirical values,
// not derived ones.
type Policy struct {
	Selection         domain.SelectionMode
	SiteKey           string
	Theme             string
	SessionTimeout    time.Duration
	UnattendedPacing  Range
	BackoffBase       time.Duration
	BackoffCap        time.Duration
	ProbeBackoffCap   time.Duration
	FallbackThreshold uint
	Interactive       InteractiveDelays
	UnattendedPoll    time.Duration
	InteractivePoll   time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		Selection:         domain.SelectionAuto,
		Theme:             "light",
		SessionTimeout:    60 * time.Second,
		UnattendedPacing:  SteadyPacing,
		BackoffBase:       15 * time.Second,
		BackoffCap:        300 * time.Second,
		ProbeBackoffCap:   60 * time.Second,
		FallbackThreshold: 2,
		Interactive: InteractiveDelays{
			Success:     3 * time.Second,
			Expired:     3 * time.Second,
			Error:       5 * time.Second,
			Timeout:     3 * time.Second,
			RenderError: 10 * time.Second,
		},
		UnattendedPoll:  2 * time.Second,
		InteractivePoll: time.Second,
	}
}

func (p Policy) Validate() error {
	var errs []error

	if !p.Selection.Valid() {
		errs = append(errs, domain.NewConfigError("mode", "unknown selection mode %q", p.Selection))
	}
	if strings.TrimSpace(p.SiteKey) == "" {
		errs = append(errs, domain.NewConfigError("widget.site_key", "site key is required"))
	}
	if p.SessionTimeout <= 0 {
		errs = append(errs, domain.NewConfigError("widget.session_timeout", "must be positive, got %s", p.SessionTimeout))
	}
	if err := p.UnattendedPacing.Validate("pacing"); err != nil {
		errs = append(errs, err)
	}
	if p.BackoffBase <= 0 {
		errs = append(errs, domain.NewConfigError("backoff.base", "must be positive, got %s", p.BackoffBase))
	}
	if p.BackoffCap < p.BackoffBase {
		errs = append(errs, domain.NewConfigError("backoff.cap", "cap %s is below base %s", p.BackoffCap, p.BackoffBase))
	}
	if p.ProbeBackoffCap < p.BackoffBase {
		errs = append(errs, domain.NewConfigError("backoff.probe_cap", "cap %s is below base %s", p.ProbeBackoffCap, p.BackoffBase))
	}
	if p.FallbackThreshold < 1 {
		errs = append(errs, domain.NewConfigError("backoff.fallback_threshold", "must be at least 1"))
	}
	for _, delay := range []struct {
		field string
		value time.Duration
	}{
		{field: "interactive.success_delay", value: p.Interactive.Success},
		{field: "interactive.expired_delay", value: p.Interactive.Expired},
		{field: "interactive.error_delay", value: p.Interactive.Error},
		{field: "interactive.timeout_delay", value: p.Interactive.Timeout},
		{field: "interactive.render_error_delay", value: p.Interactive.RenderError},
	} {
		if delay.value < 0 {
			errs = append(errs, domain.NewConfigError(delay.field, "must not be negative, got %s", delay.value))
		}
	}
	if p.UnattendedPoll <= 0 || p.InteractivePoll <= 0 {
		errs = append(errs, domain.NewConfigError("readiness", "poll intervals must be positive"))
	}

	return errors.Join(errs...)
}

// Backoff returns min(base * 1.5^(failures-1), cap). Zero failures yields base.
func Backoff(base, ceiling time.Duration, failures uint) time.Duration {
	if failures < 1 {
		failures = 1
	}

	delay := float64(base) * math.Pow(backoffMultiplier, float64(failures-1))
	if delay >= float64(ceiling) || math.IsInf(delay, 1) {
		return ceiling
	}

	return time.Duration(delay)
}

// Classify maps a settled outcome to the next scheduling step. It is pure: the caller
// applies Decision.Failures to its state.
func (p Policy) Classify(strategy domain.Strategy, outcome domain.Outcome, failures uint, pacer *Pacer) domain.BackoffDecision {
	if outcome.Kind == domain.OutcomeCancelled || outcome.Kind == domain.OutcomePending {
		return domain.BackoffDecision{Kind: domain.DecisionDiscard, Failures: failures, Next: strategy}
	}

	if strategy == domain.StrategyInteractive {
		return domain.BackoffDecision{
			Kind:     domain.DecisionRetrySoon,
			Delay:    p.interactiveDelay(outcome),
			Submit:   outcome.Kind == domain.OutcomeSuccess,
			Failures: failures,
			Next:     domain.StrategyInteractive,
		}
	}

	if outcome.Kind == domain.OutcomeSuccess {
		return domain.BackoffDecision{
			Kind:     domain.DecisionRetrySoon,
			Delay:    pacer.Draw(p.UnattendedPacing),
			Submit:   true,
			Failures: 0,
			Next:     domain.StrategyUnattended,
		}
	}

	failures++
	if p.Selection.AllowsFallback() && failures >= p.FallbackThreshold {
		return domain.BackoffDecision{
			Kind:     domain.DecisionSwitchStrategy,
			Failures: failures,
			Next:     domain.StrategyInteractive,
		}
	}

	ceiling := p.BackoffCap
	if p.Selection.AllowsFallback() {
		ceiling = p.ProbeBackoffCap
	}

	return domain.BackoffDecision{
		Kind:     domain.DecisionRetryWithBackoff,
		Delay:    Backoff(p.BackoffBase, ceiling, failures),
		Failures: failures,
		Next:     domain.StrategyUnattended,
	}
}

func (p Policy) interactiveDelay(outcome domain.Outcome) time.Duration {
	switch outcome.Kind {
	case domain.OutcomeSuccess:
		return p.Interactive.Success
	case domain.OutcomeExpired:
		return p.Interactive.Expired
	case domain.OutcomeTimeout:
		return p.Interactive.Timeout
	default:
		if outcome.RenderFailed() {
			return p.Interactive.RenderError
		}
		return p.Interactive.Error
	}
}

func (p Policy) readinessPoll(strategy domain.Strategy) time.Duration {
	if strategy == domain.StrategyInteractive {
		return p.InteractivePoll
	}

	return p.UnattendedPoll
}
