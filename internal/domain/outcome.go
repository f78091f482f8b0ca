package domain

import (
	"errors"
	"time"
)

type OutcomeKind int

const (
	OutcomePending OutcomeKind = iota
	OutcomeSuccess
	OutcomeFailure
	OutcomeExpired
	OutcomeTimeout
	OutcomeCancelled
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomePending:
		return "pending"
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeExpired:
		return "expired"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

type AcquisitionToken struct {
	Value    string
	Strategy Strategy
}

// Outcome is the single settlement of a widget session.
type Outcome struct {
	Kind  OutcomeKind
	Token AcquisitionToken
	Err   error
}

func SuccessOutcome(strategy Strategy, token string) Outcome {
	return Outcome{Kind: OutcomeSuccess, Token: AcquisitionToken{Value: token, Strategy: strategy}}
}

func FailureOutcome(err error) Outcome {
	return Outcome{Kind: OutcomeFailure, Err: err}
}

func TimeoutOutcome() Outcome {
	return Outcome{Kind: OutcomeTimeout, Err: ErrWidgetTimeout}
}

func ExpiredOutcome() Outcome {
	return Outcome{Kind: OutcomeExpired}
}

func CancelledOutcome() Outcome {
	return Outcome{Kind: OutcomeCancelled, Err: ErrSessionCancelled}
}

// RenderFailed reports whether the widget could not even be rendered.
func (o Outcome) RenderFailed() bool {
	var widgetErr *WidgetError
	return errors.As(o.Err, &widgetErr) && widgetErr.Stage == WidgetStageRender
}

type DecisionKind int

const (
	DecisionRetrySoon DecisionKind = iota
	DecisionRetryWithBackoff
	DecisionSwitchStrategy
	DecisionDiscard
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionRetrySoon:
		return "retry_soon"
	case DecisionRetryWithBackoff:
		return "retry_with_backoff"
	case DecisionSwitchStrategy:
		return "switch_strategy"
	case DecisionDiscard:
		return "discard"
	default:
		return "unknown"
	}
}

// BackoffDecision is what the scheduler does after a session settles. Delay is zero for
// DecisionSwitchStrategy. Submit is set when the outcome carried a token that must be
// delivered first. Failures is the consecutive unattended failure count after this outcome,
// and Next is the strategy the next session runs under.
type BackoffDecision struct {
	Kind     DecisionKind
	Delay    time.Duration
	Submit   bool
	Failures uint
	Next     Strategy
}
