package application

import (
	"errors"
	"testing"
	"time"

	"github.com/bnema/challenge-harvester/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy(selection domain.SelectionMode) Policy {
	policy := DefaultPolicy()
	policy.Selection = selection
	policy.SiteKey = "site-key"
	return policy
}

func testPacer(t *testing.T) *Pacer {
	t.Helper()

	pacer, err := NewPacer(zeroReader{})
	require.NoError(t, err)
	return pacer
}

func TestBackoffSequence(t *testing.T) {
	want := []time.Duration{
		15 * time.Second,
		22500 * time.Millisecond,
		33750 * time.Millisecond,
		50625 * time.Millisecond,
		75937500 * time.Microsecond,
		113906250 * time.Microsecond,
		170859375 * time.Microsecond,
		256289062500 * time.Nanosecond,
		300 * time.Second,
		300 * time.Second,
	}

	for i, expected := range want {
		assert.Equal(t, expected, Backoff(15*time.Second, 300*time.Second, uint(i+1)), "failures=%d", i+1)
	}
}

func TestBackoffIsMonotonicAndCapped(t *testing.T) {
	previous := time.Duration(0)
	for failures := uint(0); failures <= 200; failures++ {
		delay := Backoff(15*time.Second, 300*time.Second, failures)
		assert.GreaterOrEqual(t, delay, previous)
		assert.LessOrEqual(t, delay, 300*time.Second)
		previous = delay
	}
}

func TestClassifyAutoSwitchesOnSecondUnattendedFailure(t *testing.T) {
	policy := testPolicy(domain.SelectionAuto)
	pacer := testPacer(t)
	failure := domain.FailureOutcome(&domain.WidgetError{Stage: domain.WidgetStageCallback})

	first := policy.Classify(domain.StrategyUnattended, failure, 0, pacer)
	assert.Equal(t, domain.DecisionRetryWithBackoff, first.Kind)
	assert.Equal(t, 15*time.Second, first.Delay)
	assert.Equal(t, uint(1), first.Failures)
	assert.Equal(t, domain.StrategyUnattended, first.Next)

	second := policy.Classify(domain.StrategyUnattended, domain.TimeoutOutcome(), first.Failures, pacer)
	assert.Equal(t, domain.DecisionSwitchStrategy, second.Kind)
	assert.Equal(t, uint(2), second.Failures)
	assert.Equal(t, domain.StrategyInteractive, second.Next)
}

func TestClassifyAutoUsesProbeCapBeforeFallback(t *testing.T) {
	policy := testPolicy(domain.SelectionAuto)
	policy.FallbackThreshold = 10
	pacer := testPacer(t)

	decision := policy.Classify(domain.StrategyUnattended, domain.TimeoutOutcome(), 8, pacer)
	assert.Equal(t, domain.DecisionRetryWithBackoff, decision.Kind)
	assert.Equal(t, 60*time.Second, decision.Delay)
}

func TestClassifyForcedUnattendedNeverSwitches(t *testing.T) {
	policy := testPolicy(domain.SelectionForcedUnattended)
	pacer := testPacer(t)

	failures := uint(0)
	for i := 0; i < 20; i++ {
		decision := policy.Classify(domain.StrategyUnattended, domain.TimeoutOutcome(), failures, pacer)
		require.Equal(t, domain.DecisionRetryWithBackoff, decision.Kind)
		require.Equal(t, domain.StrategyUnattended, decision.Next)
		assert.Equal(t, Backoff(15*time.Second, 300*time.Second, decision.Failures), decision.Delay)
		failures = decision.Failures
	}
	assert.Equal(t, uint(20), failures)
}

func TestClassifyUnattendedSuccessResetsFailures(t *testing.T) {
	policy := testPolicy(domain.SelectionAuto)

	decision := policy.Classify(domain.StrategyUnattended, domain.SuccessOutcome(domain.StrategyUnattended, "T1"), 1, testPacer(t))
	assert.Equal(t, domain.DecisionRetrySoon, decision.Kind)
	assert.True(t, decision.Submit)
	assert.Equal(t, uint(0), decision.Failures)
	assert.Equal(t, 80*time.Second, decision.Delay)
}

func TestClassifyInteractiveDelays(t *testing.T) {
	policy := testPolicy(domain.SelectionAuto)
	pacer := testPacer(t)

	tests := []struct {
		name    string
		outcome domain.Outcome
		delay   time.Duration
		submit  bool
	}{
		{name: "success", outcome: domain.SuccessOutcome(domain.StrategyInteractive, "T1"), delay: 3 * time.Second, submit: true},
		{name: "expired", outcome: domain.ExpiredOutcome(), delay: 3 * time.Second},
		{name: "error callback", outcome: domain.FailureOutcome(&domain.WidgetError{Stage: domain.WidgetStageCallback}), delay: 5 * time.Second},
		{name: "timeout", outcome: domain.TimeoutOutcome(), delay: 3 * time.Second},
		{name: "render error", outcome: domain.FailureOutcome(&domain.WidgetError{Stage: domain.WidgetStageRender, Err: errors.New("boom")}), delay: 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := policy.Classify(domain.StrategyInteractive, tt.outcome, 2, pacer)
			assert.Equal(t, domain.DecisionRetrySoon, decision.Kind)
			assert.Equal(t, tt.delay, decision.Delay)
			assert.Equal(t, tt.submit, decision.Submit)
			assert.Equal(t, uint(2), decision.Failures)
			assert.Equal(t, domain.StrategyInteractive, decision.Next)
		})
	}
}

func TestClassifyCancelledIsDiscarded(t *testing.T) {
	decision := testPolicy(domain.SelectionAuto).Classify(domain.StrategyUnattended, domain.CancelledOutcome(), 1, testPacer(t))
	assert.Equal(t, domain.DecisionDiscard, decision.Kind)
	assert.Equal(t, uint(1), decision.Failures)
}

func TestPolicyValidate(t *testing.T) {
	require.NoError(t, testPolicy(domain.SelectionAuto).Validate())

	tests := []struct {
		name   string
		mutate func(*Policy)
		field  string
	}{
		{name: "missing site key", mutate: func(p *Policy) { p.SiteKey = " " }, field: "widget.site_key"},
		{name: "unknown mode", mutate: func(p *Policy) { p.Selection = "sometimes" }, field: "mode"},
		{name: "inverted pacing", mutate: func(p *Policy) { p.UnattendedPacing = Range{Min: 10 * time.Second, Max: time.Second} }, field: "pacing"},
		{name: "cap below base", mutate: func(p *Policy) { p.BackoffCap = time.Second }, field: "backoff.cap"},
		{name: "zero threshold", mutate: func(p *Policy) { p.FallbackThreshold = 0 }, field: "backoff.fallback_threshold"},
		{name: "zero timeout", mutate: func(p *Policy) { p.SessionTimeout = 0 }, field: "widget.session_timeout"},
		{name: "negative interactive delay", mutate: func(p *Policy) { p.Interactive.Error = -time.Second }, field: "interactive.error_delay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := testPolicy(domain.SelectionAuto)
			tt.mutate(&policy)

			err := policy.Validate()
			require.Error(t, err)
			assert.True(t, domain.IsConfigError(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
