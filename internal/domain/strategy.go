package domain

import (
	"fmt"
	"strings"
)

type Strategy string

const (
	StrategyUnattended  Strategy = "unattended"
	StrategyInteractive Strategy = "interactive"
)

func (s Strategy) Valid() bool {
	switch s {
	case StrategyUnattended, StrategyInteractive:
		return true
	default:
		return false
	}
}

// Action is the label reported to the collector with every token.
func (s Strategy) Action() string {
	switch s {
	case StrategyUnattended:
		return "invisible_auto"
	case StrategyInteractive:
		return "checkbox_challenge"
	default:
		return string(s)
	}
}

// WidgetSize is the render size requested from the widget for this strategy.
func (s Strategy) WidgetSize() string {
	if s == StrategyUnattended {
		return "invisible"
	}

	return "normal"
}

func ParseStrategy(raw string) (Strategy, error) {
	strategy := Strategy(strings.ToLower(strings.TrimSpace(raw)))
	if !strategy.Valid() {
		return "", fmt.Errorf("unknown strategy %q", raw)
	}

	return strategy, nil
}

type SelectionMode string

const (
	SelectionAuto              SelectionMode = "auto"
	SelectionForcedUnattended  SelectionMode = "forced-unattended"
	SelectionForcedInteractive SelectionMode = "forced-interactive"
)

func (m SelectionMode) Valid() bool {
	switch m {
	case SelectionAuto, SelectionForcedUnattended, SelectionForcedInteractive:
		return true
	default:
		return false
	}
}

// InitialStrategy is the strategy the controller enters on start.
func (m SelectionMode) InitialStrategy() Strategy {
	if m == SelectionForcedInteractive {
		return StrategyInteractive
	}

	return StrategyUnattended
}

// AllowsFallback reports whether unattended failures may escalate to the interactive strategy.
func (m SelectionMode) AllowsFallback() bool {
	return m == SelectionAuto
}

type Mode string

const (
	ModeUnattended  Mode = Mode(StrategyUnattended)
	ModeInteractive Mode = Mode(StrategyInteractive)
	ModeStopped     Mode = "stopped"
)

func ModeFor(strategy Strategy) Mode {
	return Mode(strategy)
}
