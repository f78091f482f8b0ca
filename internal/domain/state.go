package domain

import "time"

// SchedulerState is owned by the controller for the lifetime of the process.
// HarvestNumber counts acquired tokens and never decreases; TokenCount counts the tokens
// the collector accepted.
type SchedulerState struct {
	ActiveStrategy                Strategy
	Mode                          Mode
	ConsecutiveUnattendedFailures uint
	HarvestNumber                 uint
	TokenCount                    uint
	StoredTotal                   int
	LastMessage                   string
	NextAttemptAt                 time.Time
}

// Status is the read-only view published to the status surface.
type Status struct {
	Mode                Mode
	Strategy            Strategy
	Selection           SelectionMode
	TokenCount          uint
	HarvestNumber       uint
	StoredTotal         int
	ConsecutiveFailures uint
	LastMessage         string
	NextAttemptAt       time.Time
	UpdatedAt           time.Time
}

func (s SchedulerState) Snapshot(selection SelectionMode, now time.Time) Status {
	return Status{
		Mode:                s.Mode,
		Strategy:            s.ActiveStrategy,
		Selection:           selection,
		TokenCount:          s.TokenCount,
		HarvestNumber:       s.HarvestNumber,
		StoredTotal:         s.StoredTotal,
		ConsecutiveFailures: s.ConsecutiveUnattendedFailures,
		LastMessage:         s.LastMessage,
		NextAttemptAt:       s.NextAttemptAt,
		UpdatedAt:           now,
	}
}
