package application

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/bnema/challenge-harvester/internal/domain"
)

// Pacer draws inter-attempt delays from a cryptographically secure source.
// Predictable timing is itself a detectable signal, so there is no weak fallback.
type Pacer struct {
	src io.Reader
}

// NewPacer probes src once so an unusable source fails at startup. A nil src uses crypto/rand.
func NewPacer(src io.Reader) (*Pacer, error) {
	if src == nil {
		src = rand.Reader
	}

	var probe [4]byte
	if _, err := io.ReadFull(src, probe[:]); err != nil {
		return nil, &domain.ConfigError{Field: "random source", Err: fmt.Errorf("secure random source unavailable: %w", err)}
	}

	return &Pacer{src: src}, nil
}

// NextDelay returns a duration uniformly drawn from [lower, upper). When upper <= lower it
// returns lower.
func (p *Pacer) NextDelay(lower, upper time.Duration) time.Duration {
	if upper <= lower {
		return lower
	}

	var buf [4]byte
	if _, err := io.ReadFull(p.src, buf[:]); err != nil {
		panic(fmt.Sprintf("secure random source failed after startup: %v", err))
	}

	fraction := float64(binary.BigEndian.Uint32(buf[:])) / (1 << 32)
	delay := lower + time.Duration(fraction*float64(upper-lower))
	if delay >= upper {
		delay = upper - 1
	}

	return delay
}

// Range is an inclusive-exclusive delay window.
type Range struct {
	Min time.Duration
	Max time.Duration
}

func (r Range) Validate(field string) error {
	if r.Min < 0 {
		return domain.NewConfigError(field, "minimum %s is negative", r.Min)
	}
	if r.Max < r.Min {
		return domain.NewConfigError(field, "minimum %s exceeds maximum %s", r.Min, r.Max)
	}

	return nil
}

func (p *Pacer) Draw(r Range) time.Duration {
	return p.NextDelay(r.Min, r.Max)
}
