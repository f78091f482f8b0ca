package status

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bnema/challenge-harvester/internal/domain"
	"github.com/bnema/challenge-harvester/internal/ports"
)

// Publisher writes scheduler status changes to a terminal, one line per change.
type Publisher struct {
	mu     sync.Mutex
	out    io.Writer
	now    func() time.Time
	styles styles
	last   string
}

var _ ports.StatusPublisher = (*Publisher)(nil)

func NewPublisher(out io.Writer) *Publisher {
	return &Publisher{out: out, now: time.Now, styles: newStyles()}
}

func (p *Publisher) Publish(status domain.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := fmt.Sprintf("%s|%s|%d|%d", status.Mode, status.LastMessage, status.TokenCount, status.ConsecutiveFailures)
	if key == p.last {
		return
	}
	p.last = key

	now := status.UpdatedAt
	if now.IsZero() {
		now = p.now()
	}
	_, _ = fmt.Fprintln(p.out, renderStatusLine(status, now, p.styles))
}

// Summary is printed once the scheduler has stopped.
func Summary(status domain.Status) string {
	s := newStyles()
	return fmt.Sprintf("%s %s %s",
		s.title.Render("Harvest finished."),
		s.counter.Render(fmt.Sprintf("mode: %s, tokens: %d, harvested: %d,", status.Strategy, status.TokenCount, status.HarvestNumber)),
		s.counter.Render(fmt.Sprintf("unattended failures: %d", status.ConsecutiveFailures)),
	)
}
