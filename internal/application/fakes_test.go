package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bnema/challenge-harvester/internal/domain"
	"github.com/bnema/challenge-harvester/internal/ports"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) ports.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	timer := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, timer)
	return timer
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Active counts timers that are armed and have not fired.
func (c *fakeClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	active := 0
	for _, timer := range c.timers {
		if !timer.stopped && !timer.fired {
			active++
		}
	}
	return active
}

// NextIn returns the time until the earliest armed timer.
func (c *fakeClock) NextIn() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.earliestLocked()
	if next == nil {
		return 0, false
	}
	return next.at.Sub(c.now), true
}

func (c *fakeClock) earliestLocked() *fakeTimer {
	var next *fakeTimer
	for _, timer := range c.timers {
		if timer.stopped || timer.fired {
			continue
		}
		if next == nil || timer.at.Before(next.at) {
			next = timer
		}
	}
	return next
}

// Advance moves time forward, firing due timers in order on the calling goroutine.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		next := c.earliestLocked()
		if next == nil || next.at.After(target) {
			break
		}
		c.now = next.at
		next.fired = true
		c.mu.Unlock()
		next.f()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// RunNext advances to the earliest armed timer and fires it.
func (c *fakeClock) RunNext() bool {
	d, ok := c.NextIn()
	if !ok {
		return false
	}
	c.Advance(d)
	return true
}

type fakeWidget struct {
	mu         sync.Mutex
	ready      bool
	mountErr   error
	renderErr  error
	executeErr error
	renders    []*fakeRender
	mounted    int
	released   int
	live       int
	maxLive    int
	executed   []ports.WidgetID

	// onRender runs before Render takes the lock.
	onRender     func(opts ports.RenderOptions)
	staleRenders int
}

type fakeRender struct {
	id      ports.WidgetID
	overlay *fakeOverlay
	opts    ports.RenderOptions
}

type fakeOverlay struct {
	widget   *fakeWidget
	id       string
	released bool
}

func newFakeWidget() *fakeWidget {
	return &fakeWidget{ready: true}
}

func (w *fakeWidget) Ready() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.ready
}

func (w *fakeWidget) SetReady(ready bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.ready = ready
}

func (w *fakeWidget) Mount(_ context.Context, req ports.MountRequest) (ports.Overlay, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.mountErr != nil {
		return nil, w.mountErr
	}
	w.mounted++
	w.live++
	if w.live > w.maxLive {
		w.maxLive = w.live
	}
	return &fakeOverlay{widget: w, id: req.SessionID}, nil
}

func (w *fakeWidget) Render(host ports.Overlay, opts ports.RenderOptions) (ports.WidgetID, error) {
	w.mu.Lock()
	hook := w.onRender
	w.mu.Unlock()
	if hook != nil {
		hook(opts)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if host.(*fakeOverlay).released {
		w.staleRenders++
	}
	if w.renderErr != nil {
		return "", w.renderErr
	}
	render := &fakeRender{
		id:      ports.WidgetID(fmt.Sprintf("widget-%d", len(w.renders)+1)),
		overlay: host.(*fakeOverlay),
		opts:    opts,
	}
	w.renders = append(w.renders, render)
	return render.id, nil
}

func (w *fakeWidget) Execute(id ports.WidgetID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.executed = append(w.executed, id)
	return w.executeErr
}

func (w *fakeWidget) Last() *fakeRender {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.renders) == 0 {
		return nil
	}
	return w.renders[len(w.renders)-1]
}

func (w *fakeWidget) StaleRenders() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.staleRenders
}

func (w *fakeWidget) Live() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.live
}

func (w *fakeWidget) Counts() (mounted, released, renders int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.mounted, w.released, len(w.renders)
}

func (o *fakeOverlay) ID() string {
	return o.id
}

func (o *fakeOverlay) Release() error {
	o.widget.mu.Lock()
	defer o.widget.mu.Unlock()

	if o.released {
		return errors.New("overlay released twice")
	}
	o.released = true
	o.widget.live--
	o.widget.released++
	return nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	statuses []domain.Status
}

func (p *recordingPublisher) Publish(status domain.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.statuses = append(p.statuses, status)
}

func (p *recordingPublisher) Last() domain.Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.statuses) == 0 {
		return domain.Status{}
	}
	return p.statuses[len(p.statuses)-1]
}

type fakeCollector struct {
	mu          sync.Mutex
	submissions []domain.Submission
	fail        func(n int) error
}

func (c *fakeCollector) Submit(_ context.Context, submission domain.Submission) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.submissions = append(c.submissions, submission)
	if c.fail != nil {
		if err := c.fail(len(c.submissions)); err != nil {
			return 0, err
		}
	}
	return len(c.submissions), nil
}

// zeroReader makes the pacer always return the lower bound.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy pool unavailable")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
