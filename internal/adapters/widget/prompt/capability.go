package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/bnema/challenge-harvester/internal/ports"
	"github.com/charmbracelet/lipgloss"
)

const (
	commandError   = "!error"
	commandExpired = "!expired"
)

var (
	ErrHumanTriggered  = errors.New("interactive widget is triggered by the operator")
	errChallengeFailed = errors.New("operator reported the challenge failed")
)

var promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

// Capability is the interactive widget: the operator solves a visible challenge and
// pastes the token, one per line.
type Capability struct {
	out io.Writer

	mu     sync.Mutex
	closed bool
	active *widget
	seq    int
}

type widget struct {
	id      ports.WidgetID
	overlay *overlay
	opts    ports.RenderOptions
}

type overlay struct {
	id    string
	owner *Capability

	mu       sync.Mutex
	released bool
}

var _ ports.WidgetCapability = (*Capability)(nil)

// New reads operator lines from in until it is exhausted.
func New(in io.Reader, out io.Writer) *Capability {
	c := &Capability{out: out}
	go c.readLines(in)
	return c
}

// Ready reports whether operator input is still open.
func (c *Capability) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return !c.closed
}

func (c *Capability) Mount(_ context.Context, req ports.MountRequest) (ports.Overlay, error) {
	return &overlay{id: req.SessionID, owner: c}, nil
}

func (c *Capability) Render(host ports.Overlay, opts ports.RenderOptions) (ports.WidgetID, error) {
	ov, ok := host.(*overlay)
	if !ok || ov.owner != c {
		return "", fmt.Errorf("render: overlay %q was not mounted by this capability", host.ID())
	}

	// Lock order is c.mu then ov.mu; Release never holds both, so an overlay released
	// before this point is seen here and one released after clears c.active itself.
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", errors.New("render: operator input closed")
	}
	ov.mu.Lock()
	released := ov.released
	ov.mu.Unlock()
	if released {
		c.mu.Unlock()
		return "", errors.New("render: overlay already released")
	}
	c.seq++
	w := &widget{id: ports.WidgetID(fmt.Sprintf("%s-%d", ov.id, c.seq)), overlay: ov, opts: opts}
	c.active = w
	c.mu.Unlock()

	_, _ = fmt.Fprintln(c.out, promptStyle.Render(fmt.Sprintf("Challenge %s ready (size %s, theme %s).", w.id, opts.Size, opts.Theme)))
	_, _ = fmt.Fprintf(c.out, "Paste the token, or type %s / %s: \n", commandError, commandExpired)

	return w.id, nil
}

func (c *Capability) Execute(ports.WidgetID) error {
	return ErrHumanTriggered
}

func (c *Capability) readLines(in io.Reader) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		c.dispatch(scanner.Text())
	}

	c.mu.Lock()
	c.closed = true
	active := c.active
	c.active = nil
	c.mu.Unlock()

	if active != nil && active.opts.ErrorCallback != nil {
		active.opts.ErrorCallback(errors.New("operator input closed"))
	}
}

// dispatch hands a line to the rendered widget. Callbacks run without the lock held
// because settlement releases the overlay.
func (c *Capability) dispatch(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	c.mu.Lock()
	active := c.active
	c.mu.Unlock()
	if active == nil {
		_, _ = fmt.Fprintln(c.out, "No challenge pending; input ignored.")
		return
	}

	switch line {
	case commandError:
		if active.opts.ErrorCallback != nil {
			active.opts.ErrorCallback(errChallengeFailed)
		}
	case commandExpired:
		if active.opts.ExpiredCallback != nil {
			active.opts.ExpiredCallback()
		}
	default:
		if active.opts.Callback != nil {
			active.opts.Callback(line)
		}
	}
}

func (o *overlay) ID() string {
	return o.id
}

// Release detaches the prompt so later lines are ignored.
func (o *overlay) Release() error {
	o.mu.Lock()
	if o.released {
		o.mu.Unlock()
		return errors.New("overlay already released")
	}
	o.released = true
	o.mu.Unlock()

	o.owner.mu.Lock()
	if o.owner.active != nil && o.owner.active.overlay == o {
		o.owner.active = nil
	}
	o.owner.mu.Unlock()

	return nil
}
