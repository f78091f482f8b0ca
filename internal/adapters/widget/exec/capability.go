package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	osexec "os/exec"
	"strings"
	"sync"

	"github.com/bnema/challenge-harvester/internal/ports"
)

const (
	envSiteKey    = "HARVEST_SITE_KEY"
	envWidgetID   = "HARVEST_WIDGET_ID"
	envWidgetSize = "HARVEST_WIDGET_SIZE"
	envTheme      = "HARVEST_WIDGET_THEME"
)

var (
	errNoCommand       = errors.New("no widget helper command configured")
	errUnknownWidget   = errors.New("unknown widget id")
	errOverlayReleased = errors.New("overlay already released")
	errEmptyToken      = errors.New("widget helper produced no token")
)

// Capability runs the unattended challenge through an external helper command.
// The helper receives the widget parameters in its environment and prints the token on stdout.
type Capability struct {
	command  []string
	lookPath func(string) (string, error)
	logger   *slog.Logger

	mu      sync.Mutex
	widgets map[ports.WidgetID]*widget
}

type widget struct {
	overlay *overlay
	opts    ports.RenderOptions
}

type overlay struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	released bool
	widgets  []ports.WidgetID
	owner    *Capability
}

var _ ports.WidgetCapability = (*Capability)(nil)

func New(command []string, logger *slog.Logger) *Capability {
	if logger == nil {
		logger = slog.Default()
	}

	return &Capability{
		command:  append([]string(nil), command...),
		lookPath: osexec.LookPath,
		logger:   logger,
		widgets:  map[ports.WidgetID]*widget{},
	}
}

// Ready reports whether the helper command resolves to an executable.
func (c *Capability) Ready() bool {
	if len(c.command) == 0 {
		return false
	}

	_, err := c.lookPath(c.command[0])
	return err == nil
}

func (c *Capability) Mount(ctx context.Context, req ports.MountRequest) (ports.Overlay, error) {
	if len(c.command) == 0 {
		return nil, errNoCommand
	}

	overlayCtx, cancel := context.WithCancel(ctx)
	return &overlay{id: req.SessionID, ctx: overlayCtx, cancel: cancel, owner: c}, nil
}

func (c *Capability) Render(host ports.Overlay, opts ports.RenderOptions) (ports.WidgetID, error) {
	ov, ok := host.(*overlay)
	if !ok || ov.owner != c {
		return "", fmt.Errorf("render: overlay %q was not mounted by this capability", host.ID())
	}

	ov.mu.Lock()
	defer ov.mu.Unlock()

	if ov.released {
		return "", errOverlayReleased
	}

	id := ports.WidgetID(fmt.Sprintf("%s-%d", ov.id, len(ov.widgets)+1))
	ov.widgets = append(ov.widgets, id)

	c.mu.Lock()
	c.widgets[id] = &widget{overlay: ov, opts: opts}
	c.mu.Unlock()

	return id, nil
}

// Execute starts the helper. The outcome arrives later through the render callbacks.
func (c *Capability) Execute(id ports.WidgetID) error {
	c.mu.Lock()
	w, ok := c.widgets[id]
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("execute %s: %w", id, errUnknownWidget)
	}
	if err := w.overlay.ctx.Err(); err != nil {
		return fmt.Errorf("execute %s: %w", id, errOverlayReleased)
	}

	cmd := osexec.CommandContext(w.overlay.ctx, c.command[0], c.command[1:]...)
	cmd.Env = append(os.Environ(),
		envSiteKey+"="+w.opts.SiteKey,
		envWidgetID+"="+string(id),
		envWidgetSize+"="+w.opts.Size,
		envTheme+"="+w.opts.Theme,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start widget helper: %w", err)
	}
	c.logger.Debug("widget helper started", "widget", id, "pid", cmd.Process.Pid)

	go func() {
		err := cmd.Wait()
		if w.overlay.ctx.Err() != nil {
			return
		}

		if err != nil {
			detail := strings.TrimSpace(stderr.String())
			if detail != "" {
				err = fmt.Errorf("%w: %s", err, detail)
			}
			w.notifyError(fmt.Errorf("widget helper failed: %w", err))
			return
		}

		token := firstLine(stdout.String())
		if token == "" {
			w.notifyError(errEmptyToken)
			return
		}
		if w.opts.Callback != nil {
			w.opts.Callback(token)
		}
	}()

	return nil
}

func (w *widget) notifyError(err error) {
	if w.opts.ErrorCallback != nil {
		w.opts.ErrorCallback(err)
	}
}

func (o *overlay) ID() string {
	return o.id
}

// Release kills a running helper and forgets the overlay's widgets.
func (o *overlay) Release() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.released {
		return errOverlayReleased
	}
	o.released = true
	o.cancel()

	o.owner.mu.Lock()
	for _, id := range o.widgets {
		delete(o.owner.widgets, id)
	}
	o.owner.mu.Unlock()

	return nil
}

func firstLine(output string) string {
	output = strings.TrimSpace(output)
	if i := strings.IndexByte(output, '\n'); i >= 0 {
		output = output[:i]
	}

	return strings.TrimSpace(output)
}
