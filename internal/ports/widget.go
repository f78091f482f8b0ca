package ports

import (
	"context"

	"github.com/bnema/challenge-harvester/internal/domain"
)

type WidgetID string

// Overlay is the host resource a widget renders into. It is released exactly once per session.
type Overlay interface {
	ID() string
	Release() error
}

type MountRequest struct {
	SessionID string
	Strategy  domain.Strategy
}

// RenderOptions configures one widget render. Size is "invisible" for programmatically
// triggered widgets.
type RenderOptions struct {
	SiteKey         string
	Size            string
	Theme           string
	Callback        func(token string)
	ErrorCallback   func(err error)
	ExpiredCallback func()
}

// WidgetCapability is the external challenge widget. Callbacks fire asynchronously and may
// fire more than once per render.
type WidgetCapability interface {
	Ready() bool
	Mount(ctx context.Context, req MountRequest) (Overlay, error)
	Render(host Overlay, opts RenderOptions) (WidgetID, error)
	Execute(id WidgetID) error
}
