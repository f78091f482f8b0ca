package domain

import (
	"errors"
	"fmt"
)

var (
	ErrWidgetUnavailable = errors.New("challenge widget unavailable")
	ErrWidgetTimeout     = errors.New("challenge widget timed out")
	ErrSessionCancelled  = errors.New("widget session cancelled")
	ErrStopped           = errors.New("scheduler stopped")
	ErrAlreadyStarted    = errors.New("scheduler already started")
	ErrNotStarted        = errors.New("scheduler not started")
	ErrTokenRequired     = errors.New("no token provided")
	ErrNoTokens          = errors.New("no tokens stored yet")
	ErrSecretNotFound    = errors.New("secret not found")
)

type WidgetStage string

const (
	WidgetStageRender   WidgetStage = "render"
	WidgetStageExecute  WidgetStage = "execute"
	WidgetStageCallback WidgetStage = "error-callback"
)

// WidgetError is an explicit rejection signalled by the widget capability.
type WidgetError struct {
	Stage WidgetStage
	Err   error
}

func (e *WidgetError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("challenge widget %s failed", e.Stage)
	}

	return fmt.Sprintf("challenge widget %s failed: %v", e.Stage, e.Err)
}

func (e *WidgetError) Unwrap() error {
	return e.Err
}

// SubmitError is a transport or endpoint failure while delivering a token.
type SubmitError struct {
	StatusCode int
	Err        error
}

func (e *SubmitError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("submit token: endpoint returned status %d: %v", e.StatusCode, e.Err)
	}

	return fmt.Sprintf("submit token: %v", e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// ConfigError aborts startup; the scheduler must not run with it.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}

	return fmt.Sprintf("invalid configuration %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func NewConfigError(field string, format string, args ...any) error {
	return &ConfigError{Field: field, Err: fmt.Errorf(format, args...)}
}

func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}
