// Package operator provides task operators that create, close and delete
// Opsgenie alerts. Operators build the request payload and hand it to an
// AlertHook obtained from a HookFactory; the hook owns transport and
// authentication.
package operator

import (
	"context"

	"github.com/alertops/opsgenie/internal/config"
	"github.com/alertops/opsgenie/internal/hook"
	"github.com/alertops/opsgenie/internal/types"
	"github.com/rs/zerolog"
)

// DefaultConnID is used when no connection id is configured
const DefaultConnID = config.DefaultConnID

// AlertHook performs the alert API calls
type AlertHook interface {
	CreateAlert(ctx context.Context, payload types.Payload) (*types.Response, error)
	CloseAlert(ctx context.Context, identifier, identifierType string, payload types.Payload) (*types.Response, error)
	DeleteAlert(ctx context.Context, req types.DeleteAlertRequest) (*types.Response, error)
}

// HookFactory returns the hook for a connection id
type HookFactory func(connID string) (AlertHook, error)

// Operator is a single executable alert task
type Operator interface {
	ID() string
	Execute(ctx context.Context) (*types.Response, error)
}

// Option configures an operator
type Option func(*base)

// WithConnID overrides the connection id
func WithConnID(connID string) Option {
	return func(b *base) {
		if connID != "" {
			b.ConnID = connID
		}
	}
}

// WithHookFactory sets how hooks are obtained
func WithHookFactory(f HookFactory) Option {
	return func(b *base) {
		b.newHook = f
	}
}

// WithLogger sets the operator logger
func WithLogger(logger zerolog.Logger) Option {
	return func(b *base) {
		b.logger = logger
	}
}

// EnvHookFactory resolves connections from the environment only
func EnvHookFactory(logger zerolog.Logger) HookFactory {
	return ConfigHookFactory(&config.Config{}, logger)
}

// ConfigHookFactory resolves connections from cfg, falling back to the
// environment for ids the file does not define.
func ConfigHookFactory(cfg *config.Config, logger zerolog.Logger) HookFactory {
	return func(connID string) (AlertHook, error) {
		conn, err := cfg.ResolveConnection(connID)
		if err != nil {
			return nil, err
		}
		h, err := hook.New(conn, logger)
		if err != nil {
			return nil, err
		}
		return h, nil
	}
}

// base holds what every operator shares
type base struct {
	TaskID string
	ConnID string

	newHook HookFactory
	logger  zerolog.Logger
}

func newBase(taskID string, opts []Option) base {
	b := base{
		TaskID: taskID,
		ConnID: DefaultConnID,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	if b.newHook == nil {
		b.newHook = EnvHookFactory(b.logger)
	}
	b.logger = b.logger.With().
		Str("component", "operator").
		Str("task_id", taskID).
		Str("conn_id", b.ConnID).
		Logger()
	return b
}

// ID returns the task id
func (b *base) ID() string {
	return b.TaskID
}

// hook obtains the hook for this operator's connection
func (b *base) hook() (AlertHook, error) {
	return b.newHook(b.ConnID)
}
