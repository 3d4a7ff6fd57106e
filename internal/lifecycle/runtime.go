package lifecycle

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Component is a long-running part of the pipeline with explicit
// startup and shutdown.
type Component interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type namedComponent struct {
	name      string
	component Component
}

// Runtime starts components in registration order and stops them in
// reverse. A failed start rolls back the components already running.
type Runtime struct {
	components []namedComponent
	logger     *log.Entry
}

func NewRuntime() *Runtime {
	return &Runtime{
		logger: log.WithField("service", "runtime"),
	}
}

func (r *Runtime) Register(name string, component Component) {
	if component == nil {
		return
	}
	r.components = append(r.components, namedComponent{name: name, component: component})
}

func (r *Runtime) Start(ctx context.Context) error {
	started := make([]namedComponent, 0, len(r.components))
	for _, entry := range r.components {
		r.logger.WithField("component", entry.name).Info("starting")
		if err := entry.component.Start(ctx); err != nil {
			_ = r.stop(ctx, started)
			return fmt.Errorf("start %s: %w", entry.name, err)
		}
		started = append(started, entry)
	}
	return nil
}

func (r *Runtime) Stop(ctx context.Context) error {
	return r.stop(ctx, r.components)
}

func (r *Runtime) stop(ctx context.Context, components []namedComponent) error {
	var stopErr error
	for i := len(components) - 1; i >= 0; i-- {
		entry := components[i]
		r.logger.WithField("component", entry.name).Info("stopping")
		if err := entry.component.Stop(ctx); err != nil {
			stopErr = errors.Join(stopErr, fmt.Errorf("stop %s: %w", entry.name, err))
		}
	}
	return stopErr
}
