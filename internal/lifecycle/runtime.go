package lifecycle

import (
	"context"
	"errors"
	"sync"

	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Component is a background part of the process with a managed lifetime.
type Component interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type namedComponent struct {
	name string
	Component
}

// Runtime starts components in registration order and stops the started ones
// in reverse.
type Runtime struct {
	mu         sync.Mutex
	components []namedComponent
	started    []namedComponent
}

func NewRuntime() *Runtime {
	return &Runtime{}
}

func (r *Runtime) Register(name string, component Component) {
	if component == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components = append(r.components, namedComponent{name: name, Component: component})
}

func (r *Runtime) getLogEntry() *log.Entry {
	return log.WithField("object", "Runtime")
}

// Start starts every component. If one fails, those already started are
// stopped again and the error is returned.
func (r *Runtime) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, component := range r.components {
		if err := component.Start(ctx); err != nil {
			_ = r.stopStarted(ctx)
			return pkgerrors.Wrapf(err, "start %s", component.name)
		}
		r.started = append(r.started, component)
		r.getLogEntry().WithField("component", component.name).Debug("started")
	}
	return nil
}

func (r *Runtime) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopStarted(ctx)
}

func (r *Runtime) stopStarted(ctx context.Context) error {
	var stopErr error
	for i := len(r.started) - 1; i >= 0; i-- {
		component := r.started[i]
		if err := component.Stop(ctx); err != nil {
			r.getLogEntry().WithField("component", component.name).WithError(err).Warn("stop failed")
			stopErr = errors.Join(stopErr, pkgerrors.Wrapf(err, "stop %s", component.name))
			continue
		}
		r.getLogEntry().WithField("component", component.name).Debug("stopped")
	}
	r.started = nil
	return stopErr
}
