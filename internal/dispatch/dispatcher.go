package dispatch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Dispatcher passes each call along a fixed handler chain
type Dispatcher struct {
	handlers []Handler
	scope    *Scope
	log      zerolog.Logger
}

// New builds the standard chain: environment, machine, network
func New(exec Executor, log zerolog.Logger) *Dispatcher {
	scope := &Scope{}
	return NewChain(scope, log,
		NewEnvironmentHandler(exec, scope),
		NewMachineHandler(exec, scope),
		NewNetworkHandler(exec, scope),
	)
}

// NewChain builds a dispatcher over handlers sharing scope
func NewChain(scope *Scope, log zerolog.Logger, handlers ...Handler) *Dispatcher {
	return &Dispatcher{handlers: handlers, scope: scope, log: log}
}

// Call runs op with args on the first handler that recognises it
func (d *Dispatcher) Call(ctx context.Context, op string, args Args) (*Response, error) {
	for _, h := range d.handlers {
		resp, handled, err := h.Handle(ctx, op, args)
		if handled {
			return resp, err
		}
	}

	d.log.Error().Str("operation", op).Msg("no handler for operation")
	return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, op)
}

// EnvironmentID returns the environment the chain currently targets
func (d *Dispatcher) EnvironmentID() string {
	return d.scope.EnvironmentID()
}

// SetEnvironmentID points the chain at an existing environment
func (d *Dispatcher) SetEnvironmentID(id string) {
	d.scope.SetEnvironmentID(id)
}
