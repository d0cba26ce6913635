package provision

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"netcompiler/internal/dispatch"
	"netcompiler/internal/domain"
	"netcompiler/internal/metrics"
)

// Caller sends named operations to the remote API
type Caller interface {
	Call(ctx context.Context, op string, args dispatch.Args) (*dispatch.Response, error)
	EnvironmentID() string
}

// Store is the part of the repository provisioning reads topology from and
// records bindings in
type Store interface {
	ListNetworks(ctx context.Context) ([]domain.NetworkAggregate, error)
	ListMachines(ctx context.Context) ([]domain.MachineIPs, error)
	ListRouterBindings(ctx context.Context) ([]domain.RouterBinding, error)
	SaveEnvironment(ctx context.Context, env *domain.EnvironmentBinding) error
	SaveNetworkBinding(ctx context.Context, b *domain.NetworkBinding) error
	SaveMachineBinding(ctx context.Context, b *domain.MachineBinding) error
	SaveInterfaceBinding(ctx context.Context, b *domain.InterfaceBinding) error
	ResolveConnection(ctx context.Context, addr string, vlan int) (*domain.Connection, error)
}

// Options controls naming and hardware of provisioned resources
type Options struct {
	// Username selects the user that owns the environment
	Username string
	// Description is attached to the environment
	Description string
	// EnvironmentPrefix names environments <prefix>_<n>
	EnvironmentPrefix string
	// NICModel is the interface model of every created interface
	NICModel string
	// Domain is the scheme and host the viewer URL is built on
	Domain string
	// RunID is stored with the environment binding
	RunID string
}

// State is filled in as phases complete
type State struct {
	Environment *domain.EnvironmentBinding

	Networks    int
	Machines    int
	Interfaces  int
	Connections int
	Routers     int
	Skipped     int
}

// Context carries everything a phase needs
type Context struct {
	context.Context
	Calls    Caller
	Store    Store
	Log      zerolog.Logger
	Progress io.Writer
	Metrics  *metrics.Metrics
	Options  Options
	State    *State
}

// call runs op. ok is false when the call produced no result and the
// caller should skip what depends on it; err is set only when the run
// must stop.
func (c *Context) call(op string, args dispatch.Args) (resp *dispatch.Response, ok bool, err error) {
	resp, err = c.Calls.Call(c, op, args)
	switch {
	case err == nil:
		return resp, true, nil
	case dispatch.IsContractViolation(err):
		return nil, false, err
	default:
		c.State.Skipped++
		c.Log.Warn().Err(err).Str("operation", op).Msg("call produced no result, skipping")
		return nil, false, nil
	}
}

// create runs a creating op and returns the remote id of the new resource.
// A response without an id counts as no result.
func (c *Context) create(kind, op string, args dispatch.Args) (*dispatch.Response, string, error) {
	resp, ok, err := c.call(op, args)
	if err != nil {
		return nil, "", err
	}
	id := ""
	if ok {
		id = resp.String("id")
	}
	if id == "" && ok {
		c.State.Skipped++
		c.Log.Warn().Str("operation", op).Str("body", resp.Text).Msg("response carries no id, skipping")
	}
	c.Metrics.ObserveProvisioned(kind, id != "")
	return resp, id, nil
}
