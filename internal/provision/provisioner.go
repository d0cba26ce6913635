package provision

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"netcompiler/internal/metrics"
)

// Report summarises a provisioning run
type Report struct {
	EnvironmentID string `json:"environment_id" yaml:"environment_id"`
	Name          string `json:"name" yaml:"name"`
	ViewerURL     string `json:"viewer_url" yaml:"viewer_url"`
	Networks      int    `json:"networks" yaml:"networks"`
	Machines      int    `json:"machines" yaml:"machines"`
	Interfaces    int    `json:"interfaces" yaml:"interfaces"`
	Connections   int    `json:"connections" yaml:"connections"`
	Routers       int    `json:"routers" yaml:"routers"`
	Skipped       int    `json:"skipped" yaml:"skipped"`
}

// ViewerURL is where the topology of environment id can be viewed
func ViewerURL(domain, id string) string {
	return fmt.Sprintf("%s/sdi/%s/topology_view/", strings.TrimSuffix(domain, "/"), id)
}

// Provisioner runs the provisioning phases against one store
type Provisioner struct {
	calls    Caller
	store    Store
	log      zerolog.Logger
	metrics  *metrics.Metrics
	progress io.Writer
	opts     Options
	phases   []Phase
}

// New creates a Provisioner running DefaultPhases
func New(calls Caller, store Store, log zerolog.Logger, m *metrics.Metrics, progress io.Writer, opts Options) *Provisioner {
	return &Provisioner{
		calls:    calls,
		store:    store,
		log:      log,
		metrics:  m,
		progress: progress,
		opts:     opts,
		phases:   DefaultPhases(),
	}
}

// Run provisions the stored topology. The report is returned alongside an
// error when the run stopped after the environment was created.
func (p *Provisioner) Run(ctx context.Context) (*Report, error) {
	pctx := &Context{
		Context:  ctx,
		Calls:    p.calls,
		Store:    p.store,
		Log:      p.log,
		Progress: p.progress,
		Metrics:  p.metrics,
		Options:  p.opts,
		State:    &State{},
	}

	err := RunPhases(pctx, p.phases)

	st := pctx.State
	if st.Environment == nil {
		return nil, err
	}
	return &Report{
		EnvironmentID: st.Environment.RemoteID,
		Name:          st.Environment.Name,
		ViewerURL:     ViewerURL(p.opts.Domain, st.Environment.RemoteID),
		Networks:      st.Networks,
		Machines:      st.Machines,
		Interfaces:    st.Interfaces,
		Connections:   st.Connections,
		Routers:       st.Routers,
		Skipped:       st.Skipped,
	}, err
}
