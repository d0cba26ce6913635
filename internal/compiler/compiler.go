// Package compiler runs a complete netcompiler pass: authenticate, read
// captures into a fresh store, infer the topology and provision it.
package compiler

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"netcompiler/internal/adapter"
	"netcompiler/internal/codec"
	"netcompiler/internal/config"
	"netcompiler/internal/dispatch"
	"netcompiler/internal/inference"
	"netcompiler/internal/logger"
	"netcompiler/internal/metrics"
	"netcompiler/internal/provision"
	"netcompiler/internal/repository/sqlite"
	"netcompiler/internal/service"
	"netcompiler/internal/session"
)

// Session is the authenticated API session a run provisions through
type Session interface {
	dispatch.Session
	Connect(ctx context.Context) error
	Domain() string
	Username() string
}

// Options selects the captures and the diagnostic output of a run
type Options struct {
	Files []string
	// DumpAll prints the store and VLAN counts after inference
	DumpAll bool
	// Format of the dump, yaml or json
	Format string
}

// Compiler wires the stages of a run together
type Compiler struct {
	cfg     *config.Config
	log     zerolog.Logger
	metrics *metrics.Metrics
	out     io.Writer
	session Session
	runID   string
}

// Option configures a Compiler
type Option func(*Compiler)

// WithSession replaces the session built from the config
func WithSession(s Session) Option {
	return func(c *Compiler) { c.session = s }
}

// WithOutput sets where user-facing progress is written
func WithOutput(w io.Writer) Option {
	return func(c *Compiler) { c.out = w }
}

// WithMetrics sets the collectors the run records into
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Compiler) { c.metrics = m }
}

// New creates a Compiler for cfg
func New(cfg *config.Config, log zerolog.Logger, opts ...Option) *Compiler {
	c := &Compiler{
		cfg:   cfg,
		log:   log,
		out:   os.Stdout,
		runID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = metrics.New()
	}
	if c.session == nil {
		c.session = session.New(cfg.API, cfg.Credentials,
			session.WithLogger(logger.WithComponent(log, "session")))
	}
	return c
}

// RunID identifies this run in logs and in the stored environment binding
func (c *Compiler) RunID() string {
	return c.runID
}

// Metrics returns the collectors of the run
func (c *Compiler) Metrics() *metrics.Metrics {
	return c.metrics
}

// Run executes the pipeline. The report is returned whenever an environment
// was created, even if provisioning stopped early.
func (c *Compiler) Run(ctx context.Context, opts Options) (*provision.Report, error) {
	log := c.log.With().Str("run_id", c.runID).Logger()

	if err := c.session.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	log.Info().Str("api", c.session.BaseURL()).Str("user", c.session.Username()).Msg("session established")

	repo, err := sqlite.New(c.cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer repo.Close()

	fmt.Fprintln(c.out, "Compiling...")

	ingest := service.NewIngestService(repo, logger.WithComponent(log, "ingest"), c.metrics)
	source := adapter.NewPcapAdapter(opts.Files, adapter.WithLogger(logger.WithComponent(log, "pcap")))
	if _, err := source.Sync(ctx, ingest); err != nil {
		return nil, fmt.Errorf("read captures: %w", err)
	}

	engine := inference.NewEngine(repo, logger.WithComponent(log, "inference"), c.metrics)
	if _, err := engine.Run(ctx); err != nil {
		return nil, fmt.Errorf("infer topology: %w", err)
	}

	if opts.DumpAll {
		if err := c.dump(ctx, repo, opts.Format); err != nil {
			return nil, err
		}
	}

	caller := dispatch.NewCaller(c.session, logger.WithComponent(log, "dispatch"), c.metrics)
	calls := dispatch.New(caller, logger.WithComponent(log, "dispatch"))
	prov := provision.New(calls, repo, logger.WithComponent(log, "provision"), c.metrics, c.out, provision.Options{
		Username:          c.session.Username(),
		Description:       strings.Join(opts.Files, ", "),
		EnvironmentPrefix: c.cfg.Provisioning.EnvironmentPrefix,
		NICModel:          c.cfg.Provisioning.NICModel,
		Domain:            c.session.Domain(),
		RunID:             c.runID,
	})

	report, err := prov.Run(ctx)
	if err == nil {
		fmt.Fprintf(c.out, "netcompiler has finished! View your SDI at %s\n", report.ViewerURL)
	}

	if werr := c.metrics.WriteTextfile(c.cfg.Metrics.Textfile); werr != nil {
		log.Warn().Err(werr).Str("path", c.cfg.Metrics.Textfile).Msg("failed to write metrics textfile")
	}
	return report, err
}

func (c *Compiler) dump(ctx context.Context, repo *sqlite.Repository, format string) error {
	snap, err := repo.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot store: %w", err)
	}
	exporter, err := codec.ForFormat(format)
	if err != nil {
		return err
	}
	if err := exporter.Export(snap, c.out); err != nil {
		return fmt.Errorf("export %s: %w", exporter.Format(), err)
	}
	return codec.WriteVLANSummary(snap, c.out)
}
