// Package commands defines the netcompiler command line.
package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"netcompiler/internal/compiler"
	"netcompiler/internal/config"
	"netcompiler/internal/logger"
)

type rootOptions struct {
	files      []string
	all        bool
	version    bool
	configPath string
	format     string
}

// Root returns the root command. Capture paths come from --files and from
// positional arguments.
func Root() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "netcompiler [-f PATH...] [PATH...]",
		Short: "Compile packet captures into provisioned network environments",
		Long: "Compile network information files into provisioned environments.\n" +
			"Reads classic pcap and pcapng files, or directories of them.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&opts.files, "files", "f", nil, "path to one or more capture files or directories of capture files")
	flags.BoolVarP(&opts.all, "all", "a", false, "display all available information while compiling")
	flags.BoolVarP(&opts.version, "version", "v", false, "print the version number")
	flags.StringVar(&opts.configPath, "config", "", "config file (default: search standard locations)")
	flags.StringVar(&opts.format, "format", "yaml", "format of the --all store dump (yaml, json)")

	cmd.AddCommand(Version())
	return cmd
}

func runRoot(cmd *cobra.Command, opts *rootOptions, args []string) error {
	if opts.version {
		fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\n", version)
		return nil
	}

	files := append(append([]string(nil), opts.files...), args...)
	if len(files) == 0 {
		cmd.SetOut(cmd.ErrOrStderr())
		return cmd.Help()
	}

	cfg, path, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.all {
		cfg.Logging.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log.Debug().Str("config", path).Str("summary", cfg.Summary()).Msg("configuration loaded")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := compiler.New(cfg, log, compiler.WithOutput(cmd.OutOrStdout()))
	_, err = c.Run(ctx, compiler.Options{Files: files, DumpAll: opts.all, Format: opts.format})
	return err
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}
