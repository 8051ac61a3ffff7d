// Command adaptivemmd is an adaptive memory-management daemon: it
// watches per-NUMA-node page-allocator state, predicts free-memory
// exhaustion and high-order fragmentation, and reacts by rescaling the
// kernel's watermark-scale factor, triggering compaction, and sizing
// the negative-dentry cache.
//
// Grounded on cmd/consumption/main.go's cobra.Command/RunE shape.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oracle/adaptivemmd/pkg/config"
	"github.com/oracle/adaptivemmd/pkg/daemon"
	"github.com/oracle/adaptivemmd/pkg/logging"
)

type opts struct {
	debug          bool
	verbosity      int
	dryRun         bool
	maxGapGB       int
	aggressiveness int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &opts{aggressiveness: 2}

	cmd := &cobra.Command{
		Use:   "adaptivemmd",
		Short: "Adaptive memory-management daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), o)
		},
		SilenceUsage: true,
	}

	cmd.Flags().BoolVarP(&o.debug, "debug", "d", false, "run in the foreground, log to stdout instead of syslog")
	cmd.Flags().CountVarP(&o.verbosity, "verbose", "v", "increase log verbosity (stackable)")
	cmd.Flags().BoolVarP(&o.dryRun, "dry-run", "s", false, "log candidate actions without writing kernel tunables (implies -d -v -v)")
	cmd.Flags().IntVarP(&o.maxGapGB, "max-gap", "m", 0, "pin max_gap in GB between low and high watermarks (0 = auto)")
	cmd.Flags().IntVarP(&o.aggressiveness, "aggressiveness", "a", 2, "aggressiveness level: 1 (gentle), 2 (default), 3 (aggressive)")

	return cmd
}

func run(ctx context.Context, o *opts) error {
	if o.dryRun {
		o.debug = true
		o.verbosity += 2
	}

	cfg, err := config.Load(config.DefaultPaths)
	if err != nil {
		return fmt.Errorf("adaptivemmd: %w", err)
	}
	if o.maxGapGB > 0 {
		cfg.MaxGap = o.maxGapGB
	}
	if o.verbosity > 0 {
		cfg.Verbose = o.verbosity
	}

	logger, err := logging.Setup(cfg.Verbose, !o.debug)
	if err != nil {
		return fmt.Errorf("adaptivemmd: %w", err)
	}

	profile, err := daemon.ProfileFor(o.aggressiveness)
	if err != nil {
		return fmt.Errorf("adaptivemmd: %w", err)
	}

	st := daemon.NewState(cfg, profile, logger, o.dryRun)
	return daemon.Run(ctx, st)
}
