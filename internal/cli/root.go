// Package cli implements the gen192 command line.
package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/gen192/internal/driver"
	"github.com/roach88/gen192/internal/pipeline"
	"github.com/roach88/gen192/internal/source"
)

// RootOptions holds the flags of the gen192 command.
type RootOptions struct {
	Force bool

	// NewDriver allows overriding how the run is wired (for testing).
	// If nil, defaults to driver.New on the OS filesystem.
	NewDriver func(cfg driver.Config, out io.Writer) *driver.Driver
}

// NewRootCommand creates the gen192 command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen192",
		Short: "Generate the 192 cross-bred C-PAC pipeline configurations",
		Long: `Generate a combinatorial sweep of C-PAC pipeline configurations.

Four base pipelines (ABCD, CCS, RBC, fMRIPrep) are fetched from the C-PAC
repository. For every ordered pair of distinct pipelines and every processing
step, a configuration equal to the first pipeline with that step taken from
the second is written to build/gen192_nofork. Baselines with derivatives
switched off go to build/gen192_pure. Each build folder is zipped into dist/.

Example:
  gen192
  gen192 --force`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "remove existing dist/ and build/ before generating")

	return cmd
}

func runGenerate(opts *RootOptions, cmd *cobra.Command) error {
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))

	cfg := driver.DefaultConfig()
	cfg.Force = opts.Force

	newDriver := opts.NewDriver
	if newDriver == nil {
		newDriver = driver.New
	}
	d := newDriver(cfg, cmd.OutOrStdout())

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := d.Run(ctx)
	if err != nil {
		if errors.Is(err, source.ErrFetch) {
			return WrapExitError(ExitFetchFailure, "failed to fetch base templates", err)
		}
		if pipeline.IsAlreadyExists(err) {
			return WrapExitError(ExitCommandError, "output of a previous run is in the way (rerun with --force)", err)
		}
		return WrapExitError(ExitCommandError, "generation failed", err)
	}

	slog.Info("generation complete",
		"run_id", sum.RunID,
		"pure", sum.Pure,
		"perturbations", sum.Perturbations,
		"warnings", sum.Warnings,
		"identical", sum.Identical,
		"rejected", sum.Rejected,
	)
	return nil
}
