package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/spektr-org/mirrorloop/internal/config"
	"github.com/spektr-org/mirrorloop/internal/logging"
)

// Version is the CLI version.
const Version = "1.0.0"

// RootOptions holds flags that are not configuration keys.
type RootOptions struct {
	ConfigPath string
}

// NewRootCommand creates the mirrorloop command. Run without arguments it
// reproduces the canonical figures and summary from the cached results.
func NewRootCommand(fs afero.Fs) *cobra.Command {
	opts := &RootOptions{}
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "mirrorloop",
		Short: "Mirror Loop analysis: ΔI and novelty curves from cached results",
		Long: `Loads the cached Mirror Loop results (or synthesizes a demo curve when the
file is absent), pools them by iteration, writes the ΔI and 3-gram novelty
charts and prints the early/late ΔI comparison.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigPath, cmd.Flags())
			if err != nil {
				return err
			}

			runID := uuid.NewString()
			logger := logging.NewFromConfig(cfg.Logging, cmd.ErrOrStderr()).With("run_id", runID)
			logging.SetGlobal(logger)
			ctx := logging.WithLogger(cmd.Context(), logger)

			runner := &Runner{
				Fs:     fs,
				Out:    cmd.OutOrStdout(),
				Config: cfg,
				NewID:  func() string { return runID },
			}
			if _, err := runner.Run(ctx); err != nil {
				logger.Debug("Run failed", "trace", fmt.Sprintf("%+v", err))
				return err
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.ConfigPath, "config", "", "config file (default ./mirrorloop.yaml if present)")
	f.String("data", defaults.Data.Path, "results CSV; synthetic data is used when it does not exist")
	f.String("figures-dir", defaults.Figures.Dir, "directory for the PNG figures")
	f.Int64("seed", defaults.Synthetic.Seed, "seed for synthetic data (0 = time-based)")
	f.StringSlice("model", nil, "only pool rows of these models")
	f.StringSlice("condition", nil, "only pool rows of these conditions")
	f.String("format", defaults.Output.Format, "summary format (text|json|yaml)")
	f.String("summary-out", "", "also write the summary to this .json/.yaml file")
	f.Bool("table", false, "print the per-iteration table before the summary")
	f.String("log-level", defaults.Logging.Level, "log level (debug|info|warn|error)")
	f.String("log-format", defaults.Logging.Format, "log format (console|json)")

	cmd.AddCommand(newVersionCommand())

	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mirrorloop %s\n", Version)
		},
	}
}
