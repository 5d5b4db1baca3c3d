package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/techrun/internal/config"
)

const (
	appName = "techrun"
	version = "v0.6.0"
)

func main() {
	if err := newRootCmd(config.LoadEnv()).Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func newRootCmd(env config.Env) *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Tech momentum scoring and trade-signal pipeline",
		Version: version,
		Long: `techrun scores private technology companies on dual-track momentum
(narrative hype vs. execution build), competitive moat and predicted catalysts,
finds second-order supplier plays and emits ranked trade signals.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel, cmd.ErrOrStderr())
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", env.LogLevel, "Log level (debug|info|warn|error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Score a dataset and export ranked signals",
		Long:  "Loads companies, bottlenecks and graph edges from the data directory, runs the pipeline, stores the run and writes JSON/Markdown reports",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error { return runRun(cmd, env) },
	}
	runCmd.Flags().AddFlagSet(datasetFlags(env))
	runCmd.Flags().AddFlagSet(storageFlags(env))
	runCmd.Flags().String("as-of", "", "As-of date (YYYY-MM-DD or RFC3339, default now)")
	runCmd.Flags().String("out", "out", "Report output directory (empty disables export)")
	runCmd.Flags().String("format", "both", "Report format (json|md|both)")
	runCmd.Flags().Int("top", 10, "Signals shown in the report headline")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve run results over HTTP",
		Long:  "Starts the HTTP API with /signals, /companies/{id}, /plays, /catalysts, /metrics and the /ws/runs event stream",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error { return runServe(cmd, env) },
	}
	serveCmd.Flags().AddFlagSet(datasetFlags(env))
	serveCmd.Flags().AddFlagSet(storageFlags(env))
	serveCmd.Flags().String("addr", env.HTTPAddr, "Listen address")
	serveCmd.Flags().Float64("rps", env.RequestsPerSec, "Per-client request rate limit (0 disables)")
	serveCmd.Flags().Bool("run-on-start", false, "Execute one run before serving")
	serveCmd.Flags().Duration("every", 0, "Re-run the pipeline on this interval (0 disables)")

	explainCmd := &cobra.Command{
		Use:   "explain <company_id>",
		Short: "Explain how one company was scored",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return runExplain(cmd, env, args[0]) },
	}
	explainCmd.Flags().AddFlagSet(datasetFlags(env))
	explainCmd.Flags().String("as-of", "", "As-of date (YYYY-MM-DD or RFC3339, default now)")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect pipeline configuration",
	}
	validateCmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate a pipeline configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return runConfigValidate(cmd, env, args) },
	}
	showCmd := &cobra.Command{
		Use:   "show [path]",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return runConfigShow(cmd, env, args) },
	}
	configCmd.AddCommand(validateCmd, showCmd)

	rootCmd.AddCommand(runCmd, serveCmd, explainCmd, configCmd)
	return rootCmd
}
