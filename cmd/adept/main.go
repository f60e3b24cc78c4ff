// Command adept generates and reviews project tasks with a language model.
//
// Usage:
//
//	adept serve                              # MCP server over stdio
//	adept project create "Website" -d "..."  # create a project
//	adept tasks generate <project> <objective>
//	adept summarize <project>
//	adept ingest docs/*.html --watch
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"adept/internal/config"
	"adept/internal/logging"
)

// options holds the global flags and the configuration they resolve to.
type options struct {
	configPath string
	verbose    bool
	raw        bool
	timeout    time.Duration

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "adept",
		Short: "adept - LLM task generation for projects",
		Long: `adept breaks objectives into tasks and subtasks, summarizes projects and
answers questions about them, using a local or hosted language model.

Documents ingested into the retrieval index ground every prompt.
The model backend is chosen by llm.service (ollama, openai, gemini);
without one, generation returns nothing and summaries are placeholders.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg

			logger, err := buildLogger(cfg.Logging, opts.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.logger = logger
			logging.SetLogger(logger)
			logging.Configure(cfg.Logging.Categories)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultConfigPath, "Config file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().BoolVar(&opts.raw, "raw", false, "Print model replies without Markdown rendering")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 5*time.Minute, "Operation timeout")

	root.AddCommand(
		newServeCmd(opts),
		newProjectCmd(opts),
		newTasksCmd(opts),
		newSubtasksCmd(opts),
		newSummarizeCmd(opts),
		newAskCmd(opts),
		newIngestCmd(opts),
		newQueryCmd(opts),
	)
	return root
}

// buildLogger builds the process logger. Logs go to stderr so stdout stays
// free for command output and the MCP stdio transport.
func buildLogger(cfg config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc.Encoding = "console"
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
