package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/codely-labs/subagent/internal/branding"
	"github.com/codely-labs/subagent/internal/config"
	"github.com/codely-labs/subagent/internal/logging"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

// ErrReported signals that a command already printed its failure and the
// process should exit non-zero without printing anything else.
var ErrReported = errors.New("failure already reported")

var (
	logLevel  string
	logFormat string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Diagnostic log level: debug, info, warn, error (default warn)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Diagnostic log format: text or json (default text)")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` scaffolds and validates subagent definitions: TOML files
under .codely-cli/agents/ that describe a delegated agent's prompt, tool
allowlist and invocation schema.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}

		level := logLevel
		if level == "" {
			level = config.Get(config.KeyLogLevel)
		}
		format := logFormat
		if format == "" {
			format = config.Get(config.KeyLogFormat)
		}
		if _, err := logging.Setup(cmd.ErrOrStderr(), level, format); err != nil {
			return fmt.Errorf("configuring logging: %w", err)
		}
		return nil
	},
}

// Execute runs the root command with build info injected via ldflags.
// SIGINT and SIGTERM cancel the command context.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx)
}

func execute(ctx context.Context) error {
	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err != nil {
		return err
	}
	// "init --help" without a name still shows help but is a usage failure.
	if cmd == initCmd && helpRequested(cmd) && cmd.Flags().NArg() == 0 {
		return ErrReported
	}
	return nil
}

func helpRequested(cmd *cobra.Command) bool {
	h, err := cmd.Flags().GetBool("help")
	return err == nil && h
}
