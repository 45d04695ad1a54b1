package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/codely-labs/subagent/internal/agentdef"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

// Output formats for validate.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

var (
	validateStrict bool
	validateOutput string
	validateWatch  bool
)

func init() {
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Also decode the file as TOML and check it against the agent JSON Schema")
	validateCmd.Flags().StringVarP(&validateOutput, "output", "o", outputText, "Output format: text, json or yaml")
	validateCmd.Flags().BoolVar(&validateWatch, "watch", false, "Re-validate whenever the file changes (Ctrl+C to stop)")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:     "validate <path>",
	Aliases: []string{"check"},
	Short:   "Validate a subagent definition",
	Long: `Validate a subagent definition file.

Hard checks fail the run; warnings are appended to the success message.
The exit code is 0 when the file is valid and 1 otherwise.

Examples:
  subagent validate .codely-cli/agents/testing-expert.toml
  subagent validate agent.toml --strict --output json
  subagent validate agent.toml --watch`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch validateOutput {
		case outputText, outputJSON, outputYAML:
		default:
			return fmt.Errorf("--output must be %q, %q or %q, got %q", outputText, outputJSON, outputYAML, validateOutput)
		}

		opts := agentdef.Options{Strict: validateStrict}
		out := cmd.OutOrStdout()

		if validateWatch {
			return watchAgent(cmd.Context(), out, args[0], opts, validateOutput)
		}

		res, err := agentdef.ValidateFile(args[0], opts)
		if err != nil {
			return err
		}
		slog.Debug("validated agent", "path", res.Path, "ok", res.OK, "code", res.Code, "warnings", len(res.Warnings))

		if err := printValidation(out, res, validateOutput); err != nil {
			return err
		}
		if !res.OK {
			return ErrReported
		}
		return nil
	},
}

func printValidation(w io.Writer, res *agentdef.Result, format string) error {
	switch format {
	case outputJSON:
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling result: %w", err)
		}
		fmt.Fprintln(w, string(data))
	case outputYAML:
		data, err := yaml.Marshal(res)
		if err != nil {
			return fmt.Errorf("marshaling result: %w", err)
		}
		fmt.Fprint(w, string(data))
	default:
		fmt.Fprintln(w, res.Message)
	}
	return nil
}

// watchAgent validates path once, then again on every change to it, until
// ctx is cancelled. The parent directory is watched so editors that save by
// renaming a temp file are still seen.
func watchAgent(ctx context.Context, w io.Writer, path string, opts agentdef.Options, format string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(abs)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	run := func() error {
		res, err := agentdef.ValidateFile(abs, opts)
		if err != nil {
			// Storage errors are transient while an editor rewrites the file.
			fmt.Fprintf(w, "[ERROR] %v\n", err)
			return nil
		}
		return printValidation(w, res, format)
	}

	if err := run(); err != nil {
		return err
	}
	slog.Info("watching agent file", "path", abs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			slog.Debug("agent file changed", "path", abs, "op", ev.Op.String())
			if err := run(); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("file watcher error", "error", err)
		}
	}
}
