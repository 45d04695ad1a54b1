package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/codely-labs/subagent/internal/branding"
	"github.com/codely-labs/subagent/internal/config"
	"github.com/codely-labs/subagent/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	initScope       string
	initProjectRoot string
	initDescription string
	initForce       bool
)

func init() {
	initCmd.Flags().StringVar(&initScope, "scope", "", "Where to create the agent: project or user (default project)")
	initCmd.Flags().StringVar(&initProjectRoot, "project-root", "", "Project root used by project scope (default .)")
	initCmd.Flags().StringVar(&initDescription, "description", "", "One-line description of the agent")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing agent file")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:     "init <agent-name>",
	Aliases: []string{"new", "create"},
	Short:   "Scaffold a new subagent definition",
	Long: `Scaffold a new subagent definition from the built-in template.

The file is written to <project-root>/.codely-cli/agents/<agent-name>.toml
(project scope) or ~/.codely-cli/agents/<agent-name>.toml (user scope).
Agent names use lowercase letters, digits, hyphens and underscores.

Examples:
  subagent init testing-expert
  subagent init code-reviewer --scope user --description "Reviews diffs for bugs"
  subagent init docs-writer --project-root ../app --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("missing <agent-name>; run '%s init --help' for usage", branding.CLIName())
		}
		name := args[0]

		scopeName := initScope
		if scopeName == "" {
			scopeName = config.Get(config.KeyScope)
		}
		scope, err := scaffold.ParseScope(scopeName)
		if err != nil {
			return err
		}

		projectRoot := initProjectRoot
		if projectRoot == "" {
			projectRoot = config.Get(config.KeyProjectRoot)
		}

		opts := scaffold.Options{
			Scope:       scope,
			ProjectRoot: projectRoot,
			HomeDir:     config.HomeDir(),
			Description: initDescription,
			Overwrite:   initForce,
		}
		slog.Debug("scaffolding agent", "name", name, "scope", scope, "project_root", projectRoot, "force", initForce)

		out := cmd.OutOrStdout()
		result, err := scaffold.Scaffold(name, opts)
		var conflict *scaffold.ConflictError
		if errors.As(err, &conflict) {
			fmt.Fprintf(out, "[ERROR] Agent file already exists: %s\n", conflict.Path)
			fmt.Fprintln(out, "        Re-run with --force to overwrite.")
			return ErrReported
		}
		if err != nil {
			return err
		}

		slog.Info("agent file written", "path", result.Path)
		printScaffoldResult(out, result)
		return nil
	},
}

func printScaffoldResult(w io.Writer, r *scaffold.Result) {
	fmt.Fprintln(w, "[OK] Agent scaffold created")
	fmt.Fprintf(w, "     Scope: %s\n", r.Scope)
	fmt.Fprintf(w, "     File:  %s\n", r.Path)
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "[WARN] %s\n", warning)
	}

	fmt.Fprintln(w, "\nNext steps:")
	fmt.Fprintln(w, "1) Edit system_prompt / tools / input_schema as needed")
	fmt.Fprintln(w, "2) In Codely CLI: run /agents reload")
	fmt.Fprintf(w, "3) Select it with @%s and delegate a real task\n", r.Identity.AgentID())
}
