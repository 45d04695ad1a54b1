package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/codely-labs/subagent/internal/agentdef"
	"github.com/codely-labs/subagent/internal/config"
	"github.com/codely-labs/subagent/internal/registry"
	"github.com/spf13/cobra"
)

var (
	listScope       string
	listProjectRoot string
	listStrict      bool
	listJSON        bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List agent definitions",
	Long: `List agent definitions in the project and user agents directories.

Each file is validated; STATUS is ok, warnings or invalid. A project agent
shadows a user agent with the same name.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listScope, "scope", "all", "Scope to list: project, user or all")
	listCmd.Flags().StringVar(&listProjectRoot, "project-root", "", "Project root used by project scope (default .)")
	listCmd.Flags().BoolVar(&listStrict, "strict", false, "Validate with the full TOML decoder and JSON Schema")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	switch listScope {
	case "all", "project", "user":
	default:
		return fmt.Errorf("--scope must be 'project', 'user' or 'all', got %q", listScope)
	}

	projectRoot := listProjectRoot
	if projectRoot == "" {
		projectRoot = config.Get(config.KeyProjectRoot)
	}
	sources, err := registry.Sources(projectRoot, config.HomeDir())
	if err != nil {
		return err
	}

	agents, err := registry.DiscoverAll(sources, agentdef.Options{Strict: listStrict})
	if err != nil {
		return fmt.Errorf("discovering agents: %w", err)
	}

	var entries []registry.DiscoveredAgent
	for _, a := range agents {
		if listScope == "all" || a.Source == listScope {
			entries = append(entries, a)
		}
	}

	if listJSON {
		return printListJSON(cmd, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No agents found. Create one with '%s init <agent-name>'.\n", cmd.Root().Name())
		return nil
	}
	return printListTable(cmd, entries)
}

func printListTable(cmd *cobra.Command, entries []registry.DiscoveredAgent) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tSCOPE\tSTATUS\tPATH")
	for _, e := range entries {
		status := e.Status()
		if e.Shadowed {
			status += " (shadowed)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Name, e.Source, status, e.Path)
	}
	return w.Flush()
}

func printListJSON(cmd *cobra.Command, entries []registry.DiscoveredAgent) error {
	if entries == nil {
		entries = []registry.DiscoveredAgent{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling agent list: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
