package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/codely-labs/subagent/internal/agentdef"
	"github.com/codely-labs/subagent/internal/branding"
	"github.com/codely-labs/subagent/internal/scaffold"
)

// Sources returns the agents directories in priority order: project, then user.
func Sources(projectRoot, homeDir string) ([]Source, error) {
	var sources []Source
	for _, scope := range []scaffold.Scope{scaffold.ScopeProject, scaffold.ScopeUser} {
		dir, err := scaffold.ResolveDir(scope, projectRoot, homeDir)
		if err != nil {
			return nil, err
		}
		sources = append(sources, Source{Name: string(scope), Dir: dir})
	}
	return sources, nil
}

// DiscoverAll lists every agent file in sources and validates each one.
// Agents found in earlier sources take priority; later duplicates are
// returned with Shadowed set. Missing directories are skipped.
func DiscoverAll(sources []Source, opts agentdef.Options) ([]DiscoveredAgent, error) {
	seen := make(map[string]bool)
	var result []DiscoveredAgent

	for _, src := range sources {
		paths, err := agentFiles(src.Dir)
		if err != nil {
			return nil, err
		}

		for _, path := range paths {
			name := baseName(path)
			agent := DiscoveredAgent{
				Name:     name,
				Source:   src.Name,
				Path:     path,
				Shadowed: seen[name],
			}
			if id, err := agentdef.ParseName(name); err == nil {
				agent.AgentID = id.AgentID()
			}

			res, err := agentdef.ValidateFile(path, opts)
			if err != nil {
				return nil, fmt.Errorf("validating %s: %w", path, err)
			}
			agent.Result = res

			seen[name] = true
			result = append(result, agent)
		}
	}

	return result, nil
}

// agentFiles returns the agent files directly inside dir, sorted by name.
func agentFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading agents directory %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !isAgentFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

// isAgentFile returns true for visible files with the artifact extension.
func isAgentFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), branding.ArtifactExt())
}

func baseName(path string) string {
	name := filepath.Base(path)
	return name[:len(name)-len(filepath.Ext(name))]
}
