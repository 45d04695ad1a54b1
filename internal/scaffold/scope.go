package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codely-labs/subagent/internal/branding"
)

// Scope selects where an agent definition is stored.
type Scope string

// Supported scopes.
const (
	ScopeProject Scope = "project"
	ScopeUser    Scope = "user"
)

// ErrInvalidScope is returned for scope names other than project or user.
var ErrInvalidScope = errors.New("invalid scope")

// ParseScope converts a flag value into a Scope. An empty value selects
// ScopeProject.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "", ScopeProject:
		return ScopeProject, nil
	case ScopeUser:
		return ScopeUser, nil
	default:
		return "", fmt.Errorf("%w %q: must be '%s' or '%s'", ErrInvalidScope, s, ScopeProject, ScopeUser)
	}
}

// ResolveDir returns the agents directory for a scope:
// <projectRoot>/.codely-cli/agents or <homeDir>/.codely-cli/agents.
// projectRoot is made absolute; an empty homeDir falls back to the
// current user's home directory.
func ResolveDir(scope Scope, projectRoot, homeDir string) (string, error) {
	var base string
	switch scope {
	case ScopeProject:
		if projectRoot == "" {
			projectRoot = "."
		}
		abs, err := filepath.Abs(projectRoot)
		if err != nil {
			return "", fmt.Errorf("resolving project root %s: %w", projectRoot, err)
		}
		base = abs
	case ScopeUser:
		if homeDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolving home directory: %w", err)
			}
			homeDir = home
		}
		base = homeDir
	default:
		return "", fmt.Errorf("%w %q", ErrInvalidScope, scope)
	}
	return filepath.Join(base, branding.HomeDir(), branding.AgentsDir()), nil
}
