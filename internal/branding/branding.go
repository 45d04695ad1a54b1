// Package branding provides compile-time identity values for the CLI.
//
// The embedded branding.yaml is baked into the binary with //go:embed. It
// names the dot-directory that hosts agent definitions and the artifact
// extension both the scaffolder and the validator agree on.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName     string `yaml:"cli_name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	HomeDir     string `yaml:"home_dir"`
	AgentsDir   string `yaml:"agents_dir"`
	ArtifactExt string `yaml:"artifact_ext"`
	EnvPrefix   string `yaml:"env_prefix"`
}

func load() {
	once.Do(func() {
		// Set hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:     "subagent",
			DisplayName: "Codely Subagent Creator",
			Description: "Scaffold and validate Codely CLI subagent definitions",
			HomeDir:     ".codely-cli",
			AgentsDir:   "agents",
			ArtifactExt: ".toml",
			EnvPrefix:   "CODELY",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "subagent").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name (e.g., ".codely-cli") used under
// both the project root and the user's home directory.
func HomeDir() string { load(); return defaults.HomeDir }

// AgentsDir returns the subdirectory of HomeDir holding agent definitions.
func AgentsDir() string { load(); return defaults.AgentsDir }

// ArtifactExt returns the agent definition file extension, including the dot.
func ArtifactExt() string { load(); return defaults.ArtifactExt }

// EnvPrefix returns the environment variable prefix (e.g., "CODELY").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("home") → "CODELY_HOME".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
