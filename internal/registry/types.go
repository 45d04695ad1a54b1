package registry

import "github.com/codely-labs/subagent/internal/agentdef"

// Source is one agents directory to search.
type Source struct {
	Name string // "project" or "user"
	Dir  string // absolute path to the agents directory
}

// Status values reported for a discovered agent.
const (
	StatusOK       = "ok"
	StatusWarnings = "warnings"
	StatusInvalid  = "invalid"
)

// DiscoveredAgent is an agent definition found in a source, together with
// its validation result.
type DiscoveredAgent struct {
	Name     string           `json:"name"`               // base name, e.g. "testing-expert"
	AgentID  string           `json:"agent_id,omitempty"` // empty when the file name is not a valid agent name
	Source   string           `json:"source"`
	Path     string           `json:"path"`
	Shadowed bool             `json:"shadowed"` // a higher-priority source defines the same name
	Result   *agentdef.Result `json:"result"`
}

// Status summarizes the validation result.
func (a DiscoveredAgent) Status() string {
	switch {
	case a.Result == nil || !a.Result.OK:
		return StatusInvalid
	case len(a.Result.Warnings) > 0:
		return StatusWarnings
	default:
		return StatusOK
	}
}
