package agentdef

// Reserved identifiers shared by the scaffolder and the validator.
const (
	// ReservedInput is injected by the invoking runtime and may not be
	// redefined by an input schema.
	ReservedInput = "agent_name"

	// TaskInput is always supplied by the calling convention; when declared
	// it must be a required string.
	TaskInput = "task"

	// DelegationTool lets an agent spawn further subagents. The runtime
	// strips it from subagent allowlists.
	DelegationTool = "delegate_to_agent"
)

// Input schema type tags. Any of them may carry OptionalMarker.
const (
	TypeString      = "string"
	TypeNumber      = "number"
	TypeBoolean     = "boolean"
	TypeInteger     = "integer"
	TypeStringList  = "string[]"
	TypeNumberList  = "number[]"
	OptionalMarker  = "?"
	typeStringAlias = "str"
)

// TypeTags lists the supported input schema types in declaration order.
var TypeTags = []string{TypeString, TypeNumber, TypeBoolean, TypeInteger, TypeStringList, TypeNumberList}

// Definition is the logical content of an agent definition artifact.
type Definition struct {
	Description string      `toml:"description" json:"description" yaml:"description"`
	Agent       AgentBlock  `toml:"agent" json:"agent" yaml:"agent"`
	Validation  *Validation `toml:"validation,omitempty" json:"validation,omitempty" yaml:"validation,omitempty"`
	Example     *Example    `toml:"example,omitempty" json:"example,omitempty" yaml:"example,omitempty"`
}

// AgentBlock is the [agent] table.
type AgentBlock struct {
	Name         string    `toml:"name" json:"name" yaml:"name"`
	SystemPrompt string    `toml:"system_prompt" json:"system_prompt" yaml:"system_prompt"`
	Query        string    `toml:"query,omitempty" json:"query,omitempty" yaml:"query,omitempty"`
	RunConfig    RunConfig `toml:"run_config" json:"run_config" yaml:"run_config"`
	Tools        ToolList  `toml:"tools" json:"tools" yaml:"tools"`
	Skills       SkillList `toml:"skills" json:"skills" yaml:"skills"`
}

// RunConfig is the [agent.run_config] table. Stream defaults to false.
type RunConfig struct {
	Stream         bool `toml:"stream" json:"stream" yaml:"stream"`
	MaxTimeMinutes *int `toml:"max_time_minutes,omitempty" json:"max_time_minutes,omitempty" yaml:"max_time_minutes,omitempty"`
	MaxTurns       *int `toml:"max_turns,omitempty" json:"max_turns,omitempty" yaml:"max_turns,omitempty"`
}

// ToolList is the [agent.tools] table. An empty AllowedTools permits all tools.
type ToolList struct {
	AllowedTools []string `toml:"allowed_tools" json:"allowed_tools" yaml:"allowed_tools"`
}

// SkillList is the [agent.skills] table. An empty AllowedSkills permits all skills.
type SkillList struct {
	AllowedSkills []string `toml:"allowed_skills" json:"allowed_skills" yaml:"allowed_skills"`
}

// Validation is the [validation] table.
type Validation struct {
	InputSchema map[string]string `toml:"input_schema" json:"input_schema" yaml:"input_schema"`
}

// Example is the [example] table: one illustrative invocation.
type Example struct {
	Inputs      map[string]interface{} `toml:"inputs" json:"inputs" yaml:"inputs"`
	Description string                 `toml:"description" json:"description" yaml:"description"`
}
