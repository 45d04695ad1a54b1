// Package agentdef holds the agent definition data model and its validator.
//
// An agent definition is a small TOML artifact describing a subagent: its
// description, [agent] identity and system prompt, tool and skill allowlists,
// run config, and the [validation] input schema used by the delegation
// wrapper. Identities are derived from a normalized base name and never
// stored independently.
//
// Validation is deliberately shallow. The raw text is masked (comments and
// multi-line string bodies blanked out), split into table regions, and a
// handful of field-level patterns are checked in a fixed order. Content
// problems are reported as a Result, never as an error; the error return is
// reserved for storage failures. Strict mode additionally decodes the file
// with a real TOML parser and checks it against an embedded JSON Schema.
package agentdef
