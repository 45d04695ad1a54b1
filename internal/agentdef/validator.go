package agentdef

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codely-labs/subagent/internal/branding"
)

// Code identifies which rule a validation run tripped on.
type Code string

// Result codes, in the order the checks run.
const (
	CodeNotFound            Code = "not_found"
	CodeNotAFile            Code = "not_a_file"
	CodeWrongExtension      Code = "wrong_extension"
	CodeMissingAgentSection Code = "missing_agent_section"
	CodeMissingDescription  Code = "missing_description"
	CodeMissingName         Code = "missing_name"
	CodeMissingSystemPrompt Code = "missing_system_prompt"
	CodeReservedKey         Code = "reserved_key"
	CodeTaskNotString       Code = "task_not_string"
	CodeTaskOptional        Code = "task_optional"
	CodeInvalidSyntax       Code = "invalid_syntax"
	CodeSchemaMismatch      Code = "schema_mismatch"
)

// ValidMessage prefixes the message of every passing result.
const ValidMessage = "Agent is valid!"

const (
	warnDelegation = "Warning: '" + DelegationTool + "' appears in allowed_tools. It will be removed automatically (anti-recursion)."
	warnStream     = "Warning: stream=true. Subagents are recommended to run non-streaming (stream=false)."
)

// Result is the outcome of validating one artifact. A failing result carries
// exactly one Code: the first rule violated. Warnings are only reported on
// passing results.
type Result struct {
	OK         bool        `json:"ok" yaml:"ok"`
	Code       Code        `json:"code,omitempty" yaml:"code,omitempty"`
	Message    string      `json:"message" yaml:"message"`
	Warnings   []string    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Path       string      `json:"path,omitempty" yaml:"path,omitempty"`
	Definition *Definition `json:"definition,omitempty" yaml:"definition,omitempty"`
}

// Options tunes a validation run.
type Options struct {
	// Strict decodes the artifact with a full TOML parser and checks it
	// against the embedded JSON Schema once the shallow checks pass.
	Strict bool
}

var byteOrderMark = []byte("\xef\xbb\xbf")

func fail(code Code, msg string) *Result {
	return &Result{Code: code, Message: msg}
}

// check inspects a document and returns a failing result, or nil to pass.
type check func(d *document) *Result

// hardChecks run in order; the first failure wins.
var hardChecks = []check{
	checkAgentSection,
	checkDescription,
	checkName,
	checkSystemPrompt,
	checkInputSchema,
}

func checkAgentSection(d *document) *Result {
	if !d.hasTable("agent") {
		return fail(CodeMissingAgentSection, "Missing required [agent] table.")
	}
	return nil
}

func checkDescription(d *document) *Result {
	if !hasStringField(d.region(""), "description") {
		return fail(CodeMissingDescription, "Missing required top-level 'description' (non-empty string).")
	}
	return nil
}

func checkName(d *document) *Result {
	if !hasStringField(d.region("agent"), "name") {
		return fail(CodeMissingName, "Missing required [agent].name (non-empty string).")
	}
	return nil
}

func checkSystemPrompt(d *document) *Result {
	if !hasMultilineField(d.region("agent"), "system_prompt") {
		return fail(CodeMissingSystemPrompt, "Missing required [agent].system_prompt (triple-quoted string).")
	}
	return nil
}

func checkInputSchema(d *document) *Result {
	entries, ok := d.inputSchema()
	if !ok {
		return nil
	}

	if _, reserved := entries[ReservedInput]; reserved {
		return fail(CodeReservedKey,
			`Invalid input_schema: input name "`+ReservedInput+`" is reserved. Rename it to something else.`)
	}

	task, ok := entries[TaskInput]
	if !ok {
		return nil
	}
	typ := ""
	if task.IsString {
		typ = strings.ToLower(strings.TrimSpace(task.Value))
	}
	switch {
	case typ == "":
		return fail(CodeTaskNotString,
			`Invalid input_schema: 'task' is reserved and must be a required string (use task = "string").`)
	case strings.HasSuffix(typ, OptionalMarker):
		return fail(CodeTaskOptional,
			`Invalid input_schema: 'task' is reserved and must be required (do not use '?'). Use task = "string".`)
	case typ != TypeString && typ != typeStringAlias:
		return fail(CodeTaskNotString,
			`Invalid input_schema: 'task' is reserved and must be a string. Use task = "string".`)
	}
	return nil
}

// softChecks returns warnings for discouraged but legal configurations.
func softChecks(d *document) []string {
	var warnings []string
	if d.allowsDelegation() {
		warnings = append(warnings, warnDelegation)
	}
	if d.streams() {
		warnings = append(warnings, warnStream)
	}
	return warnings
}

// Validate checks the raw bytes of an agent definition. It is a pure
// function of data. A leading UTF-8 byte order mark is ignored.
func Validate(data []byte, opts Options) *Result {
	data = bytes.TrimPrefix(data, byteOrderMark)
	d := parseDocument(string(data))
	for _, c := range hardChecks {
		if res := c(d); res != nil {
			return res
		}
	}

	var def *Definition
	if opts.Strict {
		parsed, res := validateStrict(data)
		if res != nil {
			return res
		}
		def = parsed
	}

	warnings := softChecks(d)
	msg := ValidMessage
	if len(warnings) > 0 {
		msg += " " + strings.Join(warnings, " ")
	}
	return &Result{
		OK:         true,
		Message:    msg,
		Warnings:   warnings,
		Definition: def,
	}
}

// ValidateFile validates the artifact at path. Problems with the file's
// presence, kind, extension or content are reported in the Result; the
// error return is reserved for failures to stat or read it.
func ValidateFile(path string, opts Options) (*Result, error) {
	resolved, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path %s: %w", path, err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return withPath(fail(CodeNotFound, "File not found: "+resolved), resolved), nil
		}
		return nil, fmt.Errorf("stat %s: %w", resolved, err)
	}
	if !info.Mode().IsRegular() {
		return withPath(fail(CodeNotAFile, "Not a file: "+resolved), resolved), nil
	}
	ext := branding.ArtifactExt()
	if !strings.EqualFold(filepath.Ext(resolved), ext) {
		return withPath(fail(CodeWrongExtension,
			fmt.Sprintf("Only TOML agent files (%s) are supported by this validator.", ext)), resolved), nil
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", resolved, err)
	}
	return withPath(Validate(data, opts), resolved), nil
}

func withPath(r *Result, path string) *Result {
	r.Path = path
	return r
}
