package agentdef

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/agent.schema.json
var schemaBytes []byte

const schemaResource = "agent.schema.json"

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// SchemaIssue is a single JSON Schema violation.
type SchemaIssue struct {
	Path    string // Instance location (e.g., "/agent/run_config/stream")
	Message string // Human-readable error message
	Keyword string // Schema keyword that failed
}

// getSchema compiles the embedded JSON schema once and returns it.
func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaResource, doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(schemaResource)
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// validateStrict decodes data as TOML and checks it against the embedded
// schema. It returns the decoded definition, or a failing result.
func validateStrict(data []byte) (*Definition, *Result) {
	var raw map[string]interface{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fail(CodeInvalidSyntax, fmt.Sprintf("Invalid TOML at line %d, column %d: %s", row, col, derr.Error()))
		}
		return nil, fail(CodeInvalidSyntax, "Invalid TOML: "+err.Error())
	}

	issues, err := schemaIssues(raw)
	if err != nil {
		return nil, fail(CodeSchemaMismatch, "Could not check schema: "+err.Error())
	}
	if len(issues) > 0 {
		return nil, fail(CodeSchemaMismatch, "Schema violation "+formatIssue(issues[0]))
	}

	var def Definition
	if err := toml.Unmarshal(data, &def); err != nil {
		return nil, fail(CodeSchemaMismatch, "Schema violation: "+err.Error())
	}
	return &def, nil
}

// schemaIssues validates a decoded document against the embedded schema.
// The error return is for schema compilation or conversion failures.
func schemaIssues(doc map[string]interface{}) ([]SchemaIssue, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	// Round-trip through JSON so numbers arrive as json.Number and TOML
	// date/time values as strings.
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("converting to JSON: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("preparing JSON for validation: %w", err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("unexpected validation error type: %w", err)
	}
	return extractIssues(ve), nil
}

func formatIssue(issue SchemaIssue) string {
	if issue.Path == "" {
		return "at document root: " + issue.Message
	}
	return "at " + issue.Path + ": " + issue.Message
}

// extractIssues walks the ValidationError tree and returns leaf-level issues.
func extractIssues(ve *jsonschema.ValidationError) []SchemaIssue {
	var issues []SchemaIssue
	collectIssues(ve, &issues)

	if len(issues) == 0 {
		return []SchemaIssue{{Message: ve.Error()}}
	}
	return deduplicateIssues(issues)
}

// collectIssues recursively walks the error tree to find leaf errors with
// specific property information.
func collectIssues(ve *jsonschema.ValidationError, issues *[]SchemaIssue) {
	if len(ve.Causes) == 0 {
		path := "/" + strings.Join(ve.InstanceLocation, "/")
		if len(ve.InstanceLocation) == 0 {
			path = ""
		}

		keyword, msg := "", ""
		if ve.ErrorKind != nil {
			if kwPath := ve.ErrorKind.KeywordPath(); len(kwPath) > 0 {
				keyword = kwPath[len(kwPath)-1]
			}
			msg = ve.ErrorKind.LocalizedString(printer)
		}

		// Container keywords only say that a nested schema failed.
		if keyword == "allOf" || keyword == "$ref" || keyword == "" {
			return
		}

		*issues = append(*issues, SchemaIssue{Path: path, Message: msg, Keyword: keyword})
		return
	}

	for _, cause := range ve.Causes {
		collectIssues(cause, issues)
	}
}

// deduplicateIssues removes duplicate issues (same path + keyword + message).
func deduplicateIssues(issues []SchemaIssue) []SchemaIssue {
	seen := make(map[string]bool)
	var result []SchemaIssue
	for _, issue := range issues {
		key := issue.Path + "|" + issue.Keyword + "|" + issue.Message
		if !seen[key] {
			seen[key] = true
			result = append(result, issue)
		}
	}
	return result
}
