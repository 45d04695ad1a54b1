package scaffold

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/codely-labs/subagent/internal/agentdef"
	"github.com/codely-labs/subagent/internal/branding"
	"github.com/codely-labs/subagent/internal/platform"
)

//go:embed templates/agent.toml.tmpl
var templateFS embed.FS

const templateName = "templates/agent.toml.tmpl"

var agentTemplate = template.Must(template.ParseFS(templateFS, templateName))

// ErrAlreadyExists is returned when the destination file exists and
// overwriting was not requested. The concrete error is a *ConflictError.
var ErrAlreadyExists = errors.New("agent file already exists")

// ConflictError carries the path of the file that blocked a scaffold.
type ConflictError struct {
	Path string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%v: %s", ErrAlreadyExists, e.Path)
}

func (e *ConflictError) Unwrap() error { return ErrAlreadyExists }

// TemplateData holds the values substituted into the agent template.
type TemplateData struct {
	BaseName    string // e.g., "testing-expert"
	AgentID     string // e.g., "testing_expert"
	DisplayName string // e.g., "Testing Expert"
	Description string // Escaped for a TOML basic string
}

// Options controls where and how an agent definition is written.
type Options struct {
	Scope       Scope
	ProjectRoot string // Used by ScopeProject; defaults to "."
	HomeDir     string // Used by ScopeUser; defaults to os.UserHomeDir()
	Description string // Optional; synthesized from the name when blank
	Overwrite   bool
}

// Result holds the outcome of a scaffold run.
type Result struct {
	Path        string
	Scope       Scope
	Identity    agentdef.Identity
	Description string
	Warnings    []string
}

// NewTemplateData derives all template values from an identity and the
// raw description. A blank description is replaced by the default one.
func NewTemplateData(id agentdef.Identity, description string) *TemplateData {
	return &TemplateData{
		BaseName:    id.BaseName,
		AgentID:     id.AgentID(),
		DisplayName: id.DisplayName(),
		Description: EscapeBasicString(resolveDescription(id, description)),
	}
}

func resolveDescription(id agentdef.Identity, description string) string {
	if desc := strings.TrimSpace(description); desc != "" {
		return desc
	}
	return id.DefaultDescription()
}

var basicStringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
)

// EscapeBasicString makes s safe to embed in a single-line TOML basic
// string: backslashes and quotes are escaped, line breaks collapse to
// spaces, and other control characters become spaces.
func EscapeBasicString(s string) string {
	s = basicStringEscaper.Replace(s)
	s = strings.Map(func(r rune) rune {
		if (r < 0x20 && r != '\t') || r == 0x7f {
			return ' '
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// Render produces the artifact text for data. It performs no I/O.
func Render(data *TemplateData) ([]byte, error) {
	var buf bytes.Buffer
	if err := agentTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", templateName, err)
	}
	return buf.Bytes(), nil
}

// FileName returns the artifact file name for an identity.
func FileName(id agentdef.Identity) string {
	return id.BaseName + branding.ArtifactExt()
}

// Scaffold creates a new agent definition named name. Nothing is written
// when the name or scope is invalid, or when the file exists and
// opts.Overwrite is not set.
func Scaffold(name string, opts Options) (*Result, error) {
	id, err := agentdef.ParseName(name)
	if err != nil {
		return nil, err
	}

	scope := opts.Scope
	if scope == "" {
		scope = ScopeProject
	}
	dir, err := ResolveDir(scope, opts.ProjectRoot, opts.HomeDir)
	if err != nil {
		return nil, err
	}

	data := NewTemplateData(id, opts.Description)
	content, err := Render(data)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating agents directory: %w", err)
	}

	outPath := filepath.Join(dir, FileName(id))
	if _, err := os.Lstat(outPath); err == nil {
		if !opts.Overwrite {
			return nil, &ConflictError{Path: outPath}
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("checking %s: %w", outPath, err)
	}

	if err := platform.WriteFileAtomic(outPath, content, 0644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", outPath, err)
	}

	result := &Result{
		Path:        outPath,
		Scope:       scope,
		Identity:    id,
		Description: resolveDescription(id, opts.Description),
	}

	// Validate the generated artifact the same way users will.
	valResult, valErr := agentdef.ValidateFile(outPath, agentdef.Options{Strict: true})
	switch {
	case valErr != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not validate agent file: %v", valErr))
	case !valResult.OK:
		result.Warnings = append(result.Warnings, valResult.Message)
	default:
		result.Warnings = append(result.Warnings, valResult.Warnings...)
	}

	return result, nil
}
