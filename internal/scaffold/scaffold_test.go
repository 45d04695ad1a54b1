package scaffold

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/codely-labs/subagent/internal/agentdef"
)

func TestNewTemplateData(t *testing.T) {
	t.Run("derived values", func(t *testing.T) {
		id, err := agentdef.ParseName("testing-expert")
		if err != nil {
			t.Fatalf("ParseName() error: %v", err)
		}
		d := NewTemplateData(id, "")
		if d.AgentID != "testing_expert" {
			t.Errorf("AgentID = %q, want %q", d.AgentID, "testing_expert")
		}
		if d.DisplayName != "Testing Expert" {
			t.Errorf("DisplayName = %q, want %q", d.DisplayName, "Testing Expert")
		}
		if d.Description != "Specialized agent for testing expert tasks" {
			t.Errorf("Description = %q", d.Description)
		}
	})

	t.Run("explicit description is escaped", func(t *testing.T) {
		id, _ := agentdef.ParseName("quoter")
		d := NewTemplateData(id, `  Says "hi" to C:\temp  `)
		want := `Says \"hi\" to C:\\temp`
		if d.Description != want {
			t.Errorf("Description = %q, want %q", d.Description, want)
		}
	})

	t.Run("whitespace description uses default", func(t *testing.T) {
		id, _ := agentdef.ParseName("x")
		d := NewTemplateData(id, " \n\t ")
		if d.Description != "Specialized agent for x tasks" {
			t.Errorf("Description = %q", d.Description)
		}
	})
}

func TestEscapeBasicString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{`a "quoted" word`, `a \"quoted\" word`},
		{`back\slash`, `back\\slash`},
		{"two\nlines", "two lines"},
		{"crlf\r\nline", "crlf line"},
		{"bare\rcr", "bare cr"},
		{"bell\x07char", "bell char"},
		{"keeps\ttab", "keeps\ttab"},
		{"\ntrimmed\n", "trimmed"},
	}
	for _, tt := range tests {
		if got := EscapeBasicString(tt.in); got != tt.want {
			t.Errorf("EscapeBasicString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderGolden(t *testing.T) {
	id, _ := agentdef.ParseName("testing-expert")
	got, err := Render(NewTemplateData(id, ""))
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	want, err := os.ReadFile(filepath.Join("testdata", "testing-expert.golden.toml"))
	if err != nil {
		t.Fatalf("reading golden: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("rendered output differs from golden file\n--- got ---\n%s\n--- want ---\n%s", got, want)
	}
}

func TestScaffoldProjectScope(t *testing.T) {
	root := t.TempDir()

	result, err := Scaffold("testing-expert", Options{ProjectRoot: root})
	if err != nil {
		t.Fatalf("Scaffold() error: %v", err)
	}

	wantPath := filepath.Join(root, ".codely-cli", "agents", "testing-expert.toml")
	if result.Path != wantPath {
		t.Errorf("Path = %q, want %q", result.Path, wantPath)
	}
	if result.Scope != ScopeProject {
		t.Errorf("Scope = %q, want %q", result.Scope, ScopeProject)
	}
	if result.Description != "Specialized agent for testing expert tasks" {
		t.Errorf("Description = %q", result.Description)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", result.Warnings)
	}

	content := readGenerated(t, result.Path)
	assertContains(t, content, `description = "Specialized agent for testing expert tasks"`)
	assertContains(t, content, `name = "testing_expert"`)
	assertContains(t, content, "You are the Testing Expert agent.")
	assertContains(t, content, "stream = false")
	assertNotContains(t, content, "{{")
}

func TestScaffoldUserScope(t *testing.T) {
	home := t.TempDir()

	result, err := Scaffold("reviewer", Options{Scope: ScopeUser, HomeDir: home})
	if err != nil {
		t.Fatalf("Scaffold() error: %v", err)
	}

	wantPath := filepath.Join(home, ".codely-cli", "agents", "reviewer.toml")
	if result.Path != wantPath {
		t.Errorf("Path = %q, want %q", result.Path, wantPath)
	}
	if _, err := os.Stat(result.Path); err != nil {
		t.Errorf("expected file at %s: %v", result.Path, err)
	}
}

func TestScaffoldStripsExtension(t *testing.T) {
	root := t.TempDir()

	result, err := Scaffold("  code-reviewer.TOML ", Options{ProjectRoot: root})
	if err != nil {
		t.Fatalf("Scaffold() error: %v", err)
	}
	if filepath.Base(result.Path) != "code-reviewer.toml" {
		t.Errorf("file name = %q, want %q", filepath.Base(result.Path), "code-reviewer.toml")
	}
	if result.Identity.BaseName != "code-reviewer" {
		t.Errorf("BaseName = %q, want %q", result.Identity.BaseName, "code-reviewer")
	}
}

func TestScaffoldRoundTrip(t *testing.T) {
	names := []string{"a", "x1", "testing-expert", "data_pipeline", "multi-part-name-here", "0day", "a--b", "trailing_"}
	descriptions := []string{"", `Has "quotes" and \ backslash`, "line one\nline two"}

	for _, name := range names {
		for _, desc := range descriptions {
			root := t.TempDir()
			result, err := Scaffold(name, Options{ProjectRoot: root, Description: desc})
			if err != nil {
				t.Fatalf("Scaffold(%q, %q) error: %v", name, desc, err)
			}

			for _, strict := range []bool{false, true} {
				vr, err := agentdef.ValidateFile(result.Path, agentdef.Options{Strict: strict})
				if err != nil {
					t.Fatalf("ValidateFile(%s) error: %v", result.Path, err)
				}
				if !vr.OK {
					t.Errorf("Scaffold(%q, %q) strict=%v: not valid: %s", name, desc, strict, vr.Message)
				}
				if len(vr.Warnings) != 0 {
					t.Errorf("Scaffold(%q, %q) strict=%v: warnings %v", name, desc, strict, vr.Warnings)
				}
			}
		}
	}
}

func TestScaffoldOutputDecodes(t *testing.T) {
	root := t.TempDir()
	result, err := Scaffold("docs-writer", Options{ProjectRoot: root, Description: `Writes "docs"` + "\nfast"})
	if err != nil {
		t.Fatalf("Scaffold() error: %v", err)
	}

	raw, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	var def agentdef.Definition
	if err := toml.Unmarshal(raw, &def); err != nil {
		t.Fatalf("toml.Unmarshal() error: %v", err)
	}

	if def.Description != `Writes "docs" fast` {
		t.Errorf("Description = %q", def.Description)
	}
	if result.Description != "Writes \"docs\"\nfast" {
		t.Errorf("Result.Description = %q, want the unescaped input", result.Description)
	}
	if def.Agent.Name != "docs_writer" {
		t.Errorf("Agent.Name = %q, want %q", def.Agent.Name, "docs_writer")
	}
	if def.Agent.RunConfig.Stream {
		t.Error("RunConfig.Stream = true, want false")
	}
	if def.Validation == nil || def.Validation.InputSchema["task"] != "string" {
		t.Errorf("InputSchema = %v, want task=string", def.Validation)
	}
	if _, ok := def.Validation.InputSchema[agentdef.ReservedInput]; ok {
		t.Errorf("InputSchema must not contain %q", agentdef.ReservedInput)
	}
	if def.Example == nil || def.Example.Description != "Example invocation" {
		t.Errorf("Example = %+v", def.Example)
	}
}

func TestScaffoldConflict(t *testing.T) {
	root := t.TempDir()
	first, err := Scaffold("conflict", Options{ProjectRoot: root})
	if err != nil {
		t.Fatalf("first Scaffold() error: %v", err)
	}

	sentinel := []byte("# hand edited\n")
	if err := os.WriteFile(first.Path, sentinel, 0644); err != nil {
		t.Fatal(err)
	}

	_, err = Scaffold("conflict", Options{ProjectRoot: root, Description: "other"})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if !strings.Contains(err.Error(), first.Path) {
		t.Errorf("error %q should mention %s", err, first.Path)
	}
	var conflict *ConflictError
	if !errors.As(err, &conflict) || conflict.Path != first.Path {
		t.Errorf("expected *ConflictError for %s, got %#v", first.Path, err)
	}
	if got := readGenerated(t, first.Path); got != string(sentinel) {
		t.Errorf("existing file was modified: %q", got)
	}
}

func TestScaffoldOverwrite(t *testing.T) {
	root := t.TempDir()
	first, err := Scaffold("replaced", Options{ProjectRoot: root})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(first.Path, []byte("junk"), 0644); err != nil {
		t.Fatal(err)
	}

	second, err := Scaffold("replaced", Options{ProjectRoot: root, Description: "Fresh copy", Overwrite: true})
	if err != nil {
		t.Fatalf("Scaffold() with Overwrite error: %v", err)
	}
	content := readGenerated(t, second.Path)
	assertContains(t, content, `description = "Fresh copy"`)
	assertNotContains(t, content, "junk")
}

func TestScaffoldInvalidName(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"", "   ", "Bad-Name", "has space", "-leading", "dot.ted", strings.Repeat("a", 81)} {
		_, err := Scaffold(name, Options{ProjectRoot: root})
		if !errors.Is(err, agentdef.ErrInvalidName) {
			t.Errorf("Scaffold(%q) error = %v, want ErrInvalidName", name, err)
		}
	}

	// Nothing may be created for rejected names.
	if _, err := os.Stat(filepath.Join(root, ".codely-cli")); !os.IsNotExist(err) {
		t.Errorf("agents directory should not exist, stat err = %v", err)
	}
}

func TestScaffoldInvalidScope(t *testing.T) {
	root := t.TempDir()
	_, err := Scaffold("scoped", Options{Scope: Scope("global"), ProjectRoot: root})
	if !errors.Is(err, ErrInvalidScope) {
		t.Fatalf("expected ErrInvalidScope, got %v", err)
	}
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		in      string
		want    Scope
		wantErr bool
	}{
		{"", ScopeProject, false},
		{"project", ScopeProject, false},
		{"user", ScopeUser, false},
		{"global", "", true},
		{"Project", "", true},
	}
	for _, tt := range tests {
		got, err := ParseScope(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidScope) {
				t.Errorf("ParseScope(%q) error = %v, want ErrInvalidScope", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseScope(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseScope(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveDir(t *testing.T) {
	root := t.TempDir()
	got, err := ResolveDir(ScopeProject, root, "")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(root, ".codely-cli", "agents"); got != want {
		t.Errorf("ResolveDir(project) = %q, want %q", got, want)
	}

	home := t.TempDir()
	got, err = ResolveDir(ScopeUser, "/ignored", home)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".codely-cli", "agents"); got != want {
		t.Errorf("ResolveDir(user) = %q, want %q", got, want)
	}
}

// --- helpers ---

func readGenerated(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func assertContains(t *testing.T, content, substr string) {
	t.Helper()
	if !strings.Contains(content, substr) {
		t.Errorf("expected content to contain %q", substr)
	}
}

func assertNotContains(t *testing.T, content, substr string) {
	t.Helper()
	if strings.Contains(content, substr) {
		t.Errorf("expected content NOT to contain %q", substr)
	}
}
