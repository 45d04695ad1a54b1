//go:build integration

package integration_test

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir    string // CODELY_HOME: user-scope agents and config
	ProjectDir string // A mock project directory
}

// setupTestEnv creates isolated temp directories and sets environment variables
// so no operation touches the real home directory. The env vars are restored
// after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:    t.TempDir(),
		ProjectDir: t.TempDir(),
	}

	t.Setenv("CODELY_HOME", env.HomeDir)
	for _, key := range []string{"CODELY_SCOPE", "CODELY_PROJECT_ROOT", "CODELY_LOG_LEVEL", "CODELY_LOG_FORMAT"} {
		t.Setenv(key, "")
	}
	return env
}

func (e *testEnv) projectAgent(name string) string {
	return filepath.Join(e.ProjectDir, ".codely-cli", "agents", name+".toml")
}

func (e *testEnv) userAgent(name string) string {
	return filepath.Join(e.HomeDir, ".codely-cli", "agents", name+".toml")
}

var (
	buildOnce sync.Once
	binPath   string
	buildErr  error
)

// buildBinary compiles the CLI once per test run and returns its path.
func buildBinary(t *testing.T) string {
	t.Helper()
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go toolchain not on PATH")
	}

	buildOnce.Do(func() {
		dir, err := os.MkdirTemp("", "subagent-bin-")
		if err != nil {
			buildErr = err
			return
		}
		name := "subagent"
		if runtime.GOOS == "windows" {
			name += ".exe"
		}
		binPath = filepath.Join(dir, name)

		cmd := exec.Command(goBin, "build", "-o", binPath, ".")
		cmd.Dir = filepath.Join("..", "..")
		if out, err := cmd.CombinedOutput(); err != nil {
			buildErr = errors.New(string(out))
		}
	})
	if buildErr != nil {
		t.Fatalf("building binary: %v", buildErr)
	}
	return binPath
}

// runBinary runs the CLI in dir and returns stdout, stderr and the exit code.
func runBinary(t *testing.T, dir string, args ...string) (string, string, int) {
	t.Helper()
	cmd := exec.Command(buildBinary(t), args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("running %v: %v", args, err)
	}
	return stdout.String(), stderr.String(), code
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// readFile returns the contents of path or fails the test.
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	content := readFile(t, path)
	if !strings.Contains(content, substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, content)
	}
}
