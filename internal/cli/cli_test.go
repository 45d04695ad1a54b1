package cli

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// minimalAgent passes every hard check.
const minimalAgent = `description = "Does things"

[agent]
name = "doer"
system_prompt = """
Do the thing.
"""
`

// setupEnv isolates a test from the user's home, config and working
// directory. It returns the working and home directories.
func setupEnv(t *testing.T) (work, home string) {
	t.Helper()
	work = t.TempDir()
	home = t.TempDir()

	t.Setenv("CODELY_HOME", home)
	for _, key := range []string{"CODELY_SCOPE", "CODELY_PROJECT_ROOT", "CODELY_LOG_LEVEL", "CODELY_LOG_FORMAT"} {
		t.Setenv(key, "")
	}
	t.Chdir(work)

	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		viper.Reset()
	})
	return work, home
}

// runCLI executes the root command with args and captures its output.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	viper.Reset()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err = execute(context.Background())
	return out.String(), errOut.String(), err
}

// resetFlags restores every flag in the tree to its default, since the
// command tree and its flag variables are package-level.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
