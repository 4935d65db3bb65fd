package cli

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/felixgeelhaar/sshscp/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/sshscp/pkg/command"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func withTempDir(t *testing.T) (string, func()) {
	t.Helper()

	dir, err := os.MkdirTemp("", "sshscp-cli-test-*")
	if err != nil {
		t.Fatalf("temp dir: %v", err)
	}
	old, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	return dir, func() {
		_ = os.Chdir(old)
		_ = os.RemoveAll(dir)
	}
}

// runCLI executes RootCmd with args and returns combined output. Flags are
// reset first since cobra keeps their values between executions.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(RootCmd)
	buf := new(bytes.Buffer)
	RootCmd.SetOut(buf)
	RootCmd.SetErr(buf)
	RootCmd.SetArgs(args)
	err := RootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("sshscp %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

type call struct {
	name string
	args []string
}

// fakeRunner records invocations instead of starting processes.
type fakeRunner struct {
	mu     sync.Mutex
	calls  []call
	stdout string
	err    error
	onRun  func(name string, args []string)
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (command.Output, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{name: name, args: args})
	f.mu.Unlock()
	if f.onRun != nil {
		f.onRun(name, args)
	}
	return command.Output{Stdout: f.stdout}, f.err
}

func useRunner(t *testing.T, r command.Runner) {
	t.Helper()
	workspaceHook = func(ws *wiring.Workspace) { ws.Runner = r }
	t.Cleanup(func() { workspaceHook = nil })
}

// setupHost initializes a workspace with one host whose key exists on disk.
func setupHost(t *testing.T, dir, name string) string {
	t.Helper()
	mustRun(t, "init")
	key := dir + "/id.pem"
	if err := os.WriteFile(key, []byte("key"), 0600); err != nil {
		t.Fatal(err)
	}
	mustRun(t, "hosts", "add", name, "--key", key, "--ip", "10.0.0.1", "--instance-id", "i-123")
	return key
}
