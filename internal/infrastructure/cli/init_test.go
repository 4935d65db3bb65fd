package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/sshscp/internal/infrastructure/storage"
)

func TestInitCmd(t *testing.T) {
	dir, cleanup := withTempDir(t)
	defer cleanup()

	out := mustRun(t, "init")
	if !strings.Contains(out, "Initialized sshscp workspace") {
		t.Errorf("unexpected output %q", out)
	}
	for _, f := range []string{storage.ConfigFile, storage.InventoryFile, storage.EventsFile} {
		if _, err := os.Stat(filepath.Join(dir, storage.WorkspaceDir, f)); err != nil {
			t.Errorf("expected %s to exist: %v", f, err)
		}
	}

	// Double init should fail
	_, err := runCLI(t, "init")
	var cliErr *CLIError
	if !errors.As(err, &cliErr) {
		t.Fatalf("expected CLIError on re-init, got %v", err)
	}
}

func TestCommandsRequireWorkspace(t *testing.T) {
	_, cleanup := withTempDir(t)
	defer cleanup()

	for _, args := range [][]string{
		{"hosts", "add", "web-1", "--key", "/k", "--ip", "1.2.3.4"},
		{"script", "sync"},
		{"exec", "web-1", "--", "uptime"},
		{"keygen", "--bits", "2048", "--save"},
	} {
		_, err := runCLI(t, args...)
		if !errors.Is(err, storage.ErrNotInitialized) {
			t.Errorf("%v: expected ErrNotInitialized, got %v", args, err)
		}
	}
}
