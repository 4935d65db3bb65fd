package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/sshscp/internal/infrastructure/storage"
	"github.com/felixgeelhaar/sshscp/pkg/ssh"
)

func TestHostsLifecycle(t *testing.T) {
	dir, cleanup := withTempDir(t)
	defer cleanup()
	key := setupHost(t, dir, "web-1")

	out := mustRun(t, "hosts", "list")
	if !strings.Contains(out, "Hosts (1)") || !strings.Contains(out, "ubuntu@10.0.0.1") {
		t.Errorf("unexpected list output:\n%s", out)
	}

	out = mustRun(t, "hosts", "show", "web-1")
	if !strings.Contains(out, "ssh -o \"StrictHostKeyChecking no\" -i "+key+" ubuntu@10.0.0.1") {
		t.Errorf("unexpected show output:\n%s", out)
	}
	if !strings.Contains(out, "aws ssm start-session --region us-west-2 --target i-123") {
		t.Errorf("expected ssm helper in show output:\n%s", out)
	}

	_, err := runCLI(t, "hosts", "add", "web-1", "--key", key, "--ip", "10.0.0.2")
	if !errors.Is(err, storage.ErrDuplicateHost) {
		t.Errorf("expected duplicate error, got %v", err)
	}

	mustRun(t, "hosts", "remove", "web-1")
	out = mustRun(t, "hosts", "list")
	if !strings.Contains(out, "No hosts found") {
		t.Errorf("expected empty list, got:\n%s", out)
	}

	_, err = runCLI(t, "hosts", "show", "web-1")
	if !errors.Is(err, storage.ErrHostNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestHostsAdd_Incomplete(t *testing.T) {
	_, cleanup := withTempDir(t)
	defer cleanup()
	mustRun(t, "init")

	_, err := runCLI(t, "hosts", "add", "web-1", "--key", "/k.pem")
	if !errors.Is(err, ssh.ErrInvalidCommand) {
		t.Fatalf("expected ErrInvalidCommand, got %v", err)
	}
	var cliErr *CLIError
	if !errors.As(err, &cliErr) || cliErr.Hint == "" {
		t.Errorf("expected CLIError with hint, got %v", err)
	}
}

func TestHostsAdd_UsesConfigDefaults(t *testing.T) {
	dir, cleanup := withTempDir(t)
	defer cleanup()
	setupHost(t, dir, "web-1")

	host, err := storage.NewFilesystemRepository(dir).GetHost("web-1")
	if err != nil {
		t.Fatal(err)
	}
	if host.UserName != "ubuntu" || host.Region != "us-west-2" || host.IPMode != "ephemeral" {
		t.Errorf("config defaults not applied: %+v", host)
	}
}

func TestHostsAdd_InvalidNameKeepsInventoryUsable(t *testing.T) {
	_, cleanup := withTempDir(t)
	defer cleanup()
	mustRun(t, "init")

	_, err := runCLI(t, "hosts", "add", "web 1", "--key", "/k.pem", "--ip", "10.0.0.1")
	if !errors.Is(err, ssh.ErrInvalidCommand) {
		t.Fatalf("expected ErrInvalidCommand, got %v", err)
	}

	mustRun(t, "hosts", "add", "web-1", "--key", "/k.pem", "--ip", "10.0.0.1")
	out := mustRun(t, "hosts", "list")
	if !strings.Contains(out, "Hosts (1)") {
		t.Errorf("unexpected list output:\n%s", out)
	}
}
