package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/sshscp/internal/infrastructure/audit"
	"github.com/felixgeelhaar/sshscp/internal/infrastructure/storage"
	"github.com/felixgeelhaar/sshscp/pkg/command"
	"github.com/felixgeelhaar/sshscp/pkg/ssh"
)

func loadEvents(t *testing.T, dir string) []*audit.Event {
	t.Helper()
	evts, err := audit.NewFileEventStore(filepath.Join(dir, storage.WorkspaceDir, storage.EventsFile)).LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	return evts
}

func TestExecCmd(t *testing.T) {
	dir, cleanup := withTempDir(t)
	defer cleanup()
	key := setupHost(t, dir, "web-1")

	runner := &fakeRunner{stdout: "up 3 days\n"}
	useRunner(t, runner)

	out := mustRun(t, "exec", "web-1", "--", "uptime", "-p")
	if !strings.Contains(out, "up 3 days") {
		t.Errorf("expected remote stdout, got %q", out)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(runner.calls))
	}
	want := []string{"-o", ssh.StrictHostKeyCheckingOff, "-i", key, "ubuntu@10.0.0.1", "uptime -p"}
	got := runner.calls[0]
	if got.name != "ssh" || strings.Join(got.args, "|") != strings.Join(want, "|") {
		t.Errorf("unexpected invocation %s %v", got.name, got.args)
	}

	evts := loadEvents(t, dir)
	last := evts[len(evts)-1]
	if last.Type != audit.EventCommandRun || last.Host != "web-1" || !last.Success {
		t.Errorf("unexpected audit event %+v", last)
	}
}

func TestExecCmd_RemoteFailure(t *testing.T) {
	dir, cleanup := withTempDir(t)
	defer cleanup()
	setupHost(t, dir, "web-1")

	useRunner(t, &fakeRunner{err: &command.ExitError{Command: "ssh", Code: 2}})

	_, err := runCLI(t, "exec", "web-1", "--", "false")
	var cliErr *CLIError
	if !errors.As(err, &cliErr) {
		t.Fatalf("expected CLIError, got %v", err)
	}
	evts := loadEvents(t, dir)
	if evts[len(evts)-1].Success {
		t.Error("failed command should be recorded as unsuccessful")
	}
}

func TestDownloadCmd(t *testing.T) {
	dir, cleanup := withTempDir(t)
	defer cleanup()
	setupHost(t, dir, "web-1")

	local := filepath.Join(dir, "syslog")
	runner := &fakeRunner{onRun: func(name string, args []string) {
		if name == "scp" {
			_ = os.WriteFile(args[len(args)-1], []byte("log"), 0600)
		}
	}}
	useRunner(t, runner)

	out := mustRun(t, "download", "web-1", "/var/log/syslog", local)
	if !strings.Contains(out, "Downloaded /var/log/syslog -> "+local+" (verified)") {
		t.Errorf("unexpected output %q", out)
	}
	if runner.calls[0].args[len(runner.calls[0].args)-2] != "ubuntu@10.0.0.1:/var/log/syslog" {
		t.Errorf("unexpected scp source %v", runner.calls[0].args)
	}

	_, err := runCLI(t, "download", "web-1", "/var/log/syslog", local)
	if !errors.Is(err, ssh.ErrLocalExists) {
		t.Errorf("expected ErrLocalExists without --overwrite, got %v", err)
	}

	mustRun(t, "download", "web-1", "/var/log/syslog", local, "--overwrite")
}

func TestUploadCmd_RecursiveOverwrite(t *testing.T) {
	dir, cleanup := withTempDir(t)
	defer cleanup()
	setupHost(t, dir, "web-1")

	src := filepath.Join(dir, "site")
	if err := os.MkdirAll(src, 0700); err != nil {
		t.Fatal(err)
	}
	runner := &fakeRunner{}
	useRunner(t, runner)

	out := mustRun(t, "upload", "web-1", src, "/srv/site", "-r", "--overwrite")
	if !strings.Contains(out, "Uploaded") {
		t.Errorf("unexpected output %q", out)
	}

	var cmds []string
	for _, c := range runner.calls {
		cmds = append(cmds, c.name+" "+c.args[len(c.args)-1])
	}
	want := []string{
		"ssh sudo rm -rf /srv/site || true",
		"scp ubuntu@10.0.0.1:/srv/site",
		"ssh ls /srv/site",
	}
	if strings.Join(cmds, "\n") != strings.Join(want, "\n") {
		t.Errorf("unexpected calls:\n%s", strings.Join(cmds, "\n"))
	}

	evts := loadEvents(t, dir)
	last := evts[len(evts)-1]
	if last.Type != audit.EventUpload || last.Detail["state"] != "verified" || last.Detail["recursive"] != "true" {
		t.Errorf("unexpected audit event %+v", last)
	}
}

func TestUploadCmd_MissingLocal(t *testing.T) {
	dir, cleanup := withTempDir(t)
	defer cleanup()
	setupHost(t, dir, "web-1")
	useRunner(t, &fakeRunner{})

	_, err := runCLI(t, "upload", "web-1", filepath.Join(dir, "nope"), "/tmp/nope")
	if !errors.Is(err, ssh.ErrLocalMissing) {
		t.Fatalf("expected ErrLocalMissing, got %v", err)
	}
}

func TestSSMCmd(t *testing.T) {
	dir, cleanup := withTempDir(t)
	defer cleanup()
	setupHost(t, dir, "web-1")

	out := mustRun(t, "ssm", "web-1")
	if strings.TrimSpace(out) != "aws ssm start-session --region us-west-2 --target i-123" {
		t.Errorf("unexpected ssm command %q", out)
	}
}
