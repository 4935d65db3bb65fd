package wiring

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/felixgeelhaar/sshscp/internal/infrastructure/audit"
	"github.com/felixgeelhaar/sshscp/internal/infrastructure/config"
	"github.com/felixgeelhaar/sshscp/internal/infrastructure/logging"
	"github.com/felixgeelhaar/sshscp/internal/infrastructure/storage"
	"github.com/felixgeelhaar/sshscp/pkg/command"
	"github.com/felixgeelhaar/sshscp/pkg/ssh"
)

// Workspace bundles core infrastructure dependencies.
type Workspace struct {
	Root   string
	Repo   *storage.FilesystemRepository
	Config *config.Config
	Logger *slog.Logger
	Runner command.Runner
	Audit  *audit.FileEventStore
}

// NewWorkspace loads configuration for root and wires the runner, logger
// and audit log. Logs are written to logOut.
func NewWorkspace(root string, logOut io.Writer) (*Workspace, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	repo := storage.NewFilesystemRepository(root)
	runner := command.NewResilientRunner(command.NewExecRunner(), command.ResilientConfig{
		MaxAttempts:  cfg.RetryAttempts,
		InitialDelay: command.DefaultResilientConfig().InitialDelay,
		Timeout:      cfg.CommandTimeout,
	})

	return &Workspace{
		Root:   root,
		Repo:   repo,
		Config: cfg,
		Logger: logging.New(cfg.LogLevel, cfg.LogFormat, logOut),
		Runner: runner,
		Audit:  audit.NewFileEventStore(filepath.Join(repo.Dir(), storage.EventsFile)),
	}, nil
}

// Remote looks up a host by name and returns a handle for it.
func (w *Workspace) Remote(name string) (*ssh.Remote, error) {
	if !w.Repo.IsInitialized() {
		return nil, storage.ErrNotInitialized
	}
	host, err := w.Repo.GetHost(name)
	if err != nil {
		return nil, err
	}
	if host.Profile == "" {
		host.Profile = w.Config.Profile
	}
	return ssh.NewRemote(host, w.Runner, w.Logger), nil
}

// Record writes an audit event, logging rather than failing on error.
func (w *Workspace) Record(eventType, host string, success bool, detail map[string]string) {
	if !w.Repo.IsInitialized() {
		return
	}
	if err := w.Audit.Record(eventType, host, success, detail); err != nil {
		w.Logger.Warn("failed to record audit event", "type", eventType, "error", fmt.Sprint(err))
	}
}
