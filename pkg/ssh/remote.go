package ssh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/felixgeelhaar/sshscp/pkg/command"
)

// Direction of a file transfer relative to the local machine.
type Direction string

const (
	Download Direction = "download"
	Upload   Direction = "upload"
)

var (
	ErrLocalExists  = errors.New("local path already exists")
	ErrLocalMissing = errors.New("local path does not exist")
	ErrLocalIsDir   = errors.New("local path is a directory")
)

// TransferReport describes the outcome of a transfer, including failed ones.
type TransferReport struct {
	Direction   Direction
	Source      string
	Destination string
	Recursive   bool
	State       string
	Output      command.Output
}

// Remote runs commands and transfers against a single host.
type Remote struct {
	cmd    Command
	runner command.Runner
	logger *slog.Logger
}

func NewRemote(cmd Command, runner command.Runner, logger *slog.Logger) *Remote {
	if logger == nil {
		logger = slog.Default()
	}
	return &Remote{
		cmd:    cmd,
		runner: runner,
		logger: logger.With("host", cmd.Name, "public_ip", cmd.PublicIP),
	}
}

func (r *Remote) Command() Command {
	return r.cmd
}

// protectKey applies chmod 400 to the key, which ssh requires.
func (r *Remote) protectKey() error {
	if err := r.cmd.Validate(); err != nil {
		return err
	}
	if err := os.Chmod(r.cmd.SSHKeyPath, 0400); err != nil {
		return fmt.Errorf("failed to chmod ssh key: %w", err)
	}
	return nil
}

func (r *Remote) ssh(ctx context.Context, remoteCmd string) (command.Output, error) {
	return r.runner.Run(ctx, "ssh",
		"-o", StrictHostKeyCheckingOff,
		"-i", r.cmd.SSHKeyPath,
		r.cmd.Target(),
		remoteCmd,
	)
}

func (r *Remote) scp(ctx context.Context, recursive bool, src, dst string) (command.Output, error) {
	args := []string{"-o", StrictHostKeyCheckingOff, "-i", r.cmd.SSHKeyPath}
	if recursive {
		args = append(args, "-r")
	}
	args = append(args, src, dst)
	return r.runner.Run(ctx, "scp", args...)
}

func (r *Remote) remotePath(p string) string {
	return r.cmd.Target() + ":" + p
}

// Run executes cmd on the remote host.
func (r *Remote) Run(ctx context.Context, cmd string) (command.Output, error) {
	r.logger.Info("sending an SSH command", "command", cmd)
	if err := r.protectKey(); err != nil {
		return command.Output{}, err
	}
	return r.ssh(ctx, cmd)
}

// DownloadFile copies a remote file to localPath.
func (r *Remote) DownloadFile(ctx context.Context, remotePath, localPath string, overwrite bool) (*TransferReport, error) {
	return r.download(ctx, remotePath, localPath, overwrite, false)
}

// DownloadDirectory copies a remote directory tree to localPath.
func (r *Remote) DownloadDirectory(ctx context.Context, remotePath, localPath string, overwrite bool) (*TransferReport, error) {
	return r.download(ctx, remotePath, localPath, overwrite, true)
}

// SendFile copies localPath to a remote file.
func (r *Remote) SendFile(ctx context.Context, localPath, remotePath string, overwrite bool) (*TransferReport, error) {
	return r.upload(ctx, localPath, remotePath, overwrite, false)
}

// SendDirectory copies a local directory tree to remotePath.
func (r *Remote) SendDirectory(ctx context.Context, localPath, remotePath string, overwrite bool) (*TransferReport, error) {
	return r.upload(ctx, localPath, remotePath, overwrite, true)
}

func (r *Remote) download(ctx context.Context, remotePath, localPath string, overwrite, recursive bool) (*TransferReport, error) {
	report := &TransferReport{Direction: Download, Source: remotePath, Destination: localPath, Recursive: recursive}
	sm, err := NewTransferStateMachine(remotePath, localPath)
	if err != nil {
		return report, err
	}
	fail := func(err error) (*TransferReport, error) {
		_ = sm.Fire(EventFail)
		report.State = sm.Current()
		r.logger.Warn("download failed", "remote", remotePath, "local", localPath, "error", err)
		return report, err
	}

	r.logger.Info("sending an SCP command", "direction", Download, "remote", remotePath, "local", localPath, "recursive", recursive)
	if info, err := os.Stat(localPath); err == nil {
		if !overwrite {
			return fail(fmt.Errorf("%w: '%s'", ErrLocalExists, localPath))
		}
		// A file download only ever replaces a file.
		if !recursive && info.IsDir() {
			return fail(fmt.Errorf("%w: '%s'", ErrLocalIsDir, localPath))
		}
		remove := os.Remove
		if recursive {
			remove = os.RemoveAll
		}
		if err := remove(localPath); err != nil {
			return fail(fmt.Errorf("failed to remove '%s': %w", localPath, err))
		}
		r.logger.Info("removed existing local path", "local", localPath)
	}
	if err := r.protectKey(); err != nil {
		return fail(err)
	}
	if err := sm.Fire(EventPrepare); err != nil {
		return fail(err)
	}

	out, err := r.scp(ctx, recursive, r.remotePath(remotePath), localPath)
	report.Output = out
	if err != nil {
		return fail(err)
	}
	if err := sm.Fire(EventCopy); err != nil {
		return fail(err)
	}

	if _, err := os.Stat(localPath); err != nil {
		return fail(fmt.Errorf("%w: '%s'", ErrLocalMissing, localPath))
	}
	if err := sm.Fire(EventVerify); err != nil {
		return fail(err)
	}

	report.State = sm.Current()
	r.logger.Info("successfully downloaded", "local", localPath)
	return report, nil
}

func (r *Remote) upload(ctx context.Context, localPath, remotePath string, overwrite, recursive bool) (*TransferReport, error) {
	report := &TransferReport{Direction: Upload, Source: localPath, Destination: remotePath, Recursive: recursive}
	sm, err := NewTransferStateMachine(localPath, remotePath)
	if err != nil {
		return report, err
	}
	fail := func(err error) (*TransferReport, error) {
		_ = sm.Fire(EventFail)
		report.State = sm.Current()
		r.logger.Warn("upload failed", "local", localPath, "remote", remotePath, "error", err)
		return report, err
	}

	r.logger.Info("sending an SCP command", "direction", Upload, "local", localPath, "remote", remotePath, "recursive", recursive)
	if _, err := os.Stat(localPath); err != nil {
		return fail(fmt.Errorf("%w: '%s'", ErrLocalMissing, localPath))
	}
	if err := r.protectKey(); err != nil {
		return fail(err)
	}

	if overwrite {
		rm := "sudo rm -f " + command.Quote(remotePath) + " || true"
		if recursive {
			rm = "sudo rm -rf " + command.Quote(remotePath) + " || true"
		}
		rmOut, err := r.ssh(ctx, rm)
		if err != nil {
			return fail(fmt.Errorf("failed to remove remote '%s': %w", remotePath, err))
		}
		r.logger.Info("removed existing remote path", "remote", remotePath, "stdout", rmOut.Stdout)
	}
	if err := sm.Fire(EventPrepare); err != nil {
		return fail(err)
	}

	out, err := r.scp(ctx, recursive, localPath, r.remotePath(remotePath))
	report.Output = out
	if err != nil {
		return fail(err)
	}
	if err := sm.Fire(EventCopy); err != nil {
		return fail(err)
	}

	lsOut, err := r.ssh(ctx, "ls "+command.Quote(remotePath))
	if err != nil {
		return fail(fmt.Errorf("failed to verify remote '%s': %w", remotePath, err))
	}
	if err := sm.Fire(EventVerify); err != nil {
		return fail(err)
	}

	report.State = sm.Current()
	r.logger.Info("successfully sent", "remote", remotePath, "ls", lsOut.Stdout)
	return report, nil
}
