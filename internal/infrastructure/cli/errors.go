package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/sshscp/internal/infrastructure/storage"
	"github.com/felixgeelhaar/sshscp/pkg/command"
	"github.com/felixgeelhaar/sshscp/pkg/ssh"
)

var errAlreadyInitialized = errors.New("workspace already initialized")

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	var exitErr *command.ExitError
	if errors.As(err, &exitErr) {
		hint := "Check the host is reachable and the key is authorized"
		if exitErr.Code != 255 {
			hint = "The remote command failed; see its stderr above"
		}
		return NewCLIError(fmt.Sprintf("%s exited with code %d", exitErr.Command, exitErr.Code), hint, err)
	}

	switch {
	case errors.Is(err, errAlreadyInitialized):
		return NewCLIError("workspace already initialized", "Edit .sshscp/config.yaml or remove .sshscp to start over", err)
	case errors.Is(err, storage.ErrNotInitialized):
		return NewCLIError("no sshscp workspace found", "Run 'sshscp init' to initialize", err)
	case errors.Is(err, storage.ErrHostNotFound):
		return NewCLIError("host not found", "Run 'sshscp hosts list' to see known hosts", err)
	case errors.Is(err, storage.ErrDuplicateHost):
		return NewCLIError("host already exists", "Remove it first with 'sshscp hosts remove <name>'", err)
	case errors.Is(err, storage.ErrInvalidInventory):
		return NewCLIError("inventory is invalid", "Fix .sshscp/hosts.yaml and run 'sshscp doctor'", err)
	case errors.Is(err, ssh.ErrInvalidCommand):
		return NewCLIError("host entry is invalid", "Use a name of letters, digits, '.', '_' or '-' and set --key, --user and --ip", err)
	case errors.Is(err, ssh.ErrLocalExists):
		return NewCLIError("local path already exists", "Pass --overwrite to replace it", err)
	case errors.Is(err, ssh.ErrLocalIsDir):
		return NewCLIError("local path is a directory", "Pass -r to download a directory, or choose a file path", err)
	case errors.Is(err, ssh.ErrLocalMissing):
		return NewCLIError("local path does not exist", "Check the path you are uploading", err)
	}

	return err
}
