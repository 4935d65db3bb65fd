package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
)

const WorkspaceDir = ".sshscp"
const InventoryFile = "hosts.yaml"
const ConfigFile = "config.yaml"
const EventsFile = "events.jsonl"
const ScriptFile = "ssh-commands.sh"

var ErrNotInitialized = errors.New("workspace is not initialized")

type FilesystemRepository struct {
	root        string
	retryConfig retry.Config
}

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the directory containing the workspace.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// Dir returns the workspace directory itself.
func (r *FilesystemRepository) Dir() string {
	return filepath.Join(r.root, WorkspaceDir)
}

// ResolvePath ensures the path is a direct child of the workspace directory.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := filepath.Clean(r.Dir())
	cleanPath := filepath.Clean(filepath.Join(baseDir, filename))

	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	// G301: Use 0700 for directories
	if err := os.MkdirAll(r.Dir(), 0700); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", WorkspaceDir, err)
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	info, err := os.Stat(r.Dir())
	return err == nil && info.IsDir()
}

func (r *FilesystemRepository) requireInitialized() error {
	if !r.IsInitialized() {
		return ErrNotInitialized
	}
	return nil
}

// ScriptPath is where the generated helper script is written.
func (r *FilesystemRepository) ScriptPath() (string, error) {
	return r.ResolvePath(ScriptFile)
}
