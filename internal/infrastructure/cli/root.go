package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/felixgeelhaar/sshscp/internal/infrastructure/wiring"
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "sshscp",
	Version: Version,
	Short:   "Run commands and copy files on remote hosts over ssh and scp",
	Long: `sshscp keeps an inventory of remote hosts and wraps the local ssh, scp
and aws binaries to run commands, transfer files and open SSM sessions.
It also generates RSA key pairs and random values for test fixtures.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	err := RootCmd.Execute()
	var cliErr *CLIError
	if errors.As(err, &cliErr) && cliErr.Hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", cliErr.Hint)
	}
	return err
}

// loadWorkspace wires the workspace rooted at the current directory.
func loadWorkspace(cmd *cobra.Command) (*wiring.Workspace, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	ws, err := wiring.NewWorkspace(cwd, cmd.ErrOrStderr())
	if err != nil {
		return nil, MapError(err)
	}
	if workspaceHook != nil {
		workspaceHook(ws)
	}
	return ws, nil
}

// workspaceHook lets tests swap wired dependencies such as the runner.
var workspaceHook func(*wiring.Workspace)

func init() {
	RootCmd.SetVersionTemplate(fmt.Sprintf("sshscp {{.Version}} (commit %s, built %s)\n", Commit, Date))
}
