package cli

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/sshscp/internal/infrastructure/audit"
	"github.com/spf13/cobra"
)

var execCmd = &cobra.Command{
	Use:   "exec <host> -- <command...>",
	Short: "Run a command on a host over ssh",
	Example: `  sshscp exec web-1 -- uptime
  sshscp exec web-1 -- sudo systemctl restart nginx`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace(cmd)
		if err != nil {
			return err
		}
		remote, err := ws.Remote(args[0])
		if err != nil {
			return MapError(err)
		}

		line := strings.Join(args[1:], " ")
		out, err := remote.Run(cmd.Context(), line)
		fmt.Fprint(cmd.OutOrStdout(), out.Stdout)
		fmt.Fprint(cmd.ErrOrStderr(), out.Stderr)

		ws.Record(audit.EventCommandRun, args[0], err == nil, map[string]string{"command": line})
		if err != nil {
			return MapError(err)
		}
		return nil
	},
}

var ssmCmd = &cobra.Command{
	Use:   "ssm <host>",
	Short: "Print the aws ssm start-session command for a host",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace(cmd)
		if err != nil {
			return err
		}
		remote, err := ws.Remote(args[0])
		if err != nil {
			return MapError(err)
		}
		host := remote.Command()
		if host.InstanceID == "" {
			return NewCLIError("host has no instance id", fmt.Sprintf("Re-add %s with --instance-id", host.Name), nil)
		}
		fmt.Fprintln(cmd.OutOrStdout(), host.SSMStartSessionCommand())
		return nil
	},
}

func init() {
	RootCmd.AddCommand(execCmd)
	RootCmd.AddCommand(ssmCmd)
}
