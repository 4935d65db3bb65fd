package cli

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/sshscp/internal/infrastructure/audit"
	"github.com/felixgeelhaar/sshscp/pkg/ssh"
	"github.com/spf13/cobra"
)

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "Manage the host inventory",
}

var hostFlags struct {
	key        string
	user       string
	ip         string
	region     string
	zone       string
	instanceID string
	state      string
	ipMode     string
	profile    string
}

var hostsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a host to the inventory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace(cmd)
		if err != nil {
			return err
		}

		host := ssh.Command{
			Name:             args[0],
			SSHKeyPath:       hostFlags.key,
			UserName:         orDefault(hostFlags.user, ws.Config.UserName),
			Region:           orDefault(hostFlags.region, ws.Config.Region),
			AvailabilityZone: hostFlags.zone,
			InstanceID:       hostFlags.instanceID,
			InstanceState:    hostFlags.state,
			IPMode:           orDefault(hostFlags.ipMode, ws.Config.IPMode),
			PublicIP:         hostFlags.ip,
			Profile:          hostFlags.profile,
		}
		if err := host.Validate(); err != nil {
			return MapError(err)
		}
		if err := ws.Repo.AddHost(host); err != nil {
			return MapError(err)
		}
		ws.Record(audit.EventHostAdded, host.Name, true, map[string]string{"target": host.Target()})

		fmt.Fprintf(cmd.OutOrStdout(), "Added host %s (%s)\n", host.Name, host.Target())
		return nil
	},
}

var hostsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known hosts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace(cmd)
		if err != nil {
			return err
		}
		inv, err := ws.Repo.LoadInventory()
		if err != nil {
			return MapError(err)
		}

		out := cmd.OutOrStdout()
		if len(inv.Hosts) == 0 {
			fmt.Fprintln(out, "No hosts found. Add one with 'sshscp hosts add'.")
			return nil
		}

		columns := []table.Column{
			{Title: "Name", Width: 20},
			{Title: "Target", Width: 30},
			{Title: "Region", Width: 12},
			{Title: "Instance", Width: 20},
			{Title: "State", Width: 10},
			{Title: "Key", Width: 40},
		}

		rows := make([]table.Row, 0, len(inv.Hosts))
		for _, h := range inv.Hosts {
			rows = append(rows, table.Row{
				h.Name,
				h.Target(),
				h.Region,
				h.InstanceID,
				h.InstanceState,
				h.SSHKeyPath,
			})
		}

		t := table.New(
			table.WithColumns(columns),
			table.WithRows(rows),
			table.WithHeight(len(rows)+1),
		)

		s := table.DefaultStyles()
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Bold(true)
		s.Selected = lipgloss.NewStyle() // static view
		t.SetStyles(s)

		fmt.Fprintf(out, "Hosts (%d)\n", len(inv.Hosts))
		fmt.Fprintln(out, t.View())
		return nil
	},
}

var hostsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print the helper commands for a host",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace(cmd)
		if err != nil {
			return err
		}
		host, err := ws.Repo.GetHost(args[0])
		if err != nil {
			return MapError(err)
		}
		fmt.Fprint(cmd.OutOrStdout(), host.String())
		return nil
	},
}

var hostsRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a host from the inventory",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace(cmd)
		if err != nil {
			return err
		}
		if err := ws.Repo.RemoveHost(args[0]); err != nil {
			return MapError(err)
		}
		ws.Record(audit.EventHostRemoved, args[0], true, nil)

		fmt.Fprintf(cmd.OutOrStdout(), "Removed host %s\n", args[0])
		return nil
	},
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func init() {
	f := hostsAddCmd.Flags()
	f.StringVar(&hostFlags.key, "key", "", "Path to the private key (required)")
	f.StringVar(&hostFlags.user, "user", "", "Login user (default from config.yaml)")
	f.StringVar(&hostFlags.ip, "ip", "", "Public IP or DNS name (required)")
	f.StringVar(&hostFlags.region, "region", "", "Cloud region (default from config.yaml)")
	f.StringVar(&hostFlags.zone, "zone", "", "Availability zone")
	f.StringVar(&hostFlags.instanceID, "instance-id", "", "Instance ID, used by 'sshscp ssm'")
	f.StringVar(&hostFlags.state, "state", "", "Instance state")
	f.StringVar(&hostFlags.ipMode, "ip-mode", "", "IP mode (default from config.yaml)")
	f.StringVar(&hostFlags.profile, "profile", "", "AWS profile for SSM sessions")

	hostsCmd.AddCommand(hostsAddCmd)
	hostsCmd.AddCommand(hostsListCmd)
	hostsCmd.AddCommand(hostsShowCmd)
	hostsCmd.AddCommand(hostsRemoveCmd)
	RootCmd.AddCommand(hostsCmd)
}
