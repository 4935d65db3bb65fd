package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/sshscp/internal/infrastructure/audit"
	"github.com/spf13/cobra"
)

var (
	auditHost  string
	auditLimit int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect and verify the action history",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded actions, newest last",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace(cmd)
		if err != nil {
			return err
		}

		var evts []*audit.Event
		if auditHost != "" {
			evts, err = ws.Audit.LoadByHost(auditHost)
		} else {
			evts, err = ws.Audit.LoadAll()
		}
		if err != nil {
			return fmt.Errorf("failed to load audit log: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(evts) == 0 {
			fmt.Fprintln(out, "No events recorded.")
			return nil
		}
		if auditLimit > 0 && len(evts) > auditLimit {
			evts = evts[len(evts)-auditLimit:]
		}
		for _, e := range evts {
			status := "ok"
			if !e.Success {
				status = "FAILED"
			}
			host := e.Host
			if host == "" {
				host = "-"
			}
			fmt.Fprintf(out, "%s  %-22s %-12s %-6s %s\n",
				e.Timestamp.Local().Format(time.DateTime), e.Type, host, status, formatDetail(e.Detail))
		}
		return nil
	},
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the integrity of the audit trail",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Verifying audit trail integrity...")
		violations, err := ws.Audit.Verify()
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}

		if len(violations) == 0 {
			fmt.Fprintln(out, "Audit trail is intact and verified.")
			return nil
		}

		fmt.Fprintf(out, "Found %d integrity violations:\n", len(violations))
		for _, v := range violations {
			fmt.Fprintf(out, "  - %s\n", v)
		}
		return NewCLIError(fmt.Sprintf("%d integrity violations found", len(violations)), "events.jsonl was modified outside sshscp", nil)
	},
}

func formatDetail(d map[string]string) string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+d[k])
	}
	return strings.Join(parts, " ")
}

func init() {
	auditListCmd.Flags().StringVar(&auditHost, "host", "", "Only show events for this host")
	auditListCmd.Flags().IntVarP(&auditLimit, "limit", "n", 0, "Show at most this many recent events")
	auditCmd.AddCommand(auditListCmd)
	auditCmd.AddCommand(auditVerifyCmd)
	RootCmd.AddCommand(auditCmd)
}
