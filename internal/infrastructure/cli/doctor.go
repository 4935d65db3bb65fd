package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/felixgeelhaar/sshscp/internal/infrastructure/config"
	"github.com/felixgeelhaar/sshscp/internal/infrastructure/storage"
	"github.com/spf13/cobra"
)

// lookPath is swapped in tests.
var lookPath = exec.LookPath

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the health of the sshscp environment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Running sshscp doctor...")

		ws, err := loadWorkspace(cmd)
		if err != nil {
			return err
		}
		repo := ws.Repo

		hasIssues := false
		check := func(name string, fn func() error) {
			fmt.Fprintf(out, "Checking %s... ", name)
			if err := fn(); err != nil {
				fmt.Fprintf(out, "FAIL\n  Error: %v\n", err)
				hasIssues = true
			} else {
				fmt.Fprintf(out, "PASS\n")
			}
		}

		check("Initialization", func() error {
			if !repo.IsInitialized() {
				return fmt.Errorf("%s directory not found (run 'sshscp init')", storage.WorkspaceDir)
			}
			return nil
		})

		check("Config File", func() error {
			_, err := config.Load(ws.Root)
			return err
		})

		check("Inventory", func() error {
			inv, err := repo.LoadInventory()
			if err != nil {
				return err
			}
			for _, h := range inv.Hosts {
				if _, err := os.Stat(h.SSHKeyPath); err != nil {
					return fmt.Errorf("host %s: key %s: %w", h.Name, h.SSHKeyPath, err)
				}
			}
			fmt.Fprintf(out, "(%d hosts) ", len(inv.Hosts))
			return nil
		})

		for _, bin := range []string{"ssh", "scp"} {
			check(bin+" binary", func() error {
				_, err := lookPath(bin)
				return err
			})
		}

		check("Audit Integrity", func() error {
			violations, err := ws.Audit.Verify()
			if err != nil {
				return err
			}
			if len(violations) > 0 {
				return fmt.Errorf("%d integrity violations found (run 'sshscp audit verify')", len(violations))
			}
			return nil
		})

		if _, err := lookPath("aws"); err != nil {
			fmt.Fprintln(out, "Note: aws CLI not found; 'sshscp ssm' commands will not run on this machine.")
		}

		if hasIssues {
			fmt.Fprintln(out, "\nissues found! Please fix them before continuing.")
			return fmt.Errorf("doctor found issues")
		}
		fmt.Fprintln(out, "\nEverything looks good!")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(doctorCmd)
}
