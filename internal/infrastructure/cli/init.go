package cli

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/sshscp/internal/infrastructure/audit"
	"github.com/felixgeelhaar/sshscp/internal/infrastructure/config"
	"github.com/felixgeelhaar/sshscp/internal/infrastructure/storage"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize an sshscp workspace in the current directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, _ := os.Getwd()
		repo := storage.NewFilesystemRepository(cwd)
		if repo.IsInitialized() {
			return MapError(errAlreadyInitialized)
		}

		if err := repo.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize workspace: %w", err)
		}
		if err := config.Save(cwd, config.Default()); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		if err := repo.SaveInventory(&storage.Inventory{}); err != nil {
			return fmt.Errorf("failed to write inventory: %w", err)
		}

		ws, err := loadWorkspace(cmd)
		if err != nil {
			return err
		}
		ws.Record(audit.EventWorkspaceInitialized, "", true, map[string]string{"root": cwd})

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized sshscp workspace in %s\n", repo.Dir())
		return nil
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
}
