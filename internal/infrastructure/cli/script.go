package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/sshscp/internal/infrastructure/audit"
	"github.com/felixgeelhaar/sshscp/internal/infrastructure/storage"
	"github.com/felixgeelhaar/sshscp/internal/infrastructure/watch"
	"github.com/felixgeelhaar/sshscp/internal/infrastructure/wiring"
	"github.com/spf13/cobra"
)

var (
	scriptOut      string
	scriptWatch    bool
	scriptDebounce time.Duration
)

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Manage the generated ssh helper script",
}

var scriptSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Write the ssh, scp and ssm helper commands for every host to a script",
	Long: `Write the ssh, scp and ssm helper commands for every host to a shell script
(default .sshscp/ssh-commands.sh, mode 0700).

With --watch the script is regenerated whenever hosts.yaml changes, until
interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace(cmd)
		if err != nil {
			return err
		}
		if !ws.Repo.IsInitialized() {
			return MapError(storage.ErrNotInitialized)
		}

		if err := syncScript(cmd, ws); err != nil {
			return err
		}
		if !scriptWatch {
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return watchInventory(ctx, cmd, ws)
	},
}

func syncScript(cmd *cobra.Command, ws *wiring.Workspace) error {
	path, err := ws.Repo.SyncScript(scriptOut)
	ws.Record(audit.EventScriptSynced, "", err == nil, map[string]string{"path": path})
	if err != nil {
		return MapError(fmt.Errorf("failed to sync script: %w", err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func watchInventory(ctx context.Context, cmd *cobra.Command, ws *wiring.Workspace) error {
	filter, err := watch.NewPatternFilter([]string{storage.InventoryFile}, nil)
	if err != nil {
		return err
	}
	w, err := watch.NewFSWatcher(scriptDebounce, filter, func(ev watch.ChangeEvent) {
		ws.Logger.Info("inventory changed", "path", ev.Path, "change", ev.ChangeType)
		if ev.ChangeType == watch.ChangeRemove {
			return
		}
		if err := syncScript(cmd, ws); err != nil {
			ws.Logger.Error("failed to regenerate script", "error", err)
		}
	})
	if err != nil {
		return err
	}
	if err := w.Watch(ws.Repo.Dir()); err != nil {
		_ = w.Close()
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes (Ctrl+C to stop)\n", ws.Repo.Dir())
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func init() {
	scriptSyncCmd.Flags().StringVarP(&scriptOut, "out", "o", "", "Script path (default .sshscp/ssh-commands.sh)")
	scriptSyncCmd.Flags().BoolVarP(&scriptWatch, "watch", "w", false, "Regenerate the script when hosts.yaml changes")
	scriptSyncCmd.Flags().DurationVar(&scriptDebounce, "debounce", 300*time.Millisecond, "Quiet period before regenerating")
	scriptCmd.AddCommand(scriptSyncCmd)
	RootCmd.AddCommand(scriptCmd)
}
