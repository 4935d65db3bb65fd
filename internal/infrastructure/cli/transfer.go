package cli

import (
	"fmt"

	"github.com/felixgeelhaar/sshscp/internal/infrastructure/audit"
	"github.com/felixgeelhaar/sshscp/pkg/ssh"
	"github.com/spf13/cobra"
)

var transferFlags struct {
	recursive bool
	overwrite bool
}

var downloadCmd = &cobra.Command{
	Use:   "download <host> <remote-path> <local-path>",
	Short: "Copy a file or directory from a host",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransfer(cmd, ssh.Download, args[0], args[1], args[2])
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <host> <local-path> <remote-path>",
	Short: "Copy a file or directory to a host",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransfer(cmd, ssh.Upload, args[0], args[1], args[2])
	},
}

func runTransfer(cmd *cobra.Command, dir ssh.Direction, hostName, src, dst string) error {
	ws, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}
	remote, err := ws.Remote(hostName)
	if err != nil {
		return MapError(err)
	}

	ctx := cmd.Context()
	recursive, overwrite := transferFlags.recursive, transferFlags.overwrite

	var report *ssh.TransferReport
	eventType := audit.EventDownload
	switch {
	case dir == ssh.Download && recursive:
		report, err = remote.DownloadDirectory(ctx, src, dst, overwrite)
	case dir == ssh.Download:
		report, err = remote.DownloadFile(ctx, src, dst, overwrite)
	case recursive:
		eventType = audit.EventUpload
		report, err = remote.SendDirectory(ctx, src, dst, overwrite)
	default:
		eventType = audit.EventUpload
		report, err = remote.SendFile(ctx, src, dst, overwrite)
	}

	detail := map[string]string{
		"source":      src,
		"destination": dst,
		"recursive":   fmt.Sprint(recursive),
	}
	if report != nil {
		detail["state"] = report.State
	}
	ws.Record(eventType, hostName, err == nil, detail)
	if err != nil {
		return MapError(err)
	}

	verb := "Downloaded"
	if dir == ssh.Upload {
		verb = "Uploaded"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s (%s)\n", verb, src, dst, report.State)
	return nil
}

func init() {
	for _, c := range []*cobra.Command{downloadCmd, uploadCmd} {
		c.Flags().BoolVarP(&transferFlags.recursive, "recursive", "r", false, "Copy a directory tree")
		c.Flags().BoolVar(&transferFlags.overwrite, "overwrite", false, "Replace the destination if it exists")
		RootCmd.AddCommand(c)
	}
}
