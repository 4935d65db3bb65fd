package cli

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/felixgeelhaar/sshscp/pkg/random"
	"github.com/spf13/cobra"
)

const defaultRandomLength = 32

var tmpPathSuffix string

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Generate random values for fixtures and temporary names",
}

var randomStringCmd = &cobra.Command{
	Use:   "string [length]",
	Short: "Print a random base58 string",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := lengthArg(args)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), random.SecureString(n))
		return nil
	},
}

var randomBytesCmd = &cobra.Command{
	Use:   "bytes [length]",
	Short: "Print hex-encoded random bytes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := lengthArg(args)
		if err != nil {
			return err
		}
		b, err := random.SecureBytes(n)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(b))
		return nil
	},
}

var randomH160Cmd = &cobra.Command{
	Use:   "h160",
	Short: "Print a random 20-byte hash",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := random.SecureH160()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), h)
		return nil
	},
}

var randomH256Cmd = &cobra.Command{
	Use:   "h256",
	Short: "Print a random 32-byte hash",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := random.SecureH256()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), h)
		return nil
	},
}

var randomU256Cmd = &cobra.Command{
	Use:   "u256",
	Short: "Print a random unsigned 256-bit integer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := random.SecureU256()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), u.String())
		return nil
	},
}

var randomUintCmd = &cobra.Command{
	Use:   "uint",
	Short: "Print a non-cryptographic random uint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), random.Uint())
		return nil
	},
}

var randomTmpPathCmd = &cobra.Command{
	Use:   "tmp-path [length]",
	Short: "Print a random path under the system temp directory",
	Long:  "Print a random path under the system temp directory. The file is not created.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := lengthArg(args)
		if err != nil {
			return err
		}
		p, err := random.TmpPath(n, tmpPathSuffix)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), p)
		return nil
	},
}

func lengthArg(args []string) (int, error) {
	if len(args) == 0 {
		return defaultRandomLength, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return 0, NewCLIError(fmt.Sprintf("invalid length %q", args[0]), "Pass a non-negative integer", err)
	}
	return n, nil
}

func init() {
	randomTmpPathCmd.Flags().StringVar(&tmpPathSuffix, "suffix", "", "Suffix appended to the file name, e.g. .json")

	randomCmd.AddCommand(randomStringCmd)
	randomCmd.AddCommand(randomBytesCmd)
	randomCmd.AddCommand(randomH160Cmd)
	randomCmd.AddCommand(randomH256Cmd)
	randomCmd.AddCommand(randomU256Cmd)
	randomCmd.AddCommand(randomUintCmd)
	randomCmd.AddCommand(randomTmpPathCmd)
	RootCmd.AddCommand(randomCmd)
}
