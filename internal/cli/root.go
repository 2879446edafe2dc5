// Package cli implements gatectl, the offline inspection tool for operators.
// Every command is strictly read-only: the tool shares the store and journal
// formats (and the encryption key) with the server but never writes back.
package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	StorePath string
	LogPath   string
}

// NewRootCommand creates the root command for gatectl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "gatectl",
		Short: "Offline inspection for the access gate's encrypted files",
		Long: `gatectl decrypts the token store and the audit journal for operators.

The symmetric key is read from GATE_ENCRYPTION_KEY, same as the server.
All commands are read-only; nothing is ever written back to the store.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.StorePath, "store", "tokens.json", "path to the encrypted token store")
	cmd.PersistentFlags().StringVar(&opts.LogPath, "log", "research.log", "path to the encrypted audit journal")

	cmd.AddCommand(NewTokensCommand(opts))
	cmd.AddCommand(NewAuditCommand(opts))

	return cmd
}
