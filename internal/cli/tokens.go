package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"accessgate/internal/platform/config"
	"accessgate/internal/token/models"
	"accessgate/pkg/platform/crypto"
)

// NewTokensCommand creates the tokens command, which prints every issued
// token with its usage count.
func NewTokensCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens",
		Short: "Decrypt and list the token store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sealer, err := sealerFromEnv()
			if err != nil {
				return err
			}
			return runTokens(cmd, rootOpts.StorePath, sealer)
		},
	}
}

func runTokens(cmd *cobra.Command, path string, sealer *crypto.Sealer) error {
	encrypted, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(cmd.OutOrStdout(), "Token store %q does not exist.\n", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading token store: %w", err)
	}
	if len(encrypted) == 0 {
		return fmt.Errorf("token store %q is empty; issue a token first", path)
	}

	plaintext, err := sealer.Open(encrypted)
	if err != nil {
		return fmt.Errorf("could not decrypt token store: %w", err)
	}

	// Decode entry values lazily so one malformed record reports its own
	// error instead of hiding the rest.
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(plaintext, &entries); err != nil {
		return fmt.Errorf("could not parse token store: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Token store is empty.")
		return nil
	}

	emails := make([]string, 0, len(entries))
	for email := range entries {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	fmt.Fprintln(cmd.OutOrStdout(), "Decrypted tokens:")
	for _, email := range emails {
		var record models.Record
		if err := json.Unmarshal(entries[email], &record); err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "[ERROR] Could not read record for %s: %v\n", email, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (used %d times)\n", email, record.Token, record.Count)
	}
	return nil
}

func sealerFromEnv() (*crypto.Sealer, error) {
	key, err := config.EncryptionKeyFromEnv()
	if err != nil {
		return nil, err
	}
	return crypto.New(key)
}
