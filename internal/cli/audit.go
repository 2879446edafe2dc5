package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"accessgate/internal/audit"
)

// NewAuditCommand creates the audit command group: export and stats over the
// encrypted journal.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the encrypted audit journal",
	}
	cmd.AddCommand(newAuditExportCommand(rootOpts))
	cmd.AddCommand(newAuditStatsCommand(rootOpts))
	return cmd
}

func newAuditExportCommand(rootOpts *RootOptions) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Decrypt the journal to a plain JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := openJournal(rootOpts.LogPath)
			if err != nil {
				return err
			}

			if outputPath == "" {
				return journal.Export(cmd.Context(), cmd.OutOrStdout())
			}

			f, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			defer f.Close()
			if err := journal.Export(cmd.Context(), f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported audit journal to %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the export to a file instead of stdout")
	return cmd
}

func newAuditStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize journal activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := openJournal(rootOpts.LogPath)
			if err != nil {
				return err
			}

			stats, err := journal.Statistics(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total events:       %d\n", stats.TotalEvents)
			fmt.Fprintf(out, "Unique users:       %d\n", stats.UniqueUsers)
			if stats.MostActiveUser != "" {
				fmt.Fprintf(out, "Most active user:   %s\n", stats.MostActiveUser)
			}
			if stats.MostCommonAction != "" {
				fmt.Fprintf(out, "Most common action: %s\n", stats.MostCommonAction)
			}
			if !stats.Earliest.IsZero() {
				fmt.Fprintf(out, "Time span:          %s .. %s\n",
					stats.Earliest.Format(time.RFC3339),
					stats.Latest.Format(time.RFC3339),
				)
			}
			return nil
		},
	}
}

func openJournal(path string) (*audit.Log, error) {
	sealer, err := sealerFromEnv()
	if err != nil {
		return nil, err
	}
	// Corruption warnings go to stderr so they never corrupt a JSON export
	// on stdout.
	warnLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return audit.New(path, sealer, audit.WithLogger(warnLogger))
}
