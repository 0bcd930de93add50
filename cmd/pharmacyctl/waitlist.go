package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pharmacy-site/pkg/config"
	"pharmacy-site/pkg/export"
	"pharmacy-site/pkg/models"
	"pharmacy-site/pkg/store/waitlist"
)

func newWaitlistCmd(cfg func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "waitlist",
		Short: "Inspect waitlist signups",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print every waitlist entry, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := loadEntries(cmd.Context(), cfg())
			if err != nil {
				return err
			}
			loc := cfg().Location
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tEMAIL\tPHONE\tJOINED\tSTATUS")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					e.Name, e.Email, e.Phone, e.CreatedAt.In(loc).Format("2006-01-02 15:04"), e.Status)
			}
			return w.Flush()
		},
	})

	var out string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the waitlist to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := loadEntries(cmd.Context(), cfg())
			if err != nil {
				return err
			}
			data, err := export.WaitlistXLSX(entries, cfg().Location)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d entries to %s\n", len(entries), out)
			return nil
		},
	}
	exportCmd.Flags().StringVarP(&out, "out", "o", "waitlist.xlsx", "output file")
	cmd.AddCommand(exportCmd)

	return cmd
}

func loadEntries(ctx context.Context, cfg *config.Config) ([]models.WaitlistEntry, error) {
	store, closeStore, err := waitlist.Open(ctx, cfg.WaitlistRedisAddr, cfg.WaitlistRedisPass, cfg.WaitlistDBPath)
	if err != nil {
		return nil, err
	}
	defer closeStore()
	return store.List(ctx)
}
