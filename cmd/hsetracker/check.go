package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/hsetracker/internal/db"
	"github.com/erazemk/hsetracker/internal/expiry"
	"github.com/erazemk/hsetracker/internal/store"
)

func (a *app) checkCmd() *cobra.Command {
	var failExpired bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Print the expiry status of every worker's equipment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := a.cfg.Location()
			if err != nil {
				return err
			}
			if _, err := os.Stat(a.cfg.DB); err != nil {
				return fmt.Errorf("opening database %s: %w", a.cfg.DB, err)
			}

			database, err := db.Open(a.cfg.DB)
			if err != nil {
				return err
			}
			defer database.Close()
			if err := db.Migrate(database); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.FetchTimeout)
			defer cancel()

			expired, err := check(ctx, cmd.OutOrStdout(), database, time.Now(), loc)
			if err != nil {
				return err
			}
			if failExpired && expired > 0 {
				return fmt.Errorf("%d expired item(s)", expired)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&failExpired, "fail-expired", false, "exit with an error when any equipment has expired")
	return cmd
}

// check classifies every configured equipment slot at now and prints a table.
// It returns the number of expired items.
func check(ctx context.Context, w io.Writer, database *sql.DB, now time.Time, loc *time.Location) (int, error) {
	items, err := store.ListAllEquipment(ctx, database)
	if err != nil {
		return 0, err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WORKER\tEQUIPMENT\tQTY\tRECEIVED\tVALID UNTIL\tSTATUS")

	expired := 0
	for _, e := range items {
		st := expiry.Classify(e.ReceptionDate, e.ValidityDate, now, loc)
		if st.Kind == expiry.KindUnset {
			continue
		}
		if st.Kind == expiry.KindExpired {
			expired++
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			e.WorkerName, e.Name, e.Quantity, e.ReceptionDate, e.ValidityDate, st.Label())
	}
	if err := tw.Flush(); err != nil {
		return 0, err
	}
	return expired, nil
}
