package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zustellwerk/gebiet-cli/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the latest plan and progress for the configured place",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("streets"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		out := cmd.OutOrStdout()

		rec, err := st.LatestPlan(ctx, cfg.Place)
		if err != nil {
			return err
		}
		if rec == nil {
			fmt.Fprintf(out, "Kein Plan für %s gespeichert\n", cfg.Place)
		} else {
			fmt.Fprintf(out, "Plan %s (%s)\n", rec.ID, rec.CreatedAt.Format("2006-01-02 15:04"))
			fmt.Fprintf(out, "%d Gebäude, %d Stücke\n", rec.Summary.TotalBuildings, rec.Summary.PieceCount)
			for _, c := range rec.Summary.Couriers {
				fmt.Fprintf(out, "  %-20s %4d Gebäude\n", c.Name, c.Load)
			}
		}

		entries, err := st.ListProgress(ctx)
		if err != nil {
			return err
		}
		done := 0
		for _, e := range entries {
			if e.Done {
				done++
			}
		}
		fmt.Fprintf(out, "\nFortschritt: %d/%d Straßen erledigt\n", done, len(entries))
		return nil
	},
}

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List stored plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		records, err := st.ListPlans(ctx, store.PlanFilter{Place: cfg.Place})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "Keine Pläne gespeichert")
			return nil
		}
		for _, r := range records {
			fmt.Fprintf(out, "%s  %-20s %s  %d Gebäude, %d Zusteller\n",
				r.CreatedAt.Format("2006-01-02 15:04"), r.Place, r.ID,
				r.Summary.TotalBuildings, len(r.Summary.Couriers))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd, plansCmd)
}
