package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zustellwerk/gebiet-cli/internal/geo"
	"github.com/zustellwerk/gebiet-cli/internal/model"
	"github.com/zustellwerk/gebiet-cli/internal/osm"
	"github.com/zustellwerk/gebiet-cli/internal/tracker"
)

var (
	streetsDoneBy    string
	streetsExportOut string
	streetsResetYes  bool
)

var streetsCmd = &cobra.Command{
	Use:   "streets",
	Short: "Track per-street completion",
}

// fetchStreets pulls the place's street list with house counts attached.
func fetchStreets(ctx context.Context) ([]model.Street, error) {
	client := osm.NewClient(cfg.Overpass.BaseURL,
		time.Duration(cfg.Overpass.TimeoutSecs)*time.Second,
		cfg.Overpass.RatePerSec,
	)
	area, err := client.FetchArea(ctx, cfg.Place)
	if err != nil {
		return nil, err
	}
	buildings, streets, _, err := geo.ProjectArea(area.Buildings, area.Streets)
	if err != nil {
		return nil, err
	}
	geo.AssociateStreets(buildings, streets)
	return streets, nil
}

var streetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List streets with their completion state",
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

		streets, err := fetchStreets(ctx)
		if err != nil {
			return err
		}

		statuses, sum, err := tracker.New(st).Snapshot(ctx, streets)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, s := range statuses {
			mark := "  "
			if s.Done {
				mark = " x"
			}
			if s.Stale {
				mark = " ?"
			}
			fmt.Fprintf(out, "[%s] %-35s %4d Häuser", mark, s.Street, s.HouseCount)
			if s.DoneBy != "" {
				fmt.Fprintf(out, "  (%s)", s.DoneBy)
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "\n%d/%d erledigt (%.1f%%)\n", sum.Done, sum.Total, sum.Percent)
		return nil
	},
}

var streetsDoneCmd = &cobra.Command{
	Use:   "done <street>",
	Short: "Mark a street as fully worked",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := tracker.New(st).MarkDone(ctx, args[0], streetsDoneBy); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s erledigt\n", args[0])
		return nil
	},
}

var streetsUndoCmd = &cobra.Command{
	Use:   "undo <street>",
	Short: "Clear a street's done mark",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := tracker.New(st).Reopen(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s wieder offen\n", args[0])
		return nil
	},
}

var streetsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the street list with progress to an Excel sheet",
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

		streets, err := fetchStreets(ctx)
		if err != nil {
			return err
		}

		tr := tracker.New(st)
		statuses, _, err := tr.Snapshot(ctx, streets)
		if err != nil {
			return err
		}
		if err := tr.ExportXLSX(streetsExportOut, statuses); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exportiert: %s\n", streetsExportOut)
		return nil
	},
}

var streetsImportCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Apply done marks from an Excel sheet to the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		changed, err := tracker.New(st).SyncFromXLSX(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d Straßen aktualisiert\n", changed)
		return nil
	},
}

var streetsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear all street progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !streetsResetYes {
			return fmt.Errorf("refusing to clear progress without --yes")
		}
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := tracker.New(st).Reset(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d Einträge gelöscht\n", n)
		return nil
	},
}

func init() {
	streetsDoneCmd.Flags().StringVar(&streetsDoneBy, "by", "", "who finished the street")
	streetsExportCmd.Flags().StringVar(&streetsExportOut, "out", "strassen.xlsx", "output file")
	streetsResetCmd.Flags().BoolVar(&streetsResetYes, "yes", false, "confirm clearing all progress")

	streetsCmd.AddCommand(streetsListCmd, streetsDoneCmd, streetsUndoCmd,
		streetsExportCmd, streetsImportCmd, streetsResetCmd)
	rootCmd.AddCommand(streetsCmd)
}
