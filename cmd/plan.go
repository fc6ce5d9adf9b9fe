package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zustellwerk/gebiet-cli/internal/geo"
	"github.com/zustellwerk/gebiet-cli/internal/model"
	"github.com/zustellwerk/gebiet-cli/internal/osm"
	"github.com/zustellwerk/gebiet-cli/internal/render"
	"github.com/zustellwerk/gebiet-cli/internal/shapeload"
	"github.com/zustellwerk/gebiet-cli/internal/territory"
)

var (
	planPlace        string
	planOut          string
	planMultiplier   int
	planBuildingsSHP string
	planStreetsSHP   string
	planNoSave       bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Partition a place's buildings into fair courier territories",
	Long:  "Fetches buildings and streets (Overpass or local shapefiles), clusters buildings into micro-pieces, assigns them greedily to couriers and renders map artifacts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if planPlace != "" {
			cfg.Place = planPlace
		}
		if planMultiplier > 0 {
			cfg.Territory.Multiplier = planMultiplier
		}
		if err := cfg.Validate("plan"); err != nil {
			return err
		}
		ctx := cmd.Context()
		log := zap.L().With(zap.String("place", cfg.Place))

		// Source buildings and streets.
		var rawBuildings []osm.Building
		var rawStreets []osm.Street
		if planBuildingsSHP != "" {
			var err error
			rawBuildings, err = shapeload.LoadBuildings(planBuildingsSHP)
			if err != nil {
				return err
			}
			if planStreetsSHP != "" {
				rawStreets, err = shapeload.LoadStreets(planStreetsSHP)
				if err != nil {
					return err
				}
			}
			log.Info("loaded shapefiles",
				zap.Int("buildings", len(rawBuildings)),
				zap.Int("streets", len(rawStreets)),
			)
		} else {
			client := osm.NewClient(cfg.Overpass.BaseURL,
				time.Duration(cfg.Overpass.TimeoutSecs)*time.Second,
				cfg.Overpass.RatePerSec,
			)
			area, err := client.FetchArea(ctx, cfg.Place)
			if err != nil {
				return err
			}
			rawBuildings = area.Buildings
			rawStreets = area.Streets
		}

		buildings, streets, proj, err := geo.ProjectArea(rawBuildings, rawStreets)
		if err != nil {
			return err
		}
		geo.AssociateStreets(buildings, streets)

		// Couriers.
		roster, err := model.LoadRoster(cfg.Roster)
		if err != nil {
			return err
		}
		starts := make([]territory.Start, len(roster.Couriers))
		for i, c := range roster.Couriers {
			starts[i] = territory.Start{Name: c.Name, At: proj.Forward(c.Lat, c.Lon)}
		}

		// Partition.
		points := make([]model.Point, len(buildings))
		buildingIDs := make([]int64, len(buildings))
		for i, b := range buildings {
			points[i] = b.Point
			buildingIDs[i] = b.ID
		}
		plan, err := territory.Build(points, starts, territory.Options{
			Multiplier: cfg.Territory.Multiplier,
			Blend:      cfg.Territory.AnchorBlend,
		})
		if err != nil {
			return err
		}
		log.Info("built plan",
			zap.Int("buildings", len(buildings)),
			zap.Int("pieces", len(plan.Pieces)),
			zap.Int("couriers", len(plan.Couriers)),
		)

		// Render artifacts.
		outDir := planOut
		if outDir == "" {
			outDir = cfg.Output.Dir
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return eris.Wrap(err, "create output dir")
		}

		in := render.Input{Place: cfg.Place, Buildings: buildings, Plan: plan, Proj: proj}
		for name, write := range map[string]func(string, render.Input) error{
			"plan.geojson": render.WriteGeoJSON,
			"plan.html":    render.WriteHTML,
			"plan.kml":     render.WriteKML,
		} {
			if err := write(filepath.Join(outDir, name), in); err != nil {
				return err
			}
		}

		report, err := render.Report(in)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(outDir, "report.txt"), []byte(report), 0o644); err != nil {
			return eris.Wrap(err, "write report")
		}
		fmt.Fprint(cmd.OutOrStdout(), report)

		// Persist.
		if !planNoSave {
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			rec, err := st.SavePlan(ctx, cfg.Place, plan.Summary(cfg.Territory.Multiplier, buildingIDs))
			if err != nil {
				return err
			}
			log.Info("saved plan", zap.String("id", rec.ID))
			fmt.Fprintf(cmd.OutOrStdout(), "\nPlan gespeichert: %s\n", rec.ID)
		}

		return nil
	},
}

func init() {
	planCmd.Flags().StringVar(&planPlace, "place", "", "place name (default from config)")
	planCmd.Flags().StringVar(&planOut, "out", "", "output directory (default from config)")
	planCmd.Flags().IntVar(&planMultiplier, "multiplier", 0, "pieces per courier (default from config)")
	planCmd.Flags().StringVar(&planBuildingsSHP, "buildings-shp", "", "load buildings from a shapefile instead of Overpass")
	planCmd.Flags().StringVar(&planStreetsSHP, "streets-shp", "", "load streets from a shapefile (with --buildings-shp)")
	planCmd.Flags().BoolVar(&planNoSave, "no-save", false, "skip persisting the plan to the store")
	rootCmd.AddCommand(planCmd)
}
