package render

import (
	"fmt"
	"strings"
)

// Report writes the fairness summary people paste into the group chat:
// per-courier loads, the observed spread and the bound it must stay under.
func Report(in Input) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}

	plan := in.Plan
	var sb strings.Builder

	fmt.Fprintf(&sb, "Gebietsplan %s\n", in.Place)
	fmt.Fprintf(&sb, "%d Gebäude, %d Stücke, %d Zusteller\n\n",
		len(plan.PointPiece), len(plan.Pieces), len(plan.Couriers))

	minLoad, maxLoad := -1, 0
	for _, c := range plan.Couriers {
		fmt.Fprintf(&sb, "  %-20s %4d Gebäude  Stücke %v\n", c.Name, c.Load, c.PieceIDs)
		if minLoad < 0 || c.Load < minLoad {
			minLoad = c.Load
		}
		if c.Load > maxLoad {
			maxLoad = c.Load
		}
	}

	spread := maxLoad - minLoad
	bound := plan.MaxPieceSize()
	fmt.Fprintf(&sb, "\nSpreizung %d (Schranke: größtes Stück = %d)\n", spread, bound)
	if spread > bound {
		fmt.Fprintf(&sb, "WARNUNG: Spreizung überschreitet die Schranke\n")
	}
	return sb.String(), nil
}
