package tracker

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// Column layout of the exported sheet. Import accepts the same layout so
// a sheet can travel to a phone or printer and come back.
var xlsxHeader = []string{"Straße", "Häuser", "Erledigt", "Von", "Am"}

const xlsxTimeLayout = "2006-01-02 15:04"

// ExportXLSX writes the snapshot to an Excel sheet, one row per street.
// Done streets carry an "x" marker so the sheet works on paper too.
func (t *Tracker) ExportXLSX(path string, statuses []Status) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Straßen")
	if err != nil {
		return eris.Wrap(err, "tracker: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range xlsxHeader {
		header.AddCell().SetString(h)
	}

	for _, st := range statuses {
		row := sheet.AddRow()
		row.AddCell().SetString(st.Street)
		row.AddCell().SetInt(st.HouseCount)
		if st.Done {
			row.AddCell().SetString("x")
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(st.DoneBy)
		if st.DoneAt != nil {
			row.AddCell().SetString(st.DoneAt.Format(xlsxTimeLayout))
		} else {
			row.AddCell().SetString("")
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "tracker: save xlsx %s", path)
	}
	t.log.Info("exported progress sheet", zap.String("path", path), zap.Int("streets", len(statuses)))
	return nil
}

// ImportXLSX reads a sheet in the export layout back into statuses.
// The header row is skipped; blank street cells end the sheet.
func (t *Tracker) ImportXLSX(path string) ([]Status, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "tracker: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("tracker: %s has no sheets", path)
	}

	var statuses []Status
	for i, row := range f.Sheets[0].Rows {
		if i == 0 {
			continue
		}
		cells := make([]string, 5)
		for j := 0; j < len(cells) && j < len(row.Cells); j++ {
			cells[j] = strings.TrimSpace(row.Cells[j].String())
		}
		if cells[0] == "" {
			break
		}

		st := Status{Street: cells[0], Done: parseDoneMark(cells[2]), DoneBy: cells[3]}
		if n, err := strconv.Atoi(cells[1]); err == nil {
			st.HouseCount = n
		}
		if at, err := time.Parse(xlsxTimeLayout, cells[4]); err == nil {
			at = at.UTC()
			st.DoneAt = &at
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// SyncFromXLSX applies a sheet's done marks to the store: marked rows are
// recorded as done, unmarked rows that the store has as done are reopened.
// Returns the number of rows that changed the store.
func (t *Tracker) SyncFromXLSX(ctx context.Context, path string) (int, error) {
	statuses, err := t.ImportXLSX(path)
	if err != nil {
		return 0, err
	}

	current, err := t.store.ListProgress(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "tracker: load progress")
	}
	wasDone := make(map[string]bool, len(current))
	for _, e := range current {
		wasDone[e.Street] = e.Done
	}

	changed := 0
	for _, st := range statuses {
		switch {
		case st.Done && !wasDone[st.Street]:
			if err := t.store.MarkStreetDone(ctx, st.Street, st.DoneBy); err != nil {
				return changed, err
			}
			changed++
		case !st.Done && wasDone[st.Street]:
			if err := t.store.MarkStreetOpen(ctx, st.Street); err != nil {
				return changed, err
			}
			changed++
		}
	}

	t.log.Info("synced progress sheet", zap.String("path", path), zap.Int("changed", changed))
	return changed, nil
}

// parseDoneMark treats the markers people actually write as done.
func parseDoneMark(s string) bool {
	switch strings.ToLower(s) {
	case "x", "✓", "1", "ja", "true", "yes":
		return true
	}
	return false
}
