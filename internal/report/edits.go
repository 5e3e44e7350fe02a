package report

import (
	"context"
	"fmt"

	"github.com/akraiem/attendance-tracker/internal/store"
)

// EditStats counts the writes an ApplyEdits call produced.
type EditStats struct {
	Deleted  int `json:"deleted"`
	Updated  int `json:"updated"`
	Inserted int `json:"inserted"`
}

// ApplyEdits reconciles an edited copy of a filtered record set with the
// log. before must be the rows as they were loaded; after is the edited
// set. Rows present in before but missing from after are deleted, rows
// without an id are inserted, and rows whose fields changed are updated.
// Records outside before are never touched, so edits stay scoped to the
// filtered subset the operator was shown.
func ApplyEdits(ctx context.Context, att store.Attendance, before, after []store.Record) (EditStats, error) {
	var stats EditStats

	original := make(map[int64]store.Record, len(before))
	for _, r := range before {
		original[r.ID] = r
	}

	kept := make(map[int64]bool, len(after))
	for _, r := range after {
		if r.ID == 0 {
			if _, err := att.Insert(ctx, r); err != nil {
				return stats, fmt.Errorf("inserting record: %w", err)
			}
			stats.Inserted++
			continue
		}
		prev, ok := original[r.ID]
		if !ok {
			// An id the operator never loaded; refuse to touch it.
			return stats, fmt.Errorf("record %d is outside the edited set", r.ID)
		}
		kept[r.ID] = true
		if prev == r {
			continue
		}
		if err := att.Update(ctx, r); err != nil {
			return stats, fmt.Errorf("updating record %d: %w", r.ID, err)
		}
		stats.Updated++
	}

	for _, r := range before {
		if kept[r.ID] {
			continue
		}
		if err := att.Delete(ctx, r.ID); err != nil {
			return stats, fmt.Errorf("deleting record %d: %w", r.ID, err)
		}
		stats.Deleted++
	}

	return stats, nil
}
