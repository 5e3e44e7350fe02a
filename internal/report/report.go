// Package report derives summaries, charts and exports from the
// attendance log, and applies table edits back to it.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"time"

	"github.com/akraiem/attendance-tracker/internal/store"
)

// NA is shown for statistics with no underlying data.
const NA = "N/A"

// Summary are the headline numbers above a filtered attendance table.
// Time fields only consider Present records; Absent rows carry the
// sentinel time and are excluded.
type Summary struct {
	TotalRecords     int    `json:"total_records"`
	DistinctStudents int    `json:"distinct_students"`
	EarliestTime     string `json:"earliest_time"`
	LatestTime       string `json:"latest_time"`
	MeanTime         string `json:"mean_time"`
}

// Summarize builds the Summary for a set of records.
func Summarize(records []store.Record) Summary {
	s := Summary{
		TotalRecords: len(records),
		EarliestTime: NA,
		LatestTime:   NA,
		MeanTime:     NA,
	}

	names := map[string]bool{}
	var times []time.Time
	for _, r := range records {
		names[r.FullName] = true
		if r.Time == store.SentinelTime {
			continue
		}
		t, err := time.Parse(store.TimeLayout, r.Time)
		if err != nil {
			continue
		}
		times = append(times, t)
	}
	s.DistinctStudents = len(names)

	if len(times) == 0 {
		return s
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	s.EarliestTime = times[0].Format(store.TimeLayout)
	s.LatestTime = times[len(times)-1].Format(store.TimeLayout)

	var totalSeconds int
	for _, t := range times {
		totalSeconds += t.Hour()*3600 + t.Minute()*60 + t.Second()
	}
	mean := totalSeconds / len(times)
	s.MeanTime = fmt.Sprintf("%02d:%02d:%02d", mean/3600, mean%3600/60, mean%60)
	return s
}

// ComputeAbsentees returns the registered students with no Present record
// in presentNames, ordered by full name. It performs no writes.
func ComputeAbsentees(registry []store.Student, presentNames []string) []store.Student {
	present := make(map[string]bool, len(presentNames))
	for _, name := range presentNames {
		present[name] = true
	}
	var absent []store.Student
	for _, s := range registry {
		if !present[s.FullName] {
			absent = append(absent, s)
		}
	}
	sort.Slice(absent, func(i, j int) bool { return absent[i].FullName < absent[j].FullName })
	return absent
}

// PersistAbsentees writes an Absent record with the sentinel time for
// every registered student without any record on date. Returns how many
// rows were written. Safe to run repeatedly for the same date.
func PersistAbsentees(ctx context.Context, students store.Students, att store.Attendance, date string) (int, error) {
	registry, err := students.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing students: %w", err)
	}
	present, err := att.PresentNames(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("listing present students: %w", err)
	}

	written := 0
	for _, s := range ComputeAbsentees(registry, present) {
		ok, err := att.InsertAbsent(ctx, s.FullName, s.RegNo, date)
		if err != nil {
			return written, fmt.Errorf("inserting absent record for %s: %w", s.FullName, err)
		}
		if ok {
			written++
		}
	}
	return written, nil
}

// RenderCSV serializes records with a header row, in the given order.
func RenderCSV(records []store.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "full_name", "reg_no", "date", "time", "status"}); err != nil {
		return nil, err
	}
	for _, r := range records {
		row := []string{
			fmt.Sprintf("%d", r.ID),
			r.FullName, r.RegNo, r.Date, r.Time, r.Status,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportFilename returns the download name for a CSV export on date.
func ExportFilename(date string) string {
	return fmt.Sprintf("attendance_%s.csv", date)
}
