package report

import (
	"context"
	"strings"
	"testing"

	"github.com/akraiem/attendance-tracker/internal/store"
	"github.com/akraiem/attendance-tracker/internal/store/mock"
)

func present(name, regNo, date, timeOfDay string) store.Record {
	return store.Record{FullName: name, RegNo: regNo, Date: date, Time: timeOfDay, Status: store.StatusPresent}
}

func absent(name, regNo, date string) store.Record {
	return store.Record{FullName: name, RegNo: regNo, Date: date, Time: store.SentinelTime, Status: store.StatusAbsent}
}

func TestSummarize(t *testing.T) {
	records := []store.Record{
		present("amal omar khalid", "1", "2026-03-02", "09:00:00"),
		present("sara ali hassan", "2", "2026-03-02", "09:30:00"),
		present("amal omar khalid", "1", "2026-03-03", "10:00:00"),
		absent("omar said nasser", "3", "2026-03-02"),
	}

	s := Summarize(records)
	if s.TotalRecords != 4 {
		t.Errorf("total = %d", s.TotalRecords)
	}
	if s.DistinctStudents != 3 {
		t.Errorf("distinct = %d", s.DistinctStudents)
	}
	if s.EarliestTime != "09:00:00" || s.LatestTime != "10:00:00" {
		t.Errorf("times = %s..%s", s.EarliestTime, s.LatestTime)
	}
	// (9:00 + 9:30 + 10:00) / 3 = 9:30, sentinel time excluded.
	if s.MeanTime != "09:30:00" {
		t.Errorf("mean = %s", s.MeanTime)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalRecords != 0 || s.DistinctStudents != 0 {
		t.Fatalf("summary = %+v", s)
	}
	if s.EarliestTime != NA || s.LatestTime != NA || s.MeanTime != NA {
		t.Fatalf("empty summary must report %s: %+v", NA, s)
	}
}

func TestSummarizeOnlyAbsent(t *testing.T) {
	s := Summarize([]store.Record{absent("amal omar khalid", "1", "2026-03-02")})
	if s.MeanTime != NA {
		t.Fatalf("mean over sentinel times = %s, want %s", s.MeanTime, NA)
	}
	if s.DistinctStudents != 1 {
		t.Fatalf("distinct = %d", s.DistinctStudents)
	}
}

func TestComputeAbsentees(t *testing.T) {
	registry := []store.Student{
		{FullName: "sara ali hassan", RegNo: "2"},
		{FullName: "amal omar khalid", RegNo: "1"},
		{FullName: "omar said nasser", RegNo: "3"},
	}
	got := ComputeAbsentees(registry, []string{"amal omar khalid"})
	if len(got) != 2 {
		t.Fatalf("absentees = %+v", got)
	}
	if got[0].FullName != "omar said nasser" || got[1].FullName != "sara ali hassan" {
		t.Fatalf("not ordered by name: %+v", got)
	}
}

func TestPersistAbsenteesIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := mock.New()
	for _, s := range []store.Student{
		{FullName: "amal omar khalid", RegNo: "1", FolderName: "amal_omar_khalid_1", RegistrationDate: "2026-01-01"},
		{FullName: "sara ali hassan", RegNo: "2", FolderName: "sara_ali_hassan_2", RegistrationDate: "2026-01-01"},
		{FullName: "omar said nasser", RegNo: "3", FolderName: "omar_said_nasser_3", RegistrationDate: "2026-01-01"},
	} {
		if err := st.Students().Upsert(ctx, s, 1); err != nil {
			t.Fatalf("seeding: %v", err)
		}
	}
	if _, err := st.Attendance().MarkPresent(ctx, "amal omar khalid", "1", "2026-03-02", "09:00:00"); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	n, err := PersistAbsentees(ctx, st.Students(), st.Attendance(), "2026-03-02")
	if err != nil {
		t.Fatalf("PersistAbsentees: %v", err)
	}
	if n != 2 {
		t.Fatalf("wrote %d absentees, want 2", n)
	}

	n, err = PersistAbsentees(ctx, st.Students(), st.Attendance(), "2026-03-02")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if n != 0 {
		t.Fatalf("second run wrote %d rows, want 0", n)
	}

	records, _ := st.Attendance().List(ctx, store.Filter{Date: "2026-03-02"})
	if len(records) != 3 {
		t.Fatalf("day has %d records, want 3", len(records))
	}
	for _, r := range records {
		if r.Status == store.StatusAbsent && r.Time != store.SentinelTime {
			t.Fatalf("absent record with real time: %+v", r)
		}
	}
}

func TestRenderCSV(t *testing.T) {
	data, err := RenderCSV([]store.Record{
		{ID: 7, FullName: "amal omar khalid", RegNo: "1", Date: "2026-03-02", Time: "09:00:00", Status: store.StatusPresent},
	})
	if err != nil {
		t.Fatalf("RenderCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv = %q", data)
	}
	if lines[0] != "id,full_name,reg_no,date,time,status" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "7,amal omar khalid,1,2026-03-02,09:00:00,Present" {
		t.Errorf("row = %q", lines[1])
	}
}

func TestBuildCharts(t *testing.T) {
	records := []store.Record{
		present("amal omar khalid", "1", "2026-03-02", "09:05:00"),
		present("sara ali hassan", "2", "2026-03-02", "09:55:00"),
		present("amal omar khalid", "1", "2026-03-03", "10:10:00"),
		absent("omar said nasser", "3", "2026-03-02"),
	}

	c := BuildCharts(records, 10)
	if len(c.PerDay) != 2 {
		t.Fatalf("per day = %+v", c.PerDay)
	}
	if c.PerDay[0].Date != "2026-03-02" || c.PerDay[0].Present != 2 || c.PerDay[0].Absent != 1 {
		t.Errorf("first day = %+v", c.PerDay[0])
	}
	if c.TopStudents[0].Name != "amal omar khalid" || c.TopStudents[0].Count != 2 {
		t.Errorf("top students = %+v", c.TopStudents)
	}
	if len(c.HourlyArrivals) != 2 || c.HourlyArrivals[0].Name != "09:00" || c.HourlyArrivals[0].Count != 2 {
		t.Errorf("hourly = %+v", c.HourlyArrivals)
	}
	if c.BusiestDays[0].Name != "2026-03-02" || c.BusiestDays[0].Count != 2 {
		t.Errorf("busiest = %+v", c.BusiestDays)
	}
}

func TestApplyEdits(t *testing.T) {
	ctx := context.Background()
	st := mock.New()
	ids := make([]int64, 3)
	for i, r := range []store.Record{
		present("amal omar khalid", "1", "2026-03-02", "09:00:00"),
		present("sara ali hassan", "2", "2026-03-02", "09:30:00"),
		present("omar said nasser", "3", "2026-03-02", "09:45:00"),
	} {
		id, err := st.Attendance().Insert(ctx, r)
		if err != nil {
			t.Fatalf("seeding: %v", err)
		}
		ids[i] = id
	}

	before, _ := st.Attendance().List(ctx, store.Filter{Date: "2026-03-02"})
	var after []store.Record
	for _, r := range before {
		switch r.ID {
		case ids[0]:
			// dropped: becomes a delete
		case ids[1]:
			r.Status = store.StatusAbsent
			r.Time = store.SentinelTime
			after = append(after, r)
		default:
			after = append(after, r)
		}
	}

	stats, err := ApplyEdits(ctx, st.Attendance(), before, after)
	if err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}
	if stats != (EditStats{Deleted: 1, Updated: 1, Inserted: 0}) {
		t.Fatalf("stats = %+v", stats)
	}

	records, _ := st.Attendance().List(ctx, store.Filter{Date: "2026-03-02"})
	if len(records) != 2 {
		t.Fatalf("left %d records, want 2", len(records))
	}
	for _, r := range records {
		if r.ID == ids[1] && r.Status != store.StatusAbsent {
			t.Fatalf("update not applied: %+v", r)
		}
	}
}

func TestApplyEditsInsertsRowsWithoutID(t *testing.T) {
	ctx := context.Background()
	st := mock.New()
	id, err := st.Attendance().Insert(ctx, present("amal omar khalid", "1", "2026-03-02", "09:00:00"))
	if err != nil {
		t.Fatalf("seeding: %v", err)
	}

	before, _ := st.Attendance().List(ctx, store.Filter{})
	after := append([]store.Record{}, before...)
	after = append(after, present("sara ali hassan", "2", "2026-03-02", "09:30:00"))

	stats, err := ApplyEdits(ctx, st.Attendance(), before, after)
	if err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}
	if stats != (EditStats{Inserted: 1}) {
		t.Fatalf("stats = %+v", stats)
	}
	records, _ := st.Attendance().List(ctx, store.Filter{})
	if len(records) != 2 {
		t.Fatalf("records = %+v", records)
	}
	_ = id
}

func TestApplyEditsRejectsForeignIDs(t *testing.T) {
	ctx := context.Background()
	st := mock.New()
	if _, err := ApplyEdits(ctx, st.Attendance(), nil, []store.Record{{ID: 99}}); err == nil {
		t.Fatal("expected error for id outside the edited set")
	}
}
