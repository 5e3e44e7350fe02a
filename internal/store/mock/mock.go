// Package mock is an in-memory store.Store for tests.
package mock

import (
	"context"
	"sort"
	"time"

	"github.com/akraiem/attendance-tracker/internal/store"
)

// Store implements store.Store entirely in memory.
type Store struct {
	StudentRows []store.Student
	RecordRows  []store.Record
	nextID      int64

	// FailWith, when set, is returned by every repository method.
	FailWith error
}

func New() *Store {
	return &Store{nextID: 1}
}

func (m *Store) Students() store.Students     { return (*studentRepo)(m) }
func (m *Store) Attendance() store.Attendance { return (*attendanceRepo)(m) }
func (m *Store) Close() error                 { return nil }

type studentRepo Store

func (r *studentRepo) GetByRegNo(ctx context.Context, regNo string) (*store.Student, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	for i := range r.StudentRows {
		if r.StudentRows[i].RegNo == regNo {
			s := r.StudentRows[i]
			return &s, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *studentRepo) List(ctx context.Context) ([]store.Student, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	out := make([]store.Student, len(r.StudentRows))
	copy(out, r.StudentRows)
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r *studentRepo) Upsert(ctx context.Context, s store.Student, addedImages int) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	for i := range r.StudentRows {
		if r.StudentRows[i].RegNo == s.RegNo {
			r.StudentRows[i].FullName = s.FullName
			r.StudentRows[i].FolderName = s.FolderName
			r.StudentRows[i].ImageCount += addedImages
			return nil
		}
	}
	s.ID = r.nextID
	r.nextID++
	s.ImageCount = addedImages
	r.StudentRows = append(r.StudentRows, s)
	return nil
}

type attendanceRepo Store

func (r *attendanceRepo) ExistsForDay(ctx context.Context, fullName, date string) (bool, error) {
	if r.FailWith != nil {
		return false, r.FailWith
	}
	for _, rec := range r.RecordRows {
		if rec.FullName == fullName && rec.Date == date {
			return true, nil
		}
	}
	return false, nil
}

func (r *attendanceRepo) MarkPresent(ctx context.Context, fullName, regNo, date, timeOfDay string) (bool, error) {
	exists, err := r.ExistsForDay(ctx, fullName, date)
	if err != nil || exists {
		return false, err
	}
	_, err = r.Insert(ctx, store.Record{
		FullName: fullName, RegNo: regNo, Date: date, Time: timeOfDay, Status: store.StatusPresent,
	})
	return err == nil, err
}

func (r *attendanceRepo) InsertAbsent(ctx context.Context, fullName, regNo, date string) (bool, error) {
	exists, err := r.ExistsForDay(ctx, fullName, date)
	if err != nil || exists {
		return false, err
	}
	_, err = r.Insert(ctx, store.Record{
		FullName: fullName, RegNo: regNo, Date: date, Time: store.SentinelTime, Status: store.StatusAbsent,
	})
	return err == nil, err
}

func (r *attendanceRepo) PresentNames(ctx context.Context, date string) ([]string, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	seen := map[string]bool{}
	var names []string
	for _, rec := range r.RecordRows {
		if rec.Date == date && rec.Status == store.StatusPresent && !seen[rec.FullName] {
			seen[rec.FullName] = true
			names = append(names, rec.FullName)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (r *attendanceRepo) List(ctx context.Context, f store.Filter) ([]store.Record, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	var cutoff string
	if f.LastDays > 0 {
		cutoff = time.Now().AddDate(0, 0, -f.LastDays).Format(store.DateLayout)
	}

	var out []store.Record
	for _, rec := range r.RecordRows {
		if cutoff != "" && rec.Date < cutoff {
			continue
		}
		if f.Date != "" && rec.Date != f.Date {
			continue
		}
		if f.Name != "" && rec.FullName != f.Name {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *attendanceRepo) Get(ctx context.Context, id int64) (*store.Record, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	for _, rec := range r.RecordRows {
		if rec.ID == id {
			out := rec
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *attendanceRepo) Insert(ctx context.Context, rec store.Record) (int64, error) {
	if r.FailWith != nil {
		return 0, r.FailWith
	}
	rec.ID = r.nextID
	r.nextID++
	r.RecordRows = append(r.RecordRows, rec)
	return rec.ID, nil
}

func (r *attendanceRepo) Update(ctx context.Context, rec store.Record) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	for i := range r.RecordRows {
		if r.RecordRows[i].ID == rec.ID {
			r.RecordRows[i] = rec
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *attendanceRepo) Delete(ctx context.Context, id int64) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	for i := range r.RecordRows {
		if r.RecordRows[i].ID == id {
			r.RecordRows = append(r.RecordRows[:i], r.RecordRows[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}
