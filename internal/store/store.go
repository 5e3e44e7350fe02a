// Package store defines the relational storage interfaces for the student
// registry and the attendance log. SQLite is the default file-backed
// backend; PostgreSQL is available for shared deployments.
package store

import (
	"context"
	"errors"
)

// Date and time layouts used throughout the attendance tables.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// SentinelTime marks Absent records that have no observed time.
const SentinelTime = "-"

// Attendance statuses.
const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
)

var (
	// ErrNotFound is returned when a student or record does not exist.
	ErrNotFound = errors.New("not found")
)

// Student is a row in the student registry.
type Student struct {
	ID               int64  `json:"id"`
	FullName         string `json:"full_name"`
	RegNo            string `json:"reg_no"`
	FolderName       string `json:"folder_name"`
	ImageCount       int    `json:"image_count"`
	RegistrationDate string `json:"registration_date"`
}

// Record is a row in the attendance log.
type Record struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	RegNo    string `json:"reg_no"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Status   string `json:"status"`
}

// Filter narrows attendance queries. Zero values mean "all".
type Filter struct {
	LastDays int    // 7, 14, 21 or 30; 0 = all time
	Date     string // specific calendar date
	Name     string // specific student full name
}

// Students is the student registry.
type Students interface {
	// GetByRegNo returns the student with the registration number, or
	// ErrNotFound.
	GetByRegNo(ctx context.Context, regNo string) (*Student, error)
	// List returns all registered students ordered by full name.
	List(ctx context.Context) ([]Student, error)
	// Upsert inserts the student or, when the registration number already
	// exists, adds addedImages onto the stored image count. The original
	// registration date is kept on update.
	Upsert(ctx context.Context, s Student, addedImages int) error
}

// Attendance is the attendance log. Per-day uniqueness is enforced by
// check-then-insert; the process is single-threaded so the race window is
// accepted (a concurrent reimplementation must move this into a
// constraint).
type Attendance interface {
	// MarkPresent writes a Present record for (fullName, date) unless one
	// already exists for that day. Returns true when a row was written.
	MarkPresent(ctx context.Context, fullName, regNo, date, timeOfDay string) (bool, error)
	// InsertAbsent writes an Absent record with the sentinel time unless
	// any record exists for (fullName, date). Returns true when written.
	InsertAbsent(ctx context.Context, fullName, regNo, date string) (bool, error)
	// ExistsForDay reports whether any record exists for (fullName, date).
	ExistsForDay(ctx context.Context, fullName, date string) (bool, error)
	// PresentNames returns the distinct names with a Present record on date.
	PresentNames(ctx context.Context, date string) ([]string, error)
	// List returns records matching the filter, newest date first.
	List(ctx context.Context, f Filter) ([]Record, error)
	// Get returns one record by id, or ErrNotFound.
	Get(ctx context.Context, id int64) (*Record, error)
	// Insert adds a record and returns its id.
	Insert(ctx context.Context, r Record) (int64, error)
	// Update rewrites all attributes of the record with r.ID.
	Update(ctx context.Context, r Record) error
	// Delete removes the record by id.
	Delete(ctx context.Context, id int64) error
}

// Store bundles both repositories behind one backend connection.
type Store interface {
	Students() Students
	Attendance() Attendance
	Close() error
}
