package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/akraiem/attendance-tracker/internal/store"
)

type attendanceRepo struct {
	db *sql.DB
}

func (r *attendanceRepo) ExistsForDay(ctx context.Context, fullName, date string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM attendance WHERE full_name = $1 AND date = $2)",
		fullName, date).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check attendance exists: %w", err)
	}
	return exists, nil
}

func (r *attendanceRepo) MarkPresent(ctx context.Context, fullName, regNo, date, timeOfDay string) (bool, error) {
	exists, err := r.ExistsForDay(ctx, fullName, date)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO attendance (full_name, reg_no, date, time, status)
		VALUES ($1, $2, $3, $4, $5)
	`, fullName, regNo, date, timeOfDay, store.StatusPresent)
	if err != nil {
		return false, fmt.Errorf("insert present record: %w", err)
	}
	return true, nil
}

func (r *attendanceRepo) InsertAbsent(ctx context.Context, fullName, regNo, date string) (bool, error) {
	exists, err := r.ExistsForDay(ctx, fullName, date)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO attendance (full_name, reg_no, date, time, status)
		VALUES ($1, $2, $3, $4, $5)
	`, fullName, regNo, date, store.SentinelTime, store.StatusAbsent)
	if err != nil {
		return false, fmt.Errorf("insert absent record: %w", err)
	}
	return true, nil
}

func (r *attendanceRepo) PresentNames(ctx context.Context, date string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT full_name FROM attendance
		WHERE date = $1 AND status = $2 ORDER BY full_name
	`, date, store.StatusPresent)
	if err != nil {
		return nil, fmt.Errorf("query present names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan present name: %w", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate present names: %w", err)
	}
	return names, nil
}

func (r *attendanceRepo) List(ctx context.Context, f store.Filter) ([]store.Record, error) {
	query := "SELECT id, full_name, reg_no, date, time, status FROM attendance WHERE 1=1"
	var args []any

	if f.LastDays > 0 {
		args = append(args, time.Now().AddDate(0, 0, -f.LastDays).Format(store.DateLayout))
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if f.Date != "" {
		args = append(args, f.Date)
		query += fmt.Sprintf(" AND date = $%d", len(args))
	}
	if f.Name != "" {
		args = append(args, f.Name)
		query += fmt.Sprintf(" AND full_name = $%d", len(args))
	}
	query += " ORDER BY date DESC, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	defer rows.Close()

	var records []store.Record
	for rows.Next() {
		var rec store.Record
		if err := rows.Scan(&rec.ID, &rec.FullName, &rec.RegNo, &rec.Date, &rec.Time, &rec.Status); err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance records: %w", err)
	}
	return records, nil
}

func (r *attendanceRepo) Get(ctx context.Context, id int64) (*store.Record, error) {
	var rec store.Record
	err := r.db.QueryRowContext(ctx, `
		SELECT id, full_name, reg_no, date, time, status FROM attendance WHERE id = $1
	`, id).Scan(&rec.ID, &rec.FullName, &rec.RegNo, &rec.Date, &rec.Time, &rec.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query attendance record: %w", err)
	}
	return &rec, nil
}

func (r *attendanceRepo) Insert(ctx context.Context, rec store.Record) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance (full_name, reg_no, date, time, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING id
	`, rec.FullName, rec.RegNo, rec.Date, rec.Time, rec.Status).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert attendance record: %w", err)
	}
	return id, nil
}

func (r *attendanceRepo) Update(ctx context.Context, rec store.Record) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE attendance SET full_name = $1, reg_no = $2, date = $3, time = $4, status = $5
		WHERE id = $6
	`, rec.FullName, rec.RegNo, rec.Date, rec.Time, rec.Status, rec.ID)
	if err != nil {
		return fmt.Errorf("update attendance record: %w", err)
	}
	return nil
}

func (r *attendanceRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM attendance WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete attendance record: %w", err)
	}
	return nil
}
