package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akraiem/attendance-tracker/internal/store"
)

type studentRepo struct {
	db *sql.DB
}

func (r *studentRepo) GetByRegNo(ctx context.Context, regNo string) (*store.Student, error) {
	var s store.Student
	err := r.db.QueryRowContext(ctx, `
		SELECT id, full_name, reg_no, folder_name, image_count, registration_date
		FROM students WHERE reg_no = ?
	`, regNo).Scan(&s.ID, &s.FullName, &s.RegNo, &s.FolderName, &s.ImageCount, &s.RegistrationDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query student by reg_no: %w", err)
	}
	return &s, nil
}

func (r *studentRepo) List(ctx context.Context) ([]store.Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, full_name, reg_no, folder_name, image_count, registration_date
		FROM students ORDER BY full_name
	`)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	var students []store.Student
	for rows.Next() {
		var s store.Student
		if err := rows.Scan(&s.ID, &s.FullName, &s.RegNo, &s.FolderName, &s.ImageCount, &s.RegistrationDate); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	return students, nil
}

// Upsert inserts the student or adds addedImages onto the existing image
// count. The first registration date is kept on update.
func (r *studentRepo) Upsert(ctx context.Context, s store.Student, addedImages int) error {
	existing, err := r.GetByRegNo(ctx, s.RegNo)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if existing != nil {
		_, err = r.db.ExecContext(ctx, `
			UPDATE students SET full_name = ?, folder_name = ?, image_count = image_count + ?
			WHERE reg_no = ?
		`, s.FullName, s.FolderName, addedImages, s.RegNo)
		if err != nil {
			return fmt.Errorf("update student: %w", err)
		}
		return nil
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO students (full_name, reg_no, folder_name, image_count, registration_date)
		VALUES (?, ?, ?, ?, ?)
	`, s.FullName, s.RegNo, s.FolderName, addedImages, s.RegistrationDate)
	if err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}
