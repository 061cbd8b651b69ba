package sqlite

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/aanand-mishra/academic-records/internal/storage"
	"github.com/aanand-mishra/academic-records/internal/types"
)

// insertOwned inserts a row into a student-owned table and returns its ID.
// A missing owner surfaces from the foreign key as storage.ErrNotFound; a
// CHECK failure as storage.ErrValidation.
func (s *SQLite) insertOwned(ctx context.Context, op string, builder sq.InsertBuilder, studentID int64) (int64, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: build query: %w", op, err)
	}

	result, err := s.Db.ExecContext(ctx, query, args...)
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return 0, fmt.Errorf("%s: no student with id %d: %w", op, studentID, storage.ErrNotFound)
		case isCheckViolation(err):
			return 0, fmt.Errorf("%s: %w: %w", op, storage.ErrValidation, err)
		}
		return 0, fmt.Errorf("%s: exec: %w", op, err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: last insert id: %w", op, err)
	}

	return lastID, nil
}

// deleteByID removes one row by primary key, reporting storage.ErrNotFound
// when nothing was there.
func (s *SQLite) deleteByID(ctx context.Context, op, table string, id int64) error {
	query, args, err := s.sb.Delete(table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("%s: build query: %w", op, err)
	}

	result, err := s.Db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: exec: %w", op, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: no %s row with id %d: %w", op, table, id, storage.ErrNotFound)
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Grades
// ─────────────────────────────────────────────────────────────────────────────

// AddGrade inserts a grade entry. Duplicates for the same subject and term
// are accepted.
func (s *SQLite) AddGrade(ctx context.Context, grade types.Grade) (int64, error) {
	if err := storage.Validate(grade); err != nil {
		return 0, fmt.Errorf("AddGrade: %w", err)
	}

	builder := s.sb.Insert("grades").
		Columns("student_id", "subject", "term", "grade").
		Values(grade.StudentID, grade.Subject, grade.Term, grade.Grade)

	return s.insertOwned(ctx, "AddGrade", builder, grade.StudentID)
}

// ListGrades returns a student's grades ordered by term, then subject.
func (s *SQLite) ListGrades(ctx context.Context, studentID int64) ([]types.Grade, error) {
	query, args, err := s.sb.Select("id", "student_id", "subject", "term", "grade").
		From("grades").
		Where(sq.Eq{"student_id": studentID}).
		OrderBy("term ASC", "subject ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ListGrades: build query: %w", err)
	}

	rows, err := s.Db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListGrades: query: %w", err)
	}
	defer rows.Close()

	grades := make([]types.Grade, 0)
	for rows.Next() {
		var g types.Grade
		if err := rows.Scan(&g.ID, &g.StudentID, &g.Subject, &g.Term, &g.Grade); err != nil {
			return nil, fmt.Errorf("ListGrades: scan row: %w", err)
		}
		grades = append(grades, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListGrades: rows iteration: %w", err)
	}

	return grades, nil
}

// DeleteGrade removes one grade entry.
func (s *SQLite) DeleteGrade(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "DeleteGrade", "grades", id)
}

// ─────────────────────────────────────────────────────────────────────────────
// Attendance
// ─────────────────────────────────────────────────────────────────────────────

// AddAttendance inserts an attendance mark. The date and status are
// validated here first; the CHECK constraint on status is a second line.
func (s *SQLite) AddAttendance(ctx context.Context, record types.AttendanceRecord) (int64, error) {
	if err := storage.Validate(record); err != nil {
		return 0, fmt.Errorf("AddAttendance: %w", err)
	}

	builder := s.sb.Insert("attendance").
		Columns("student_id", "date", "subject", "status").
		Values(record.StudentID, record.Date, record.Subject, string(record.Status))

	return s.insertOwned(ctx, "AddAttendance", builder, record.StudentID)
}

// ListAttendance returns a student's attendance, most recent date first.
func (s *SQLite) ListAttendance(ctx context.Context, studentID int64) ([]types.AttendanceRecord, error) {
	query, args, err := s.sb.Select("id", "student_id", "date", "subject", "status").
		From("attendance").
		Where(sq.Eq{"student_id": studentID}).
		OrderBy("date DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ListAttendance: build query: %w", err)
	}

	rows, err := s.Db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListAttendance: query: %w", err)
	}
	defer rows.Close()

	records := make([]types.AttendanceRecord, 0)
	for rows.Next() {
		var r types.AttendanceRecord
		if err := rows.Scan(&r.ID, &r.StudentID, &r.Date, &r.Subject, &r.Status); err != nil {
			return nil, fmt.Errorf("ListAttendance: scan row: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListAttendance: rows iteration: %w", err)
	}

	return records, nil
}

// DeleteAttendance removes one attendance record.
func (s *SQLite) DeleteAttendance(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "DeleteAttendance", "attendance", id)
}
