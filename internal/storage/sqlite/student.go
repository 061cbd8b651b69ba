package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/aanand-mishra/academic-records/internal/storage"
	"github.com/aanand-mishra/academic-records/internal/types"
)

// Explicitly list columns — never SELECT *. scanStudent depends on this order.
var studentColumns = []string{"id", "roll", "name", "dob", "department", "email", "phone"}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (types.Student, error) {
	var student types.Student
	var dept, email, phone sql.NullString

	err := row.Scan(
		&student.ID,
		&student.Roll,
		&student.Name,
		&student.DOB,
		&dept,
		&email,
		&phone,
	)
	if err != nil {
		return types.Student{}, err
	}

	student.Department = dept.String
	student.Email = email.String
	student.Phone = phone.String

	return student, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// CreateStudent validates the profile and inserts it.
//
// The UNIQUE constraint on roll is the source of truth for duplicates; we
// do not check first and insert second, we insert and translate the
// constraint error.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) CreateStudent(ctx context.Context, student types.Student) (int64, error) {
	if err := storage.Validate(student); err != nil {
		return 0, fmt.Errorf("CreateStudent: %w", err)
	}

	query, args, err := s.sb.Insert("students").
		Columns("roll", "name", "dob", "department", "email", "phone").
		Values(
			student.Roll,
			student.Name,
			student.DOB,
			nullable(student.Department),
			nullable(student.Email),
			nullable(student.Phone),
		).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: build query: %w", err)
	}

	result, err := s.Db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("CreateStudent: roll %q: %w", student.Roll, storage.ErrDuplicateKey)
		}
		return 0, fmt.Errorf("CreateStudent: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: last insert id: %w", err)
	}

	return lastID, nil
}

// GetStudentByID fetches exactly one student by primary key.
func (s *SQLite) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	query, args, err := s.sb.Select(studentColumns...).
		From("students").
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: build query: %w", err)
	}

	student, err := scanStudent(s.Db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, fmt.Errorf("GetStudentByID: no student with id %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}

	return student, nil
}

// FindStudentByRoll is an exact, index-backed roll lookup.
func (s *SQLite) FindStudentByRoll(ctx context.Context, roll string) (types.Student, bool, error) {
	query, args, err := s.sb.Select(studentColumns...).
		From("students").
		Where(sq.Eq{"roll": roll}).
		Limit(1).
		ToSql()
	if err != nil {
		return types.Student{}, false, fmt.Errorf("FindStudentByRoll: build query: %w", err)
	}

	student, err := scanStudent(s.Db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, false, nil
	}
	if err != nil {
		return types.Student{}, false, fmt.Errorf("FindStudentByRoll: scan: %w", err)
	}

	return student, true, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// SearchStudents returns students ordered by roll.
//
// A non-empty query matches roll, name or department as a case-sensitive
// substring. instr() is used instead of LIKE: LIKE folds ASCII case in
// SQLite and treats % and _ in the query as wildcards.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) SearchStudents(ctx context.Context, query string) ([]types.Student, error) {
	builder := s.sb.Select(studentColumns...).
		From("students").
		OrderBy("roll ASC")

	if query != "" {
		builder = builder.Where(sq.Or{
			sq.Expr("instr(roll, ?) > 0", query),
			sq.Expr("instr(name, ?) > 0", query),
			sq.Expr("instr(department, ?) > 0", query),
		})
	}

	stmt, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("SearchStudents: build query: %w", err)
	}

	rows, err := s.Db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("SearchStudents: query: %w", err)
	}
	defer rows.Close()

	students := make([]types.Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("SearchStudents: scan row: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SearchStudents: rows iteration: %w", err)
	}

	return students, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// UpdateStudentByID rewrites every field of a student, roll included.
// Returns the stored record so the caller can echo it back.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) UpdateStudentByID(ctx context.Context, id int64, student types.Student) (types.Student, error) {
	if err := storage.Validate(student); err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: %w", err)
	}

	query, args, err := s.sb.Update("students").
		Set("roll", student.Roll).
		Set("name", student.Name).
		Set("dob", student.DOB).
		Set("department", nullable(student.Department)).
		Set("email", nullable(student.Email)).
		Set("phone", nullable(student.Phone)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: build query: %w", err)
	}

	result, err := s.Db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return types.Student{}, fmt.Errorf("UpdateStudentByID: roll %q: %w", student.Roll, storage.ErrDuplicateKey)
		}
		return types.Student{}, fmt.Errorf("UpdateStudentByID: exec: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: rows affected: %w", err)
	}
	if n == 0 {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: no student with id %d: %w", id, storage.ErrNotFound)
	}

	return s.GetStudentByID(ctx, id)
}

// ─────────────────────────────────────────────────────────────────────────────
// DeleteStudentByID removes a student and everything it owns.
//
// The foreign keys already cascade, but the children are deleted
// explicitly inside the same transaction as the parent so the result is
// all-or-nothing even on a file whose schema predates the cascade.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) DeleteStudentByID(ctx context.Context, id int64) error {
	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: begin: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"grades", "attendance"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE student_id = ?", id); err != nil {
			return fmt.Errorf("DeleteStudentByID: delete %s: %w", table, err)
		}
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM students WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("DeleteStudentByID: no student with id %d: %w", id, storage.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("DeleteStudentByID: commit: %w", err)
	}
	committed = true

	return nil
}
