package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/academic-records/internal/types"
)

// AuthenticateTeacher looks up a teacher by exact username and credential.
// The username UNIQUE constraint backs this with an index, so the lookup
// stays a single index probe.
//
// Credentials are compared as stored, in plain text. Existing
// college_sms.db files hold them that way.
func (s *SQLite) AuthenticateTeacher(ctx context.Context, username, credential string) (types.TeacherIdentity, bool, error) {
	var id types.TeacherIdentity

	err := s.Db.QueryRowContext(ctx,
		"SELECT id, name FROM teachers WHERE username = ? AND password = ? LIMIT 1",
		username, credential,
	).Scan(&id.ID, &id.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return types.TeacherIdentity{}, false, nil
	}
	if err != nil {
		return types.TeacherIdentity{}, false, fmt.Errorf("AuthenticateTeacher: scan: %w", err)
	}

	return id, true, nil
}

// AuthenticateStudent looks up a student by exact roll and date of birth.
func (s *SQLite) AuthenticateStudent(ctx context.Context, roll, dob string) (types.StudentIdentity, bool, error) {
	var id types.StudentIdentity

	err := s.Db.QueryRowContext(ctx,
		"SELECT id, name FROM students WHERE roll = ? AND dob = ? LIMIT 1",
		roll, dob,
	).Scan(&id.ID, &id.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return types.StudentIdentity{}, false, nil
	}
	if err != nil {
		return types.StudentIdentity{}, false, fmt.Errorf("AuthenticateStudent: scan: %w", err)
	}

	return id, true, nil
}
