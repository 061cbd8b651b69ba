// Package storage defines the contracts that any record store must satisfy
// to work with this application, plus the error kinds every implementation
// reports.
//
// WHY INTERFACES?
// ───────────────
// The presentation layer (internal/cli) should not know or care which
// database it is talking to. It only ever sees these methods and the plain
// records from internal/types; no store handle or cursor leaks through.
package storage

import (
	"context"

	"github.com/aanand-mishra/academic-records/internal/types"
)

// IdentityStore authenticates teachers and students.
// Both lookups are read-only and return ok=false when nothing matches.
type IdentityStore interface {
	// AuthenticateTeacher matches username and credential exactly.
	// Credentials are compared as opaque strings.
	AuthenticateTeacher(ctx context.Context, username, credential string) (types.TeacherIdentity, bool, error)

	// AuthenticateStudent matches roll and date of birth exactly.
	AuthenticateStudent(ctx context.Context, roll, dob string) (types.StudentIdentity, bool, error)
}

// StudentRepository is CRUD plus substring search over student profiles.
type StudentRepository interface {
	// CreateStudent validates and inserts a new student, returning its ID.
	// Fails with ErrValidation or ErrDuplicateKey.
	CreateStudent(ctx context.Context, student types.Student) (int64, error)

	// GetStudentByID fetches one student by primary key (ErrNotFound if absent).
	GetStudentByID(ctx context.Context, id int64) (types.Student, error)

	// UpdateStudentByID rewrites every field of an existing student,
	// roll included, and returns the stored record.
	// Fails with ErrValidation, ErrNotFound or ErrDuplicateKey.
	UpdateStudentByID(ctx context.Context, id int64, student types.Student) (types.Student, error)

	// DeleteStudentByID removes a student together with all of its grades
	// and attendance records, atomically.
	DeleteStudentByID(ctx context.Context, id int64) error

	// SearchStudents returns students whose roll, name or department
	// contains query (case-sensitive), ordered by roll. An empty query
	// returns everyone. The result is a fresh slice, never nil.
	SearchStudents(ctx context.Context, query string) ([]types.Student, error)

	// FindStudentByRoll is an exact roll lookup.
	FindStudentByRoll(ctx context.Context, roll string) (types.Student, bool, error)
}

// AcademicRepository manages the grade and attendance records owned by a
// student. Both halves have the same shape.
type AcademicRepository interface {
	AddGrade(ctx context.Context, grade types.Grade) (int64, error)
	ListGrades(ctx context.Context, studentID int64) ([]types.Grade, error)
	DeleteGrade(ctx context.Context, id int64) error

	AddAttendance(ctx context.Context, record types.AttendanceRecord) (int64, error)
	ListAttendance(ctx context.Context, studentID int64) ([]types.AttendanceRecord, error)
	DeleteAttendance(ctx context.Context, id int64) error
}

// Storage is the full store contract used by the process bootstrap.
type Storage interface {
	IdentityStore
	StudentRepository
	AcademicRepository

	// Initialize creates the schema if absent and seeds the default
	// teacher when the teacher table is empty. Safe to call on every start.
	Initialize(ctx context.Context) error

	Close() error
}
