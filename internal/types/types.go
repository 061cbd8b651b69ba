// Package types holds all shared data structures (records) used across
// the application. Keeping them in one place prevents import cycles —
// the CLI, storage, and utils can all import types without depending
// on each other.
//
// Every value here is plain data: no store handles, no live cursors.
// Struct tags serve two purposes:
//
//  1. json:"..."     — how the field is rendered by the presentation layer.
//  2. validate:"..." — rules checked by the go-playground/validator package
//     before anything reaches the store.
package types

// DateLayout is the only accepted calendar date form (YYYY-MM-DD).
// Dates are kept as ISO strings end to end, which also makes them sort
// correctly as plain text inside the store.
const DateLayout = "2006-01-02"

// TeacherIdentity is what a successful teacher login yields.
type TeacherIdentity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// StudentIdentity is what a successful student login yields.
type StudentIdentity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Student is a student profile.
//
// Roll is the natural key and must stay unique, even when rewritten by an
// update. Department, Email and Phone are optional; an empty string means
// "not set" and is stored as NULL.
type Student struct {
	ID         int64  `json:"id"`
	Roll       string `json:"roll"  validate:"required,notblank"`
	Name       string `json:"name"  validate:"required,notblank"`
	DOB        string `json:"dob"   validate:"required,datetime=2006-01-02"`
	Department string `json:"department,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// Grade is one grade entry owned by a student. There is no uniqueness
// across (student, subject, term): the same subject may be graded twice.
type Grade struct {
	ID        int64  `json:"id"`
	StudentID int64  `json:"student_id"`
	Subject   string `json:"subject" validate:"required,notblank"`
	Term      string `json:"term"    validate:"required,notblank"`
	Grade     string `json:"grade"   validate:"required,notblank"`
}

// AttendanceStatus is the two-value attendance vocabulary.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "Present"
	StatusAbsent  AttendanceStatus = "Absent"
)

// AttendanceRecord is one attendance mark owned by a student.
type AttendanceRecord struct {
	ID        int64            `json:"id"`
	StudentID int64            `json:"student_id"`
	Date      string           `json:"date"    validate:"required,datetime=2006-01-02"`
	Subject   string           `json:"subject" validate:"required,notblank"`
	Status    AttendanceStatus `json:"status"  validate:"required,oneof=Present Absent"`
}
