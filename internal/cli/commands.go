package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/aanand-mishra/academic-records/internal/storage"
	"github.com/aanand-mishra/academic-records/internal/types"
)

var errLoginFailed = errors.New("invalid username or password")
var errStudentLoginFailed = errors.New("invalid roll/DOB or account not found")

// parseID reads the single <id> argument.
func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected exactly one <id> argument")
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: must be an integer", args[0])
	}

	return id, nil
}

// resolveRoll turns a roll number into a student ID. Grade and attendance
// commands are addressed by roll, not by internal ID.
func resolveRoll(ctx context.Context, store storage.StudentRepository, roll string) (int64, error) {
	if roll == "" {
		return 0, &storage.ValidationError{Fields: []storage.FieldError{{Field: "roll", Tag: "required"}}}
	}

	student, ok, err := store.FindStudentByRoll(ctx, roll)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("student %q: %w", roll, storage.ErrNotFound)
	}

	return student.ID, nil
}

// trim strips surrounding whitespace from every flag value.
func trim(values ...*string) {
	for _, v := range values {
		*v = strings.TrimSpace(*v)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Login
// ─────────────────────────────────────────────────────────────────────────────

func cmdTeacherLogin(store storage.IdentityStore) *Command {
	fs := flag.NewFlagSet("teacher-login", flag.ContinueOnError)
	username := fs.StringP("username", "u", "", "Teacher username")
	password := fs.StringP("password", "p", "", "Teacher password")

	return &Command{
		Flags: fs,
		Usage: "teacher-login -u <user> -p <password>",
		Short: "Authenticate a teacher",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			trim(username, password)

			id, ok, err := store.AuthenticateTeacher(ctx, *username, *password)
			if err != nil {
				return err
			}
			if !ok {
				return errLoginFailed
			}

			return o.Result(id)
		},
	}
}

func cmdStudentLogin(store storage.IdentityStore) *Command {
	fs := flag.NewFlagSet("student-login", flag.ContinueOnError)
	roll := fs.String("roll", "", "Roll number")
	dob := fs.String("dob", "", "Date of birth (YYYY-MM-DD)")

	return &Command{
		Flags: fs,
		Usage: "student-login --roll <roll> --dob <date>",
		Short: "Authenticate a student",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			trim(roll, dob)

			id, ok, err := store.AuthenticateStudent(ctx, *roll, *dob)
			if err != nil {
				return err
			}
			if !ok {
				return errStudentLoginFailed
			}

			return o.Result(id)
		},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Students
// ─────────────────────────────────────────────────────────────────────────────

// studentFlags registers the profile flags shared by add and update.
func studentFlags(fs *flag.FlagSet) func() types.Student {
	roll := fs.String("roll", "", "Roll number (unique)")
	name := fs.String("name", "", "Full name")
	dob := fs.String("dob", "", "Date of birth (YYYY-MM-DD)")
	dept := fs.String("department", "", "Department")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")

	return func() types.Student {
		trim(roll, name, dob, dept, email, phone)
		return types.Student{
			Roll:       *roll,
			Name:       *name,
			DOB:        *dob,
			Department: *dept,
			Email:      *email,
			Phone:      *phone,
		}
	}
}

func cmdStudentAdd(store storage.StudentRepository) *Command {
	fs := flag.NewFlagSet("student add", flag.ContinueOnError)
	input := studentFlags(fs)

	return &Command{
		Flags: fs,
		Usage: "student add --roll <r> --name <n> --dob <d>",
		Short: "Create a student profile",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			id, err := store.CreateStudent(ctx, input())
			if err != nil {
				return err
			}
			return o.Result(map[string]int64{"id": id})
		},
	}
}

func cmdStudentUpdate(store storage.StudentRepository) *Command {
	fs := flag.NewFlagSet("student update", flag.ContinueOnError)
	input := studentFlags(fs)

	return &Command{
		Flags: fs,
		Usage: "student update <id> [flags]",
		Short: "Rewrite every field of a student profile",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			id, err := parseID(args)
			if err != nil {
				return err
			}

			updated, err := store.UpdateStudentByID(ctx, id, input())
			if err != nil {
				return err
			}
			return o.Result(updated)
		},
	}
}

func cmdStudentDelete(store storage.StudentRepository) *Command {
	return &Command{
		Flags: flag.NewFlagSet("student delete", flag.ContinueOnError),
		Usage: "student delete <id>",
		Short: "Delete a student with all grades and attendance",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			id, err := parseID(args)
			if err != nil {
				return err
			}

			if err := store.DeleteStudentByID(ctx, id); err != nil {
				return err
			}
			return o.Result(map[string]int64{"deleted": id})
		},
	}
}

func cmdStudentShow(store storage.StudentRepository) *Command {
	return &Command{
		Flags: flag.NewFlagSet("student show", flag.ContinueOnError),
		Usage: "student show <roll>",
		Short: "Show one student by roll number",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) != 1 {
				return errors.New("expected exactly one <roll> argument")
			}
			roll := strings.TrimSpace(args[0])

			student, ok, err := store.FindStudentByRoll(ctx, roll)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("student %q: %w", roll, storage.ErrNotFound)
			}
			return o.Result(student)
		},
	}
}

func cmdStudentGet(store storage.StudentRepository) *Command {
	return &Command{
		Flags: flag.NewFlagSet("student get", flag.ContinueOnError),
		Usage: "student get <id>",
		Short: "Show one student by id",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			id, err := parseID(args)
			if err != nil {
				return err
			}

			student, err := store.GetStudentByID(ctx, id)
			if err != nil {
				return err
			}
			return o.Result(student)
		},
	}
}

func cmdStudentList(store storage.StudentRepository) *Command {
	return &Command{
		Flags: flag.NewFlagSet("student list", flag.ContinueOnError),
		Usage: "student list [query]",
		Short: "List students, optionally filtered by roll, name or department",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))

			students, err := store.SearchStudents(ctx, query)
			if err != nil {
				return err
			}
			return o.Result(students)
		},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Grades
// ─────────────────────────────────────────────────────────────────────────────

// academicStore is what grade and attendance commands need: the roll
// lookup plus the academic records themselves.
type academicStore interface {
	storage.StudentRepository
	storage.AcademicRepository
}

func cmdGradeAdd(store academicStore) *Command {
	fs := flag.NewFlagSet("grade add", flag.ContinueOnError)
	roll := fs.String("roll", "", "Student roll number")
	subject := fs.String("subject", "", "Subject")
	term := fs.String("term", "", "Term label, e.g. T1")
	grade := fs.String("grade", "", "Grade value")

	return &Command{
		Flags: fs,
		Usage: "grade add --roll <r> --subject <s> --term <t> --grade <g>",
		Short: "Record a grade",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			trim(roll, subject, term, grade)

			sid, err := resolveRoll(ctx, store, *roll)
			if err != nil {
				return err
			}

			id, err := store.AddGrade(ctx, types.Grade{
				StudentID: sid,
				Subject:   *subject,
				Term:      *term,
				Grade:     *grade,
			})
			if err != nil {
				return err
			}
			return o.Result(map[string]int64{"id": id})
		},
	}
}

func cmdGradeList(store academicStore) *Command {
	fs := flag.NewFlagSet("grade list", flag.ContinueOnError)
	roll := fs.String("roll", "", "Student roll number")

	return &Command{
		Flags: fs,
		Usage: "grade list --roll <r>",
		Short: "List a student's grades by term and subject",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			trim(roll)

			sid, err := resolveRoll(ctx, store, *roll)
			if err != nil {
				return err
			}

			grades, err := store.ListGrades(ctx, sid)
			if err != nil {
				return err
			}
			return o.Result(grades)
		},
	}
}

func cmdGradeDelete(store storage.AcademicRepository) *Command {
	return &Command{
		Flags: flag.NewFlagSet("grade delete", flag.ContinueOnError),
		Usage: "grade delete <id>",
		Short: "Delete one grade entry",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			id, err := parseID(args)
			if err != nil {
				return err
			}

			if err := store.DeleteGrade(ctx, id); err != nil {
				return err
			}
			return o.Result(map[string]int64{"deleted": id})
		},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Attendance
// ─────────────────────────────────────────────────────────────────────────────

func cmdAttendanceAdd(store academicStore) *Command {
	fs := flag.NewFlagSet("attendance add", flag.ContinueOnError)
	roll := fs.String("roll", "", "Student roll number")
	date := fs.String("date", "", "Date (YYYY-MM-DD)")
	subject := fs.String("subject", "", "Subject")
	status := fs.String("status", string(types.StatusPresent), "Present or Absent")

	return &Command{
		Flags: fs,
		Usage: "attendance add --roll <r> --date <d> --subject <s>",
		Short: "Mark attendance (--status Present|Absent)",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			trim(roll, date, subject, status)

			sid, err := resolveRoll(ctx, store, *roll)
			if err != nil {
				return err
			}

			id, err := store.AddAttendance(ctx, types.AttendanceRecord{
				StudentID: sid,
				Date:      *date,
				Subject:   *subject,
				Status:    types.AttendanceStatus(*status),
			})
			if err != nil {
				return err
			}
			return o.Result(map[string]int64{"id": id})
		},
	}
}

func cmdAttendanceList(store academicStore) *Command {
	fs := flag.NewFlagSet("attendance list", flag.ContinueOnError)
	roll := fs.String("roll", "", "Student roll number")

	return &Command{
		Flags: fs,
		Usage: "attendance list --roll <r>",
		Short: "List a student's attendance, most recent first",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			trim(roll)

			sid, err := resolveRoll(ctx, store, *roll)
			if err != nil {
				return err
			}

			records, err := store.ListAttendance(ctx, sid)
			if err != nil {
				return err
			}
			return o.Result(records)
		},
	}
}

func cmdAttendanceDelete(store storage.AcademicRepository) *Command {
	return &Command{
		Flags: flag.NewFlagSet("attendance delete", flag.ContinueOnError),
		Usage: "attendance delete <id>",
		Short: "Delete one attendance record",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			id, err := parseID(args)
			if err != nil {
				return err
			}

			if err := store.DeleteAttendance(ctx, id); err != nil {
				return err
			}
			return o.Result(map[string]int64{"deleted": id})
		},
	}
}
