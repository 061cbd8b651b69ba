package sqlite

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/academic-records/internal/storage"
	"github.com/aanand-mishra/academic-records/internal/types"
)

func alice() types.Student {
	return types.Student{
		Roll:       "A1",
		Name:       "Alice",
		DOB:        "2001-02-03",
		Department: "CS",
		Email:      "alice@example.com",
		Phone:      "555-0101",
	}
}

func bob() types.Student {
	return types.Student{Roll: "B2", Name: "Bob", DOB: "2000-11-30", Department: "Math"}
}

func rolls(students []types.Student) []string {
	out := make([]string, 0, len(students))
	for _, s := range students {
		out = append(out, s.Roll)
	}
	return out
}

func TestCreateStudent_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, in := range []types.Student{alice(), bob(), {Roll: "C3", Name: "Carol", DOB: "1999-01-01"}} {
		id, err := s.CreateStudent(ctx, in)
		require.NoError(t, err)

		got, ok, err := s.FindStudentByRoll(ctx, in.Roll)
		require.NoError(t, err)
		require.True(t, ok)

		in.ID = id
		if diff := cmp.Diff(in, got); diff != "" {
			t.Errorf("FindStudentByRoll(%q) mismatch (-want +got):\n%s", in.Roll, diff)
		}
	}
}

func TestCreateStudent_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	bad := []types.Student{
		{Name: "Alice", DOB: "2001-02-03"},
		{Roll: "A1", DOB: "2001-02-03"},
		{Roll: "A1", Name: "Alice"},
		{Roll: "A1", Name: "Alice", DOB: "03-02-2001"},
		{Roll: "   ", Name: " ", DOB: "2001-02-03"},
		{Roll: "A1", Name: "\t", DOB: "2001-02-03"},
	}
	for _, in := range bad {
		_, err := s.CreateStudent(ctx, in)
		assert.ErrorIs(t, err, storage.ErrValidation, "input %+v", in)
	}

	assert.Equal(t, 0, countRows(t, s, "students"))
}

func TestCreateStudent_DuplicateRoll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateStudent(ctx, alice())
	require.NoError(t, err)

	dup := bob()
	dup.Roll = "A1"
	_, err = s.CreateStudent(ctx, dup)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	assert.Equal(t, 1, countRows(t, s, "students"))
}

func TestGetStudentByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateStudent(ctx, alice())
	require.NoError(t, err)

	got, err := s.GetStudentByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	_, err = s.GetStudentByID(ctx, id+100)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFindStudentByRoll_Missing(t *testing.T) {
	s := newTestStore(t)

	_, ok, err := s.FindStudentByRoll(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateStudentByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateStudent(ctx, alice())
	require.NoError(t, err)

	changed := types.Student{Roll: "A9", Name: "Alice Smith", DOB: "2001-02-04"}
	got, err := s.UpdateStudentByID(ctx, id, changed)
	require.NoError(t, err)

	changed.ID = id
	assert.Equal(t, changed, got)

	_, ok, err := s.FindStudentByRoll(ctx, "A1")
	require.NoError(t, err)
	assert.False(t, ok, "old roll must be gone")
}

func TestUpdateStudentByID_SameRollIsNotDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateStudent(ctx, alice())
	require.NoError(t, err)

	in := alice()
	in.Phone = ""
	_, err = s.UpdateStudentByID(ctx, id, in)
	assert.NoError(t, err)
}

func TestUpdateStudentByID_Errors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	aliceID, err := s.CreateStudent(ctx, alice())
	require.NoError(t, err)
	bobID, err := s.CreateStudent(ctx, bob())
	require.NoError(t, err)

	t.Run("missing id", func(t *testing.T) {
		_, err := s.UpdateStudentByID(ctx, bobID+100, bob())
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("invalid input", func(t *testing.T) {
		in := bob()
		in.DOB = "yesterday"
		_, err := s.UpdateStudentByID(ctx, bobID, in)
		assert.ErrorIs(t, err, storage.ErrValidation)
	})

	t.Run("roll taken by another student", func(t *testing.T) {
		in := bob()
		in.Roll = "A1"
		_, err := s.UpdateStudentByID(ctx, bobID, in)
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)

		gotAlice, err := s.GetStudentByID(ctx, aliceID)
		require.NoError(t, err)
		wantAlice := alice()
		wantAlice.ID = aliceID
		assert.Equal(t, wantAlice, gotAlice)

		gotBob, err := s.GetStudentByID(ctx, bobID)
		require.NoError(t, err)
		wantBob := bob()
		wantBob.ID = bobID
		assert.Equal(t, wantBob, gotBob)
	})
}

func TestDeleteStudentByID_Cascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateStudent(ctx, alice())
	require.NoError(t, err)
	otherID, err := s.CreateStudent(ctx, bob())
	require.NoError(t, err)

	for _, sid := range []int64{id, otherID} {
		_, err = s.AddGrade(ctx, types.Grade{StudentID: sid, Subject: "Math", Term: "T1", Grade: "A"})
		require.NoError(t, err)
		_, err = s.AddAttendance(ctx, types.AttendanceRecord{
			StudentID: sid, Date: "2024-09-01", Subject: "Math", Status: types.StatusPresent,
		})
		require.NoError(t, err)
	}

	require.NoError(t, s.DeleteStudentByID(ctx, id))

	grades, err := s.ListGrades(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, grades)

	attendance, err := s.ListAttendance(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, attendance)

	_, ok, err := s.FindStudentByRoll(ctx, "A1")
	require.NoError(t, err)
	assert.False(t, ok)

	// The other student's records are untouched.
	assert.Equal(t, 1, countRows(t, s, "grades"))
	assert.Equal(t, 1, countRows(t, s, "attendance"))
}

func TestDeleteStudentByID_Missing(t *testing.T) {
	s := newTestStore(t)

	err := s.DeleteStudentByID(context.Background(), 7)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteStudentByID_RollsBackOnFailure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateStudent(ctx, alice())
	require.NoError(t, err)
	_, err = s.AddGrade(ctx, types.Grade{StudentID: id, Subject: "Math", Term: "T1", Grade: "A"})
	require.NoError(t, err)

	// Make the parent delete fail after the children are gone.
	_, err = s.Db.Exec(`CREATE TRIGGER block_student_delete BEFORE DELETE ON students
		BEGIN SELECT RAISE(ABORT, 'blocked'); END`)
	require.NoError(t, err)

	err = s.DeleteStudentByID(ctx, id)
	require.Error(t, err)

	assert.Equal(t, 1, countRows(t, s, "students"))
	assert.Equal(t, 1, countRows(t, s, "grades"), "child rows must survive a failed delete")
}

func TestSearchStudents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, in := range []types.Student{
		bob(),
		alice(),
		{Roll: "C3", Name: "Carol", DOB: "1999-01-01"},
		{Roll: "D4", Name: "alan", DOB: "1999-01-01", Department: "History"},
	} {
		_, err := s.CreateStudent(ctx, in)
		require.NoError(t, err)
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"A1", "B2", "C3", "D4"}},
		{"Al", []string{"A1"}},
		{"al", []string{"D4"}},
		{"Math", []string{"B2"}},
		{"3", []string{"C3"}},
		{"o", []string{"B2", "C3", "D4"}},
		{"%", []string{}},
		{"nothing", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := s.SearchStudents(ctx, tt.query)
			require.NoError(t, err)
			require.NotNil(t, got)

			if diff := cmp.Diff(tt.want, rolls(got)); diff != "" {
				t.Errorf("SearchStudents(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestSearchStudents_FreshSliceEachCall(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateStudent(ctx, alice())
	require.NoError(t, err)

	first, err := s.SearchStudents(ctx, "")
	require.NoError(t, err)
	first[0].Name = "mutated"

	second, err := s.SearchStudents(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Alice", second[0].Name)
}
