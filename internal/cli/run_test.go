package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/academic-records/internal/types"
)

// testEnv points the CLI at a fresh database through a YAML config file.
// Config variables in the process environment would override the file, so
// they are unset for the duration of the test.
func testEnv(t *testing.T) map[string]string {
	t.Helper()

	for _, key := range []string{"ENV", "STORAGE_PATH", "BUSY_TIMEOUT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	dir := t.TempDir()
	cfg := "env: prod\nstorage_path: " + filepath.Join(dir, "records.db") + "\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	return map[string]string{"CONFIG_PATH": path}
}

func run(t *testing.T, env map[string]string, args ...string) (string, string, int) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), &stdout, &stderr, append([]string{"records"}, args...), env)

	return stdout.String(), stderr.String(), code
}

// decode unmarshals the data field of an ok envelope into v.
func decode(t *testing.T, out string, v any) {
	t.Helper()

	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &envelope), "output: %s", out)
	require.Equal(t, "ok", envelope.Status)
	require.NoError(t, json.Unmarshal(envelope.Data, v))
}

func errorMessage(t *testing.T, errOut string) string {
	t.Helper()

	var envelope struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(errOut), &envelope), "stderr: %s", errOut)
	require.Equal(t, "error", envelope.Status)

	return envelope.Error
}

func TestRun_Usage(t *testing.T) {
	out, _, code := run(t, nil, "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "student add")
	assert.Contains(t, out, "attendance delete <id>")

	_, _, code = run(t, nil)
	assert.Equal(t, 2, code)
}

func TestRun_UnknownCommand(t *testing.T) {
	_, errOut, code := run(t, testEnv(t), "student", "expel", "1")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "unknown command: student expel 1")
}

func TestRun_MissingConfigFile(t *testing.T) {
	_, errOut, code := run(t, nil, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "student", "list")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "does not exist")
}

func TestRun_TeacherLogin(t *testing.T) {
	env := testEnv(t)

	out, _, code := run(t, env, "teacher-login", "-u", "admin", "-p", "admin")
	require.Equal(t, 0, code)

	var id types.TeacherIdentity
	decode(t, out, &id)
	assert.Equal(t, "Administrator", id.Name)

	_, errOut, code := run(t, env, "teacher-login", "-u", "admin", "-p", "wrong")
	assert.Equal(t, 1, code)
	assert.Equal(t, "invalid username or password", errorMessage(t, errOut))
}

func TestRun_StudentLifecycle(t *testing.T) {
	env := testEnv(t)

	out, errOut, code := run(t, env, "student", "add",
		"--roll", " A1 ", "--name", "Alice", "--dob", "2001-02-03", "--department", "CS")
	require.Equal(t, 0, code, errOut)

	var created map[string]int64
	decode(t, out, &created)
	id := created["id"]
	require.NotZero(t, id)

	out, _, code = run(t, env, "student", "show", "A1")
	require.Equal(t, 0, code)
	var shown types.Student
	decode(t, out, &shown)
	assert.Equal(t, types.Student{ID: id, Roll: "A1", Name: "Alice", DOB: "2001-02-03", Department: "CS"}, shown)

	out, _, code = run(t, env, "student-login", "--roll", "A1", "--dob", "2001-02-03")
	require.Equal(t, 0, code)
	var who types.StudentIdentity
	decode(t, out, &who)
	assert.Equal(t, types.StudentIdentity{ID: id, Name: "Alice"}, who)

	_, errOut, code = run(t, env, "student", "add", "--roll", "A1", "--name", "Again", "--dob", "2002-01-01")
	assert.Equal(t, 1, code)
	assert.Equal(t, "a student with this roll number already exists", errorMessage(t, errOut))

	_, errOut, code = run(t, env, "student", "add", "--roll", "B2", "--dob", "2002-13-01")
	assert.Equal(t, 1, code)
	assert.Equal(t, "field name is required, field dob must be a date in YYYY-MM-DD form", errorMessage(t, errOut))

	out, _, code = run(t, env, "student", "list", "Al")
	require.Equal(t, 0, code)
	var listed []types.Student
	decode(t, out, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "A1", listed[0].Roll)

	out, _, code = run(t, env, "student", "update", "1",
		"--roll", "A2", "--name", "Alice B", "--dob", "2001-02-03")
	require.Equal(t, 0, code)
	var updated types.Student
	decode(t, out, &updated)
	assert.Equal(t, "A2", updated.Roll)
	assert.Empty(t, updated.Department)

	_, _, code = run(t, env, "student", "delete", "1")
	require.Equal(t, 0, code)

	_, errOut, code = run(t, env, "student", "get", "1")
	assert.Equal(t, 1, code)
	assert.Equal(t, "record not found", errorMessage(t, errOut))
}

func TestRun_GradesAndAttendance(t *testing.T) {
	env := testEnv(t)

	_, errOut, code := run(t, env, "student", "add", "--roll", "A1", "--name", "Alice", "--dob", "2001-02-03")
	require.Equal(t, 0, code, errOut)

	_, errOut, code = run(t, env, "grade", "add", "--roll", "A1", "--subject", "Math", "--term", "T1", "--grade", "A")
	require.Equal(t, 0, code, errOut)

	out, _, code := run(t, env, "grade", "list", "--roll", "A1")
	require.Equal(t, 0, code)
	var grades []types.Grade
	decode(t, out, &grades)
	require.Len(t, grades, 1)
	assert.Equal(t, "Math", grades[0].Subject)

	_, errOut, code = run(t, env, "grade", "list", "--roll", "Z9")
	assert.Equal(t, 1, code)
	assert.Equal(t, "record not found", errorMessage(t, errOut))

	_, errOut, code = run(t, env, "attendance", "add", "--roll", "A1", "--date", "2024-09-01",
		"--subject", "Math", "--status", "Late")
	assert.Equal(t, 1, code)
	assert.Equal(t, "field status must be one of: Present, Absent", errorMessage(t, errOut))

	_, errOut, code = run(t, env, "attendance", "add", "--roll", "A1", "--date", "2024-09-01", "--subject", "Math")
	require.Equal(t, 0, code, errOut)

	out, _, code = run(t, env, "attendance", "list", "--roll", "A1")
	require.Equal(t, 0, code)
	var records []types.AttendanceRecord
	decode(t, out, &records)
	require.Len(t, records, 1)
	assert.Equal(t, types.StatusPresent, records[0].Status)

	_, _, code = run(t, env, "attendance", "delete", "1")
	assert.Equal(t, 0, code)
	_, _, code = run(t, env, "attendance", "delete", "1")
	assert.Equal(t, 1, code)

	_, errOut, code = run(t, env, "grade", "delete", "abc")
	assert.Equal(t, 1, code)
	assert.Equal(t, `invalid id "abc": must be an integer`, errorMessage(t, errOut))
}
