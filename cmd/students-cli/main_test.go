package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aanand-mishra/student-records/internal/types"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type result struct {
	code   int
	stdout string
	stderr string
}

// runWith executes the CLI against the records file at path.
func runWith(t *testing.T, path string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"-file", path}, args...), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func tempFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "students.json")
}

func getJSON(t *testing.T, path, id string) types.Student {
	t.Helper()
	res := runWith(t, path, "get", id, "-o", "json")
	require.Equal(t, 0, res.code, res.stderr)

	var students []types.Student
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &students))
	require.Len(t, students, 1)
	return students[0]
}

func TestAddAndList(t *testing.T) {
	path := tempFile(t)

	res := runWith(t, path, "add", "-name", "Ann", "-age", "20", "-grade", "10", "-gpa", "3.5")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Student added with ID 1")

	res = runWith(t, path, "add", "-name", "Bo", "-grade", "11", "-email", "bo@school.org")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Student added with ID 2")

	res = runWith(t, path, "list")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "Ann")
	assert.Contains(t, res.stdout, "bo@school.org")
	assert.Contains(t, res.stdout, "Total students: 2")

	// form defaults: age 18, gpa 0.0
	bo := getJSON(t, path, "2")
	assert.Equal(t, 18, bo.Age)
	assert.Equal(t, 0.0, bo.GPA)
}

func TestAdd_Validation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short name", []string{"-name", "A", "-grade", "10"}, types.MsgName},
		{"age not a number", []string{"-name", "Ann", "-age", "old", "-grade", "10"}, types.MsgAge},
		{"age out of range", []string{"-name", "Ann", "-age", "2", "-grade", "10"}, types.MsgAge},
		{"blank grade", []string{"-name", "Ann", "-grade", "  "}, types.MsgGrade},
		{"bad email", []string{"-name", "Ann", "-grade", "10", "-email", "bad-email"}, types.MsgEmail},
		{"gpa out of range", []string{"-name", "Ann", "-grade", "10", "-gpa", "4.5"}, types.MsgGPA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tempFile(t)
			res := runWith(t, path, append([]string{"add"}, tt.args...)...)
			assert.Equal(t, 1, res.code)
			assert.Contains(t, res.stderr, tt.want)

			res = runWith(t, path, "list", "-o", "json")
			require.Equal(t, 0, res.code)
			assert.JSONEq(t, `[]`, res.stdout)
		})
	}
}

func TestGet(t *testing.T) {
	path := tempFile(t)
	require.Equal(t, 0, runWith(t, path, "add", "-name", " Ann ", "-grade", "10", "-notes", "  ").code)

	ann := getJSON(t, path, "1")
	assert.Equal(t, types.Student{ID: 1, Name: "Ann", Age: 18, Grade: "10"}, ann)

	res := runWith(t, path, "get", "7")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Student not found.")

	res = runWith(t, path, "get", "abc")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, types.MsgID)

	res = runWith(t, path, "get")
	assert.Equal(t, 2, res.code)
}

func TestUpdate(t *testing.T) {
	path := tempFile(t)
	require.Equal(t, 0, runWith(t, path,
		"add", "-name", "Ann", "-age", "20", "-grade", "10", "-email", "ann@school.org", "-gpa", "3.5").code)

	res := runWith(t, path, "update", "1", "-gpa", "3.9")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Student updated.")

	email := "ann@school.org"
	assert.Equal(t, types.Student{ID: 1, Name: "Ann", Age: 20, Grade: "10", Email: &email, GPA: 3.9},
		getJSON(t, path, "1"))

	res = runWith(t, path, "update", "1", "-email", "")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Nil(t, getJSON(t, path, "1").Email)

	res = runWith(t, path, "update", "1", "-name", "A")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, types.MsgName)
	assert.Equal(t, "Ann", getJSON(t, path, "1").Name)

	res = runWith(t, path, "update", "1")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "nothing to update")

	res = runWith(t, path, "update", "9", "-gpa", "1")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Student not found.")
}

func TestDelete(t *testing.T) {
	path := tempFile(t)
	require.Equal(t, 0, runWith(t, path, "add", "-name", "Ann", "-grade", "10").code)

	res := runWith(t, path, "delete", "1")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "Student deleted.")

	res = runWith(t, path, "delete", "1")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Student not found.")
}

func TestSearch(t *testing.T) {
	path := tempFile(t)
	require.Equal(t, 0, runWith(t, path, "add", "-name", "Ann", "-age", "20", "-grade", "10", "-gpa", "3.5").code)
	require.Equal(t, 0, runWith(t, path, "add", "-name", "Bo", "-age", "21", "-grade", "11", "-gpa", "3.8").code)
	require.Equal(t, 0, runWith(t, path, "add", "-name", "Bob", "-age", "15", "-grade", "9").code)

	names := func(t *testing.T, args ...string) []string {
		t.Helper()
		res := runWith(t, path, append([]string{"search", "-o", "json"}, args...)...)
		require.Equal(t, 0, res.code, res.stderr)

		var students []types.Student
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &students))
		out := make([]string, 0, len(students))
		for _, s := range students {
			out = append(out, s.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Ann", "Bo", "Bob"}, names(t))
	assert.Equal(t, []string{"Bo", "Bob"}, names(t, "-keyword", "BO"))
	assert.Equal(t, []string{"Bo"}, names(t, "-keyword", "2"))
	assert.Equal(t, []string{"Bo"}, names(t, "-grade", "11"))
	assert.Equal(t, []string{"Ann", "Bo"}, names(t, "-min-age", "16", "-max-age", "21"))
	assert.Equal(t, []string{"Bob"}, names(t, "-max-gpa", "0"))
	assert.Empty(t, names(t, "-keyword", "zed"))

	res := runWith(t, path, "search", "-min-gpa", "3.5")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "Found 2 result(s).")

	res = runWith(t, path, "search", "-min-age", "young")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "-min-age must be an integer.")
}

func TestListYAML(t *testing.T) {
	path := tempFile(t)
	require.Equal(t, 0, runWith(t, path, "add", "-name", "Ann", "-age", "20", "-grade", "10", "-gpa", "3.5").code)

	res := runWith(t, path, "list", "-o", "yaml")
	require.Equal(t, 0, res.code, res.stderr)

	var rows []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Ann", rows[0]["name"])
	assert.Equal(t, 20, rows[0]["age"])
	assert.Nil(t, rows[0]["email"])
}

func TestUsage(t *testing.T) {
	path := tempFile(t)

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage: students-cli")

	stdout.Reset()
	assert.Equal(t, 0, run([]string{"help"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "Commands:")

	res := runWith(t, path, "enroll")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "Unknown command: enroll")

	res = runWith(t, path, "list", "-o", "xml")
	assert.Equal(t, 2, res.code)

	res = runWith(t, path, "list", "extra")
	assert.Equal(t, 2, res.code)
}

func TestNoRecordsFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{"list"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "no records file")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	records := filepath.Join(dir, "data", "students.json")
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := "env: dev\nstorage_path: " + records + "\nhttp_server:\n  address: localhost:0\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfgPath, "add", "-name", "Ann", "-grade", "10"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	_, err := os.Stat(records)
	assert.NoError(t, err)
}
