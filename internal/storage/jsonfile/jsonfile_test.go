package jsonfile_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/storage/jsonfile"
	"github.com/aanand-mishra/student-records/internal/storage/storagetest"
	"github.com/aanand-mishra/student-records/internal/types"
)

func TestStoreContract(t *testing.T) {
	var path string

	storagetest.Run(t, storagetest.Factory{
		New: func(t *testing.T) storage.Storage {
			path = filepath.Join(t.TempDir(), "students.json")
			store, err := jsonfile.New(path)
			require.NoError(t, err)
			return store
		},
		Reopen: func(t *testing.T) storage.Storage {
			store, err := jsonfile.New(path)
			require.NoError(t, err)
			return store
		},
	})
}

func TestNew_CreatesDirectoryAndEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "students.json")

	store, err := jsonfile.New(path)
	require.NoError(t, err)
	assert.Equal(t, path, store.Path())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var rows []any
	require.NoError(t, json.Unmarshal(data, &rows))
	assert.Empty(t, rows)
}

func TestNew_KeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.json")
	existing := `[{"id": 4, "name": "Cy", "age": 30, "grade": "12", "gpa": 2.5}]`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))

	store, err := jsonfile.New(path)
	require.NoError(t, err)

	students, err := store.GetStudents()
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, types.Student{ID: 4, Name: "Cy", Age: 30, Grade: "12", GPA: 2.5}, students[0])

	created, err := store.CreateStudent(types.Student{Name: "Di", Age: 9, Grade: "3", GPA: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)
}

func TestFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.json")
	store, err := jsonfile.New(path)
	require.NoError(t, err)

	email := "ann@school.org"
	_, err = store.CreateStudent(types.Student{Name: "Ann", Age: 20, Grade: "10", Email: &email, GPA: 3.5})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 1)

	assert.Equal(t, map[string]any{
		"id":    float64(1),
		"name":  "Ann",
		"age":   float64(20),
		"grade": "10",
		"email": "ann@school.org",
		"gpa":   3.5,
		"notes": nil,
	}, rows[0])
}

func TestDeleteMissingDoesNotWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.json")
	store, err := jsonfile.New(path)
	require.NoError(t, err)

	// A hand-edited file: compact, no trailing newline. A rewrite would
	// change its bytes.
	original := []byte(`[{"id":1,"name":"Ann","age":20,"grade":"10","gpa":3.5}]`)
	require.NoError(t, os.WriteFile(path, original, 0o644))

	removed, err := store.DeleteStudentByID(99)
	require.NoError(t, err)
	assert.False(t, removed)

	_, ok, err := store.UpdateStudentByID(99, types.StudentPatch{})
	require.NoError(t, err)
	assert.False(t, ok)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, data)
}

func TestCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.json")
	store, err := jsonfile.New(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	_, err = store.GetStudents()
	assert.ErrorContains(t, err, "decode")

	_, err = store.CreateStudent(types.Student{Name: "Ann", Age: 20, Grade: "10"})
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"x","name":"Ann","age":20,"grade":"10"}]`), 0o644))
	_, _, err = store.GetStudentByID(1)
	assert.ErrorContains(t, err, "field id")
}

func TestMissingFileAfterInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.json")
	store, err := jsonfile.New(path)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	_, err = store.GetStudents()
	assert.ErrorIs(t, err, os.ErrNotExist)
}
