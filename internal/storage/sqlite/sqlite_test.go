package sqlite_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/storage/sqlite"
	"github.com/aanand-mishra/student-records/internal/storage/storagetest"
	"github.com/aanand-mishra/student-records/internal/types"
)

func open(t *testing.T, path string) *sqlite.SQLite {
	t.Helper()
	store, err := sqlite.New(&config.Config{StoragePath: path, StorageBackend: config.BackendSQLite})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteContract(t *testing.T) {
	var path string

	storagetest.Run(t, storagetest.Factory{
		New: func(t *testing.T) storage.Storage {
			path = filepath.Join(t.TempDir(), "students.db")
			return open(t, path)
		},
		Reopen: func(t *testing.T) storage.Storage {
			return open(t, path)
		},
	})
}

func TestNew_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage", "nested", "students.db")
	store := open(t, path)

	_, err := store.GetStudents()
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestNullableColumns(t *testing.T) {
	store := open(t, filepath.Join(t.TempDir(), "students.db"))

	created, err := store.CreateStudent(types.Student{Name: "Ann", Age: 20, Grade: "10", GPA: 3.5})
	require.NoError(t, err)

	var email, notes any
	err = store.Db.QueryRow("SELECT email, notes FROM students WHERE id = ?", created.ID).Scan(&email, &notes)
	require.NoError(t, err)
	assert.Nil(t, email)
	assert.Nil(t, notes)
}
