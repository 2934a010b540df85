// Package jsonfile provides the default implementation of the
// storage.Storage interface: a single JSON file holding an array of
// student objects, used as a makeshift table.
//
// Every call reads the whole file, works on the records in memory and,
// for mutations, rewrites the whole file. The collection is expected to
// stay small enough for that to be instant.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aanand-mishra/student-records/internal/types"
)

// Store is a handle on one JSON file. It holds no records between calls.
type Store struct {
	path string
	log  *slog.Logger
}

// New returns a Store bound to path. The parent directory is created if
// missing, and the file is initialised with an empty array if it does
// not exist yet. An existing file is left untouched.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("jsonfile.New: create directory: %w", err)
	}

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.WriteFile(path, []byte("[]\n"), 0o644); err != nil {
			return nil, fmt.Errorf("jsonfile.New: create file: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("jsonfile.New: stat file: %w", err)
	}

	return &Store{
		path: path,
		log:  slog.Default().With(slog.String("component", "storage")),
	}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// readAll loads every record from the file. Each object goes through
// types.StudentFromMap so numeric fields are coerced explicitly; a record
// that cannot be coerced fails the whole read.
func (s *Store) readAll() ([]types.Student, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("jsonfile: read %s: %w", s.path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("jsonfile: decode %s: %w", s.path, err)
	}

	students := make([]types.Student, 0, len(rows))
	for i, row := range rows {
		student, err := types.StudentFromMap(row)
		if err != nil {
			return nil, fmt.Errorf("jsonfile: record %d: %w", i, err)
		}
		students = append(students, student)
	}

	return students, nil
}

// writeAll replaces the file contents with students.
func (s *Store) writeAll(students []types.Student) error {
	if students == nil {
		students = []types.Student{}
	}

	data, err := json.MarshalIndent(students, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encode: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("jsonfile: write %s: %w", s.path, err)
	}

	s.log.Debug("collection written", slog.Int("records", len(students)))
	return nil
}

func nextID(students []types.Student) int64 {
	var highest int64
	for _, st := range students {
		if st.ID > highest {
			highest = st.ID
		}
	}
	return highest + 1
}

// CreateStudent appends student with the next free id.
func (s *Store) CreateStudent(student types.Student) (types.Student, error) {
	students, err := s.readAll()
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: %w", err)
	}

	student.ID = nextID(students)
	students = append(students, student)

	if err := s.writeAll(students); err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: %w", err)
	}

	return student, nil
}

// GetStudentByID scans for the first record with id.
func (s *Store) GetStudentByID(id int64) (types.Student, bool, error) {
	students, err := s.readAll()
	if err != nil {
		return types.Student{}, false, fmt.Errorf("GetStudentByID: %w", err)
	}

	for _, st := range students {
		if st.ID == id {
			return st, true, nil
		}
	}

	return types.Student{}, false, nil
}

// GetStudents returns the whole collection in file order.
func (s *Store) GetStudents() ([]types.Student, error) {
	students, err := s.readAll()
	if err != nil {
		return nil, fmt.Errorf("GetStudents: %w", err)
	}
	return students, nil
}

// UpdateStudentByID merges patch onto the matching record.
func (s *Store) UpdateStudentByID(id int64, patch types.StudentPatch) (types.Student, bool, error) {
	students, err := s.readAll()
	if err != nil {
		return types.Student{}, false, fmt.Errorf("UpdateStudentByID: %w", err)
	}

	for i, st := range students {
		if st.ID != id {
			continue
		}

		students[i] = patch.Apply(st)
		if err := s.writeAll(students); err != nil {
			return types.Student{}, false, fmt.Errorf("UpdateStudentByID: %w", err)
		}
		return students[i], true, nil
	}

	return types.Student{}, false, nil
}

// DeleteStudentByID drops the matching record. The file is rewritten only
// when something was removed.
func (s *Store) DeleteStudentByID(id int64) (bool, error) {
	students, err := s.readAll()
	if err != nil {
		return false, fmt.Errorf("DeleteStudentByID: %w", err)
	}

	kept := make([]types.Student, 0, len(students))
	for _, st := range students {
		if st.ID != id {
			kept = append(kept, st)
		}
	}

	if len(kept) == len(students) {
		return false, nil
	}

	if err := s.writeAll(kept); err != nil {
		return false, fmt.Errorf("DeleteStudentByID: %w", err)
	}

	return true, nil
}

// SearchStudents filters the collection with criteria.Matches.
func (s *Store) SearchStudents(criteria types.Criteria) ([]types.Student, error) {
	students, err := s.readAll()
	if err != nil {
		return nil, fmt.Errorf("SearchStudents: %w", err)
	}

	results := make([]types.Student, 0)
	for _, st := range students {
		if criteria.Matches(st) {
			results = append(results, st)
		}
	}

	return results, nil
}
