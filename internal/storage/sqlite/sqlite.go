// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// SQLite stores everything in a single file on disk, just like the JSON
// backend, but lets the database do the id bookkeeping and the numeric
// range filtering. Select it with storage_backend: sqlite.
//
// The semantics match the JSON backend exactly: ids are max(id)+1 (not
// AUTOINCREMENT), records come back in insertion order, and updates are
// shallow merges.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at cfg.StoragePath, creating the parent
// directory and the students table if needed.
func New(cfg *config.Config) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.StoragePath), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite.New: create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Schema:
	//   id    — assigned by CreateStudent as max(id)+1; doubles as rowid,
	//           so ORDER BY id is insertion order
	//   email — NULL when the student has none (same for notes)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			id    INTEGER PRIMARY KEY,
			name  TEXT    NOT NULL,
			age   INTEGER NOT NULL,
			grade TEXT    NOT NULL,
			email TEXT,
			gpa   REAL    NOT NULL,
			notes TEXT
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Close releases the connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

const selectColumns = "SELECT id, name, age, grade, email, gpa, notes FROM students"

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (types.Student, error) {
	var (
		student      types.Student
		email, notes sql.NullString
	)

	// Scan order must match selectColumns.
	if err := row.Scan(
		&student.ID,
		&student.Name,
		&student.Age,
		&student.Grade,
		&email,
		&student.GPA,
		&notes,
	); err != nil {
		return types.Student{}, err
	}

	student.Email = fromNull(email)
	student.Notes = fromNull(notes)
	return student, nil
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func toNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// ─────────────────────────────────────────────────────────────────────────────
// CreateStudent inserts a new row. The id is computed inside the INSERT so
// the read of max(id) and the write happen in one statement.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) CreateStudent(student types.Student) (types.Student, error) {
	stmt, err := s.Db.Prepare(`
		INSERT INTO students (id, name, age, grade, email, gpa, notes)
		VALUES ((SELECT COALESCE(MAX(id), 0) + 1 FROM students), ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(
		student.Name,
		student.Age,
		student.Grade,
		toNull(student.Email),
		student.GPA,
		toNull(student.Notes),
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: last insert id: %w", err)
	}

	student.ID = lastID
	return student, nil
}

// GetStudentByID fetches exactly one row matched by primary key.
func (s *SQLite) GetStudentByID(id int64) (types.Student, bool, error) {
	stmt, err := s.Db.Prepare(selectColumns + " WHERE id = ? LIMIT 1")
	if err != nil {
		return types.Student{}, false, fmt.Errorf("GetStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	student, err := scanStudent(stmt.QueryRow(id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, false, nil
	}
	if err != nil {
		return types.Student{}, false, fmt.Errorf("GetStudentByID: scan: %w", err)
	}

	return student, true, nil
}

// GetStudents returns all rows in insertion order.
func (s *SQLite) GetStudents() ([]types.Student, error) {
	students, err := s.query(selectColumns + " ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("GetStudents: %w", err)
	}
	return students, nil
}

func (s *SQLite) query(q string, args ...any) ([]types.Student, error) {
	rows, err := s.Db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	students := make([]types.Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return students, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// UpdateStudentByID merges patch onto the stored row and writes every
// column back. Unknown ids return ok=false without touching the table.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) UpdateStudentByID(id int64, patch types.StudentPatch) (types.Student, bool, error) {
	current, ok, err := s.GetStudentByID(id)
	if err != nil || !ok {
		return types.Student{}, false, err
	}

	updated := patch.Apply(current)

	stmt, err := s.Db.Prepare(
		"UPDATE students SET name = ?, age = ?, grade = ?, email = ?, gpa = ?, notes = ? WHERE id = ?",
	)
	if err != nil {
		return types.Student{}, false, fmt.Errorf("UpdateStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(
		updated.Name,
		updated.Age,
		updated.Grade,
		toNull(updated.Email),
		updated.GPA,
		toNull(updated.Notes),
		id,
	)
	if err != nil {
		return types.Student{}, false, fmt.Errorf("UpdateStudentByID: exec: %w", err)
	}

	return updated, true, nil
}

// DeleteStudentByID removes a row by primary key.
func (s *SQLite) DeleteStudentByID(id int64) (bool, error) {
	stmt, err := s.Db.Prepare("DELETE FROM students WHERE id = ?")
	if err != nil {
		return false, fmt.Errorf("DeleteStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(id)
	if err != nil {
		return false, fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("DeleteStudentByID: rows affected: %w", err)
	}

	return n > 0, nil
}

// SearchStudents pushes the numeric bounds into SQL and applies the text
// criteria in Go, where case folding matches the JSON backend.
func (s *SQLite) SearchStudents(criteria types.Criteria) ([]types.Student, error) {
	var (
		where []string
		args  []any
	)
	if criteria.MinAge != nil {
		where, args = append(where, "age >= ?"), append(args, *criteria.MinAge)
	}
	if criteria.MaxAge != nil {
		where, args = append(where, "age <= ?"), append(args, *criteria.MaxAge)
	}
	if criteria.MinGPA != nil {
		where, args = append(where, "gpa >= ?"), append(args, *criteria.MinGPA)
	}
	if criteria.MaxGPA != nil {
		where, args = append(where, "gpa <= ?"), append(args, *criteria.MaxGPA)
	}

	q := selectColumns
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id"

	candidates, err := s.query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("SearchStudents: %w", err)
	}

	results := make([]types.Student, 0, len(candidates))
	for _, st := range candidates {
		if criteria.Matches(st) {
			results = append(results, st)
		}
	}

	return results, nil
}
