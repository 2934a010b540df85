// Package storage defines the Storage interface — a contract that any
// backend must satisfy to hold student records for this application.
//
// WHY AN INTERFACE?
// ─────────────────
// Handlers (HTTP layer) and the CLI should not know or care which file
// format they are talking to. By depending only on this interface:
//
//   - Switching backends = set storage_backend in the config file.
//     Zero handler changes.
//
//   - Writing tests = the same contract suite (storagetest.Run) runs
//     against every backend.
//
// Every operation is synchronous and does a full read of the backing
// file; mutations rewrite it. There is no locking: two writers racing on
// the same file can lose an update. Callers that need more must serialise
// access themselves.
package storage

import "github.com/aanand-mishra/student-records/internal/types"

// Storage is the record-store contract.
// "Not found" is a normal outcome reported through the bool results;
// the error result is reserved for I/O and decode failures.
type Storage interface {
	// CreateStudent assigns the next id (max existing id + 1, or 1 for an
	// empty collection), appends the record and persists it. Any ID set
	// on the argument is ignored.
	CreateStudent(student types.Student) (types.Student, error)

	// GetStudentByID returns the first record with the given id.
	GetStudentByID(id int64) (types.Student, bool, error)

	// GetStudents returns every record in insertion order.
	// Returns an empty slice (not nil) if there are no students.
	GetStudents() ([]types.Student, error)

	// UpdateStudentByID merges the supplied patch fields onto the record
	// and persists it. Nothing is written when the id is unknown.
	UpdateStudentByID(id int64, patch types.StudentPatch) (types.Student, bool, error)

	// DeleteStudentByID removes the record and reports whether it existed.
	DeleteStudentByID(id int64) (bool, error)

	// SearchStudents returns, in insertion order, the records matching
	// every constraint set in criteria.
	SearchStudents(criteria types.Criteria) ([]types.Student, error)
}
