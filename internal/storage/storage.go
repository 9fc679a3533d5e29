// Package storage defines the Storage interface: the contract of the
// student registry that the HTTP handlers and the console talk to.
//
// WHY AN INTERFACE?
// ─────────────────
// Front ends should not know which registry they are talking to. The
// in-memory registry and the audited decorator both satisfy this
// interface, and tests can pass either one.
//
// OUTCOMES, NOT CRASHES
// ─────────────────────
// Duplicate ids, unknown ids and unassigned courses are ordinary
// outcomes. Every method reports them as an error value that callers
// inspect with errors.Is and turn into a message or a status code.
package storage

import (
	"errors"

	"github.com/aanand-mishra/student-records/internal/types"
)

// Sentinel outcomes. types.ErrCourseNotAssigned is the third one and
// comes straight from the record.
var (
	ErrNotFound  = errors.New("student not found")
	ErrDuplicate = errors.New("student already exists")
)

// Storage is the registry contract.
type Storage interface {
	// Add inserts a new record. Returns ErrDuplicate (and leaves the
	// existing record untouched) if the id is taken.
	Add(student types.Student) error

	// Delete removes a record. Returns ErrNotFound if absent.
	Delete(id string) error

	// Edit applies a partial details update and returns the result.
	Edit(id string, details types.Details) (types.Student, error)

	// Get fetches a single record by id.
	Get(id string) (types.Student, error)

	// List returns every record in insertion order.
	// Returns an empty slice (not nil) when the registry is empty.
	List() []types.Student

	// Search returns the records matching every present criterion,
	// in insertion order.
	Search(criteria types.Criteria) []types.Student

	// AssignCourse adds a course to a student. Idempotent.
	AssignCourse(id, course string) (types.Student, error)

	// UpdateMarks sets the mark of an assigned course.
	UpdateMarks(id, course string, mark float64) (types.Student, error)

	// UpdateAttendance sets the attendance of an assigned course.
	UpdateAttendance(id, course string, percentage float64) (types.Student, error)
}
