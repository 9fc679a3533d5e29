// Package memory provides the in-memory implementation of the
// storage.Storage interface: the student registry.
//
// Nothing here touches the disk. When the process exits every record
// is gone, whatever the audit log says.
//
// CONCURRENCY
// ───────────
// The web server runs each request in its own goroutine, so every method
// takes the registry lock. Reads share an RLock; mutations take the full
// Lock. Records handed out are clones, so callers can never mutate stored
// state outside the lock.
package memory

import (
	"fmt"
	"sync"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

// Compile-time check that Registry satisfies the interface.
var _ storage.Storage = (*Registry)(nil)

// Registry keeps records by id plus the insertion order, so List and
// Search return a stable order.
type Registry struct {
	mu       sync.RWMutex
	students map[string]*types.Student
	order    []string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		students: make(map[string]*types.Student),
		order:    make([]string, 0),
	}
}

// Add stores a clone of student. The caller's value is not retained.
func (r *Registry) Add(student types.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.students[student.ID]; ok {
		return fmt.Errorf("Add: id %s: %w", student.ID, storage.ErrDuplicate)
	}

	stored := student.Clone()
	r.students[student.ID] = &stored
	r.order = append(r.order, student.ID)
	return nil
}

// Delete removes the record and its slot in the insertion order.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.students[id]; !ok {
		return fmt.Errorf("Delete: id %s: %w", id, storage.ErrNotFound)
	}

	delete(r.students, id)
	for i, key := range r.order {
		if key == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Edit delegates to Student.UpdateDetails.
func (r *Registry) Edit(id string, details types.Details) (types.Student, error) {
	return r.mutate("Edit", id, func(s *types.Student) error {
		s.UpdateDetails(details)
		return nil
	})
}

// Get is a pure lookup.
func (r *Registry) Get(id string) (types.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.students[id]
	if !ok {
		return types.Student{}, fmt.Errorf("Get: id %s: %w", id, storage.ErrNotFound)
	}
	return s.Clone(), nil
}

// List returns clones of every record in insertion order.
func (r *Registry) List() []types.Student {
	return r.Search(types.Criteria{})
}

// Search walks the insertion order and keeps the records that match.
func (r *Registry) Search(criteria types.Criteria) []types.Student {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]types.Student, 0)
	for _, id := range r.order {
		s := r.students[id]
		if criteria.Matches(*s) {
			results = append(results, s.Clone())
		}
	}
	return results
}

// AssignCourse delegates to Student.AssignCourse.
func (r *Registry) AssignCourse(id, course string) (types.Student, error) {
	return r.mutate("AssignCourse", id, func(s *types.Student) error {
		s.AssignCourse(course)
		return nil
	})
}

// UpdateMarks delegates to Student.UpdateMarks. An unassigned course
// yields types.ErrCourseNotAssigned along with the unchanged record.
func (r *Registry) UpdateMarks(id, course string, mark float64) (types.Student, error) {
	return r.mutate("UpdateMarks", id, func(s *types.Student) error {
		return s.UpdateMarks(course, mark)
	})
}

// UpdateAttendance delegates to Student.UpdateAttendance.
func (r *Registry) UpdateAttendance(id, course string, percentage float64) (types.Student, error) {
	return r.mutate("UpdateAttendance", id, func(s *types.Student) error {
		return s.UpdateAttendance(course, percentage)
	})
}

// mutate looks up id under the write lock, applies fn and returns a clone
// of the record as it stands afterwards.
func (r *Registry) mutate(op, id string, fn func(*types.Student) error) (types.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.students[id]
	if !ok {
		return types.Student{}, fmt.Errorf("%s: id %s: %w", op, id, storage.ErrNotFound)
	}
	if err := fn(s); err != nil {
		return s.Clone(), fmt.Errorf("%s: id %s: %w", op, id, err)
	}
	return s.Clone(), nil
}
