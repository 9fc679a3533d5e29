// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, storage, console and audit can all import types without
// depending on each other.
package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrCourseNotAssigned is returned when marks or attendance are set for a
// course the student does not take. The record is left unchanged.
var ErrCourseNotAssigned = errors.New("course not assigned to the student")

// Student represents one student record in the registry.
//
// The json:"..." tags control how the record appears in API responses
// (lowercase names match REST API conventions).
//
// Marks holds a nil pointer for a course that has been assigned but not
// marked yet. That is the "unset" state, distinct from a mark of 0.
type Student struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Year       string              `json:"year"`
	Department string              `json:"department"`
	Courses    []string            `json:"courses"`
	Marks      map[string]*float64 `json:"marks"`
	Attendance map[string]float64  `json:"attendance"`
}

// NewStudent returns a record with no courses. It is the only way a
// record should be built, so the maps are never nil.
func NewStudent(id, name, year, department string) Student {
	return Student{
		ID:         id,
		Name:       name,
		Year:       year,
		Department: department,
		Courses:    []string{},
		Marks:      map[string]*float64{},
		Attendance: map[string]float64{},
	}
}

// HasCourse reports whether course has been assigned.
func (s *Student) HasCourse(course string) bool {
	for _, c := range s.Courses {
		if c == course {
			return true
		}
	}
	return false
}

// AssignCourse appends course with an unset mark and 0% attendance.
// Assigning a course twice is a no-op: existing marks and attendance
// are kept.
func (s *Student) AssignCourse(course string) {
	if s.HasCourse(course) {
		return
	}
	if s.Marks == nil {
		s.Marks = map[string]*float64{}
	}
	if s.Attendance == nil {
		s.Attendance = map[string]float64{}
	}
	s.Courses = append(s.Courses, course)
	s.Marks[course] = nil
	s.Attendance[course] = 0
}

// UpdateMarks sets the mark for an assigned course.
func (s *Student) UpdateMarks(course string, mark float64) error {
	if !s.HasCourse(course) {
		return fmt.Errorf("course %s: %w", course, ErrCourseNotAssigned)
	}
	m := mark
	s.Marks[course] = &m
	return nil
}

// UpdateAttendance sets the attendance percentage for an assigned course.
func (s *Student) UpdateAttendance(course string, percentage float64) error {
	if !s.HasCourse(course) {
		return fmt.Errorf("course %s: %w", course, ErrCourseNotAssigned)
	}
	s.Attendance[course] = percentage
	return nil
}

// UpdateDetails applies a partial update. A field is overwritten only when
// it is present AND non-empty, so a field can never be cleared to "".
func (s *Student) UpdateDetails(d Details) {
	if d.Name != nil && *d.Name != "" {
		s.Name = *d.Name
	}
	if d.Year != nil && *d.Year != "" {
		s.Year = *d.Year
	}
	if d.Department != nil && *d.Department != "" {
		s.Department = *d.Department
	}
}

// Clone returns a deep copy. The registry hands out clones so callers
// never share maps or slices with stored records.
func (s Student) Clone() Student {
	out := s
	out.Courses = append(make([]string, 0, len(s.Courses)), s.Courses...)
	out.Marks = make(map[string]*float64, len(s.Marks))
	for course, mark := range s.Marks {
		if mark == nil {
			out.Marks[course] = nil
			continue
		}
		m := *mark
		out.Marks[course] = &m
	}
	out.Attendance = make(map[string]float64, len(s.Attendance))
	for course, pct := range s.Attendance {
		out.Attendance[course] = pct
	}
	return out
}

// MarkText renders the mark for course, or "unset".
func (s Student) MarkText(course string) string {
	if mark, ok := s.Marks[course]; ok && mark != nil {
		return formatNumber(*mark)
	}
	return "unset"
}

// AttendanceText renders the attendance for course without the % sign.
func (s Student) AttendanceText(course string) string {
	pct, ok := s.Attendance[course]
	if !ok {
		return "N/A"
	}
	return formatNumber(pct)
}

// String renders the human-readable summary used by the console and the
// web views. It has no side effects.
func (s Student) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "ID: %s\nName: %s\nYear: %s\nDepartment: %s\n",
		s.ID, s.Name, s.Year, s.Department)

	if len(s.Courses) == 0 {
		b.WriteString("Courses: None\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Courses: %s\n", strings.Join(s.Courses, ", "))
	b.WriteString("Marks & Attendance:\n")
	for _, course := range s.Courses {
		fmt.Fprintf(&b, "  - %s: Marks: %s, Attendance: %s%%\n",
			course, s.MarkText(course), s.AttendanceText(course))
	}
	return b.String()
}

// formatNumber prints 91.5 as "91.5" and 88 as "88".
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Details is a partial update of the profile fields.
// A nil field means "leave unchanged".
type Details struct {
	Name       *string `json:"name,omitempty"`
	Year       *string `json:"year,omitempty"`
	Department *string `json:"department,omitempty"`
}

// Criteria is a partial set of search predicates. A nil field is not
// checked; an empty Criteria matches every record.
type Criteria struct {
	ID         *string
	Name       *string
	Department *string
}

// IsEmpty reports whether no predicate is set.
func (c Criteria) IsEmpty() bool {
	return c.ID == nil && c.Name == nil && c.Department == nil
}

// Matches reports whether s satisfies every present predicate.
// ID is compared exactly; Name and Department are case-insensitive
// substring checks.
func (c Criteria) Matches(s Student) bool {
	if c.ID != nil && s.ID != *c.ID {
		return false
	}
	if c.Name != nil && !containsFold(s.Name, *c.Name) {
		return false
	}
	if c.Department != nil && !containsFold(s.Department, *c.Department) {
		return false
	}
	return true
}

func containsFold(field, sub string) bool {
	return strings.Contains(strings.ToLower(field), strings.ToLower(sub))
}

// Ptr returns a pointer to v. Front ends use it to fill Details and
// Criteria from form values.
func Ptr[T any](v T) *T {
	return &v
}

// NonEmpty returns a pointer to v, or nil when v is "". It mirrors the
// way both front ends treat a blank input as "not provided".
func NonEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
