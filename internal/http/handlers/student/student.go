// Package student contains the JSON API handlers for the Student resource.
//
// HANDLER PATTERN USED HERE, THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Go's router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// To inject the registry we use a factory function that accepts it and
// returns a function with exactly that signature:
//
//	router.HandleFunc("POST /api/students", student.New(registry))
//
// New(registry) is called ONCE at startup; the returned func runs on
// EVERY incoming request.
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-records/internal/ctxlog"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// createRequest is the body of POST /api/students.
type createRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Year       string `json:"year"`
	Department string `json:"department"`
}

// courseRequest is the body of POST /api/students/{id}/courses.
type courseRequest struct {
	Course string `json:"course" validate:"required"`
}

// marksRequest is the body of PUT /api/students/{id}/marks.
// Mark is a pointer so a missing value fails "required" instead of
// silently becoming 0.
type marksRequest struct {
	Course string   `json:"course" validate:"required"`
	Mark   *float64 `json:"mark" validate:"required"`
}

// attendanceRequest is the body of PUT /api/students/{id}/attendance.
type attendanceRequest struct {
	Course     string   `json:"course" validate:"required"`
	Attendance *float64 `json:"attendance" validate:"required"`
}

var validate = validator.New()

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
//
// Request body (JSON):
//
//	{ "id": "S1", "name": "Ada", "year": "2", "department": "CS" }
//
// Success response (201 Created):
//
//	{ "id": "S1" }
//
// Error responses:
//
//	400 Bad Request   empty body or malformed JSON
//	409 Conflict      id already exists (the existing record is kept)
//	500 Internal      the record was added but the audit log failed
//
// ─────────────────────────────────────────────────────────────────────────────
func New(registry storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := ctxlog.FromContext(r.Context())
		log.Info("creating a student")

		var req createRequest
		if !decode(w, r, &req) {
			return
		}

		student := types.NewStudent(req.ID, req.Name, req.Year, req.Department)
		if err := registry.Add(student); err != nil {
			writeOutcome(w, log, err)
			return
		}

		log.Info("student created", slog.String("id", req.ID))
		respond(w, log, http.StatusCreated, map[string]string{"id": req.ID})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students
//
// Optional query parameters turn the listing into a search:
//
//	?id=S1             exact id
//	?name=an           case-insensitive substring
//	?department=cs     case-insensitive substring
//
// Empty parameters are ignored. Returns [] (not null) when nothing matches.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(registry storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		criteria := types.Criteria{
			ID:         types.NonEmpty(q.Get("id")),
			Name:       types.NonEmpty(q.Get("name")),
			Department: types.NonEmpty(q.Get("department")),
		}

		log := ctxlog.FromContext(r.Context())
		if criteria.IsEmpty() {
			log.Info("getting all students")
			respond(w, log, http.StatusOK, registry.List())
			return
		}

		log.Info("searching students", slog.String("query", r.URL.RawQuery))
		respond(w, log, http.StatusOK, registry.Search(criteria))
	}
}

// GetByID handles GET /api/students/{id}
func GetByID(registry storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		log := ctxlog.FromContext(r.Context())
		log.Info("getting a student", slog.String("id", id))

		student, err := registry.Get(id)
		if err != nil {
			writeOutcome(w, log, err)
			return
		}
		respond(w, log, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PATCH /api/students/{id}
// Applies a PARTIAL update: fields left out of the body (or sent as "")
// keep their current value.
//
//	{ "year": "3" }
//
// Success response (200 OK): the updated student.
// ─────────────────────────────────────────────────────────────────────────────
func Update(registry storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		log := ctxlog.FromContext(r.Context())
		log.Info("updating a student", slog.String("id", id))

		var details types.Details
		if !decode(w, r, &details) {
			return
		}

		updated, err := registry.Edit(id, details)
		if err != nil {
			writeOutcome(w, log, err)
			return
		}

		log.Info("student updated", slog.String("id", id))
		respond(w, log, http.StatusOK, updated)
	}
}

// Delete handles DELETE /api/students/{id}
func Delete(registry storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		log := ctxlog.FromContext(r.Context())
		log.Info("deleting a student", slog.String("id", id))

		if err := registry.Delete(id); err != nil {
			writeOutcome(w, log, err)
			return
		}

		log.Info("student deleted", slog.String("id", id))
		respond(w, log, http.StatusOK, response.OK())
	}
}

// AssignCourse handles POST /api/students/{id}/courses
//
//	{ "course": "Algorithms" }
//
// Assigning a course twice is not an error; the record is returned as is.
func AssignCourse(registry storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		log := ctxlog.FromContext(r.Context())

		var req courseRequest
		if !decodeValid(w, r, &req) {
			return
		}

		updated, err := registry.AssignCourse(id, req.Course)
		if err != nil {
			writeOutcome(w, log, err)
			return
		}

		log.Info("course assigned", slog.String("id", id), slog.String("course", req.Course))
		respond(w, log, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// UpdateMarks handles PUT /api/students/{id}/marks
//
//	{ "course": "Algorithms", "mark": 91.5 }
//
// Error responses:
//
//	400 Bad Request           mark missing or not a number
//	404 Not Found             unknown student
//	422 Unprocessable Entity  course not assigned; record unchanged
//
// ─────────────────────────────────────────────────────────────────────────────
func UpdateMarks(registry storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		log := ctxlog.FromContext(r.Context())

		var req marksRequest
		if !decodeValid(w, r, &req) {
			return
		}

		updated, err := registry.UpdateMarks(id, req.Course, *req.Mark)
		if err != nil {
			writeOutcome(w, log, err)
			return
		}

		log.Info("marks updated", slog.String("id", id), slog.String("course", req.Course))
		respond(w, log, http.StatusOK, updated)
	}
}

// UpdateAttendance handles PUT /api/students/{id}/attendance
//
//	{ "course": "Algorithms", "attendance": 88 }
//
// Same error contract as UpdateMarks.
func UpdateAttendance(registry storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		log := ctxlog.FromContext(r.Context())

		var req attendanceRequest
		if !decodeValid(w, r, &req) {
			return
		}

		updated, err := registry.UpdateAttendance(id, req.Course, *req.Attendance)
		if err != nil {
			writeOutcome(w, log, err)
			return
		}

		log.Info("attendance updated", slog.String("id", id), slog.String("course", req.Course))
		respond(w, log, http.StatusOK, updated)
	}
}

// Health handles GET /healthz
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, ctxlog.FromContext(r.Context()), http.StatusOK, response.OK())
	}
}

// decode reads a JSON body into dst. On failure it writes the 400 and
// returns false.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}
	return true
}

// decodeValid is decode followed by the validate:"..." rules on dst.
func decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !decode(w, r, dst) {
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(verrs))
			return false
		}
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}
	return true
}

// StatusFor maps a registry outcome to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, types.ErrCourseNotAssigned):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeOutcome logs and writes a non-success registry outcome.
// Expected outcomes are logged at info; anything else is an error.
func writeOutcome(w http.ResponseWriter, log *slog.Logger, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", slog.String("error", err.Error()))
	} else {
		log.Info("request rejected", slog.Int("status", status), slog.String("error", err.Error()))
	}
	respond(w, log, status, response.GeneralError(err))
}

// respond writes data as JSON and logs a body that could not be sent.
func respond(w http.ResponseWriter, log *slog.Logger, status int, data any) {
	if err := response.WriteJSON(w, status, data); err != nil {
		log.Error("cannot write response", slog.String("error", err.Error()))
	}
}
