// Package web serves the HTML front end: list, add, view, edit, search,
// course assignment, marks, attendance and delete pages.
//
// Forms are plain HTML posts. Every POST that succeeds redirects (303) so
// a browser refresh never resubmits it. Domain outcomes map to status
// codes the same way as the JSON API.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/aanand-mishra/student-records/internal/ctxlog"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{
	"index.html",
	"add_student.html",
	"view_student.html",
	"edit_student.html",
	"search_student.html",
	"assign_course.html",
	"update_marks.html",
	"update_attendance.html",
}

// funcs are available to every template. studentURL builds the same
// escaped paths the handlers redirect to.
var funcs = template.FuncMap{
	"studentURL": studentURL,
}

// page is the data passed to every template.
type page struct {
	Message  string
	Student  types.Student
	Students []types.Student
	Searched bool
}

// UI holds the registry and the parsed templates.
type UI struct {
	registry  storage.Storage
	templates map[string]*template.Template
}

// New parses the embedded templates. Each page is its own template set
// so every page can define "content" without clashing.
func New(registry storage.Storage) (*UI, error) {
	ui := &UI{registry: registry, templates: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("web.New: parse %s: %w", name, err)
		}
		ui.templates[name] = t
	}
	return ui, nil
}

// Register mounts every route on mux.
func (u *UI) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", u.Index)
	mux.HandleFunc("GET /student/add", u.AddForm)
	mux.HandleFunc("POST /student/add", u.Add)
	mux.HandleFunc("GET /student/search", u.SearchForm)
	mux.HandleFunc("POST /student/search", u.Search)
	mux.HandleFunc("GET /student/{id}", u.View)
	mux.HandleFunc("GET /student/{id}/edit", u.withStudent("edit_student.html"))
	mux.HandleFunc("POST /student/{id}/edit", u.Edit)
	mux.HandleFunc("GET /student/{id}/assign_course", u.withStudent("assign_course.html"))
	mux.HandleFunc("POST /student/{id}/assign_course", u.AssignCourse)
	mux.HandleFunc("GET /student/{id}/update_marks", u.withStudent("update_marks.html"))
	mux.HandleFunc("POST /student/{id}/update_marks", u.UpdateMarks)
	mux.HandleFunc("GET /student/{id}/update_attendance", u.withStudent("update_attendance.html"))
	mux.HandleFunc("POST /student/{id}/update_attendance", u.UpdateAttendance)
	mux.HandleFunc("POST /student/{id}/delete", u.Delete)
}

// Index handles GET /
func (u *UI) Index(w http.ResponseWriter, r *http.Request) {
	u.render(w, r, http.StatusOK, "index.html", page{Students: u.registry.List()})
}

// AddForm handles GET /student/add
func (u *UI) AddForm(w http.ResponseWriter, r *http.Request) {
	u.render(w, r, http.StatusOK, "add_student.html", page{})
}

// Add handles POST /student/add
func (u *UI) Add(w http.ResponseWriter, r *http.Request) {
	student := types.NewStudent(
		r.FormValue("student_id"),
		r.FormValue("name"),
		r.FormValue("year"),
		r.FormValue("department"),
	)

	err := u.registry.Add(student)
	switch {
	case errors.Is(err, storage.ErrDuplicate):
		msg := fmt.Sprintf("Student with ID %s already exists.", student.ID)
		u.render(w, r, http.StatusConflict, "add_student.html", page{Message: msg})
		return
	case err != nil:
		u.fail(w, r, err)
		return
	}

	ctxlog.FromContext(r.Context()).Info("student created", slog.String("id", student.ID))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// View handles GET /student/{id}
func (u *UI) View(w http.ResponseWriter, r *http.Request) {
	u.withStudent("view_student.html")(w, r)
}

// Edit handles POST /student/{id}/edit. Blank fields are skipped.
func (u *UI) Edit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	details := types.Details{
		Name:       types.NonEmpty(r.FormValue("name")),
		Year:       types.NonEmpty(r.FormValue("year")),
		Department: types.NonEmpty(r.FormValue("department")),
	}

	if _, err := u.registry.Edit(id, details); err != nil {
		u.outcome(w, r, "edit_student.html", id, err)
		return
	}
	http.Redirect(w, r, studentURL(id), http.StatusSeeOther)
}

// SearchForm handles GET /student/search
func (u *UI) SearchForm(w http.ResponseWriter, r *http.Request) {
	u.render(w, r, http.StatusOK, "search_student.html", page{})
}

// Search handles POST /student/search. Blank fields are not criteria.
func (u *UI) Search(w http.ResponseWriter, r *http.Request) {
	criteria := types.Criteria{
		ID:         types.NonEmpty(r.FormValue("student_id")),
		Name:       types.NonEmpty(r.FormValue("name")),
		Department: types.NonEmpty(r.FormValue("department")),
	}
	u.render(w, r, http.StatusOK, "search_student.html", page{
		Students: u.registry.Search(criteria),
		Searched: true,
	})
}

// AssignCourse handles POST /student/{id}/assign_course
func (u *UI) AssignCourse(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := u.registry.AssignCourse(id, r.FormValue("course")); err != nil {
		u.outcome(w, r, "assign_course.html", id, err)
		return
	}
	http.Redirect(w, r, studentURL(id), http.StatusSeeOther)
}

// UpdateMarks handles POST /student/{id}/update_marks
func (u *UI) UpdateMarks(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := u.registry.Get(id); err != nil {
		u.outcome(w, r, "", id, err)
		return
	}

	mark, err := parseNumber(r.FormValue("mark"))
	if err != nil {
		http.Error(w, "Invalid mark value", http.StatusBadRequest)
		return
	}

	if _, err := u.registry.UpdateMarks(id, r.FormValue("course"), mark); err != nil {
		u.outcome(w, r, "update_marks.html", id, err)
		return
	}
	http.Redirect(w, r, studentURL(id), http.StatusSeeOther)
}

// UpdateAttendance handles POST /student/{id}/update_attendance
func (u *UI) UpdateAttendance(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := u.registry.Get(id); err != nil {
		u.outcome(w, r, "", id, err)
		return
	}

	pct, err := parseNumber(r.FormValue("attendance"))
	if err != nil {
		http.Error(w, "Invalid attendance value", http.StatusBadRequest)
		return
	}

	if _, err := u.registry.UpdateAttendance(id, r.FormValue("course"), pct); err != nil {
		u.outcome(w, r, "update_attendance.html", id, err)
		return
	}
	http.Redirect(w, r, studentURL(id), http.StatusSeeOther)
}

// Delete handles POST /student/{id}/delete
func (u *UI) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := u.registry.Delete(id); err != nil {
		u.outcome(w, r, "", id, err)
		return
	}
	ctxlog.FromContext(r.Context()).Info("student deleted", slog.String("id", id))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// withStudent renders tmpl for the student named by the {id} path value,
// or a 404.
func (u *UI) withStudent(tmpl string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		student, err := u.registry.Get(r.PathValue("id"))
		if err != nil {
			u.outcome(w, r, "", r.PathValue("id"), err)
			return
		}
		u.render(w, r, http.StatusOK, tmpl, page{Student: student})
	}
}

// outcome turns a registry error into a response. An unassigned course
// re-renders tmpl with a message; not-found is a plain 404.
func (u *UI) outcome(w http.ResponseWriter, r *http.Request, tmpl, id string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, "Student not found", http.StatusNotFound)
	case errors.Is(err, types.ErrCourseNotAssigned) && tmpl != "":
		student, gerr := u.registry.Get(id)
		if gerr != nil {
			http.Error(w, "Student not found", http.StatusNotFound)
			return
		}
		msg := fmt.Sprintf("Course %s not assigned to the student.", r.FormValue("course"))
		u.render(w, r, http.StatusUnprocessableEntity, tmpl, page{Student: student, Message: msg})
	default:
		u.fail(w, r, err)
	}
}

func (u *UI) fail(w http.ResponseWriter, r *http.Request, err error) {
	ctxlog.FromContext(r.Context()).Error("request failed", slog.String("error", err.Error()))
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func (u *UI) render(w http.ResponseWriter, r *http.Request, status int, name string, data page) {
	t, ok := u.templates[name]
	if !ok {
		u.fail(w, r, fmt.Errorf("unknown template %s", name))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		// Headers are already out; all that is left is to log.
		ctxlog.FromContext(r.Context()).Error("render failed",
			slog.String("template", name),
			slog.String("error", err.Error()))
	}
}

// parseNumber accepts the form text of a mark or attendance value.
func parseNumber(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("parseNumber: %q is not a finite number", raw)
	}
	return v, nil
}

func studentURL(id string) string {
	return "/student/" + url.PathEscape(id)
}
