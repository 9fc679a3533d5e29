package student

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aanand-mishra/student-records/internal/storage/memory"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func router(reg *memory.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/students", New(reg))
	mux.HandleFunc("GET /api/students", GetList(reg))
	mux.HandleFunc("GET /api/students/{id}", GetByID(reg))
	mux.HandleFunc("PATCH /api/students/{id}", Update(reg))
	mux.HandleFunc("DELETE /api/students/{id}", Delete(reg))
	mux.HandleFunc("POST /api/students/{id}/courses", AssignCourse(reg))
	mux.HandleFunc("PUT /api/students/{id}/marks", UpdateMarks(reg))
	mux.HandleFunc("PUT /api/students/{id}/attendance", UpdateAttendance(reg))
	mux.HandleFunc("GET /healthz", Health())
	return mux
}

func call(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeStudent(t *testing.T, rec *httptest.ResponseRecorder) types.Student {
	t.Helper()
	var s types.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	return s
}

func TestCreate(t *testing.T) {
	reg := memory.New()
	mux := router(reg)

	rec := call(mux, http.MethodPost, "/api/students", `{"id":"S1","name":"Ada","year":"2","department":"CS"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":"S1"}`, rec.Body.String())

	rec = call(mux, http.MethodPost, "/api/students", `{"id":"S1","name":"Other"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"error"`)

	s, err := reg.Get("S1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", s.Name)
}

func TestCreate_BadBody(t *testing.T) {
	mux := router(memory.New())

	rec := call(mux, http.MethodPost, "/api/students", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "request body is empty")

	rec = call(mux, http.MethodPost, "/api/students", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetByID(t *testing.T) {
	reg := memory.New()
	require.NoError(t, reg.Add(types.NewStudent("S1", "Ada", "2", "CS")))
	mux := router(reg)

	rec := call(mux, http.MethodGet, "/api/students/S1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	s := decodeStudent(t, rec)
	assert.Equal(t, "Ada", s.Name)
	assert.Empty(t, s.Courses)

	rec = call(mux, http.MethodGet, "/api/students/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetList_Search(t *testing.T) {
	reg := memory.New()
	require.NoError(t, reg.Add(types.NewStudent("1", "Anna", "1", "CS")))
	require.NoError(t, reg.Add(types.NewStudent("2", "Bob", "1", "Math")))
	require.NoError(t, reg.Add(types.NewStudent("3", "Ivan", "1", "cs")))
	mux := router(reg)

	list := func(target string) []string {
		rec := call(mux, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var students []types.Student
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &students))
		ids := []string{}
		for _, s := range students {
			ids = append(ids, s.ID)
		}
		return ids
	}

	assert.Equal(t, []string{"1", "2", "3"}, list("/api/students"))
	assert.Equal(t, []string{"1", "3"}, list("/api/students?name=AN"))
	assert.Equal(t, []string{"3"}, list("/api/students?name=an&id=3"))
	assert.Equal(t, []string{}, list("/api/students?department=art"))

	rec := call(mux, http.MethodGet, "/api/students?department=art", "")
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestUpdate_Partial(t *testing.T) {
	reg := memory.New()
	require.NoError(t, reg.Add(types.NewStudent("S1", "Ada", "2", "CS")))
	mux := router(reg)

	rec := call(mux, http.MethodPatch, "/api/students/S1", `{"year":"3","name":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	s := decodeStudent(t, rec)
	assert.Equal(t, "Ada", s.Name)
	assert.Equal(t, "3", s.Year)
	assert.Equal(t, "CS", s.Department)

	rec = call(mux, http.MethodPatch, "/api/students/nope", `{"year":"3"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDelete(t *testing.T) {
	reg := memory.New()
	require.NoError(t, reg.Add(types.NewStudent("S1", "Ada", "2", "CS")))
	mux := router(reg)

	rec := call(mux, http.MethodDelete, "/api/students/S1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = call(mux, http.MethodDelete, "/api/students/S1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCoursesMarksAttendance(t *testing.T) {
	reg := memory.New()
	require.NoError(t, reg.Add(types.NewStudent("S1", "Ada", "2", "CS")))
	mux := router(reg)

	rec := call(mux, http.MethodPost, "/api/students/S1/courses", `{"course":"Algorithms"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	s := decodeStudent(t, rec)
	assert.Equal(t, []string{"Algorithms"}, s.Courses)
	assert.Nil(t, s.Marks["Algorithms"])
	assert.Contains(t, rec.Body.String(), `"Algorithms":null`)

	rec = call(mux, http.MethodPut, "/api/students/S1/marks", `{"course":"Algorithms","mark":91.5}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(mux, http.MethodPut, "/api/students/S1/attendance", `{"course":"Algorithms","attendance":88}`)
	require.Equal(t, http.StatusOK, rec.Code)
	s = decodeStudent(t, rec)
	require.NotNil(t, s.Marks["Algorithms"])
	assert.Equal(t, 91.5, *s.Marks["Algorithms"])
	assert.Equal(t, 88.0, s.Attendance["Algorithms"])
}

func TestUpdateMarks_Errors(t *testing.T) {
	reg := memory.New()
	require.NoError(t, reg.Add(types.NewStudent("S1", "Ada", "2", "CS")))
	mux := router(reg)

	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"mark not a number", "/api/students/S1/marks", `{"course":"Algorithms","mark":"abc"}`, http.StatusBadRequest},
		{"mark missing", "/api/students/S1/marks", `{"course":"Algorithms"}`, http.StatusBadRequest},
		{"course missing", "/api/students/S1/attendance", `{"attendance":5}`, http.StatusBadRequest},
		{"unknown student", "/api/students/nope/marks", `{"course":"Algorithms","mark":1}`, http.StatusNotFound},
		{"unassigned course", "/api/students/S1/marks", `{"course":"Physics","mark":70}`, http.StatusUnprocessableEntity},
		{"unassigned course attendance", "/api/students/S1/attendance", `{"course":"Physics","attendance":70}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(mux, http.MethodPut, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	s, _ := reg.Get("S1")
	assert.Empty(t, s.Marks)
	assert.Empty(t, s.Courses)
}

func TestGetByID_UnencodableRecord(t *testing.T) {
	reg := memory.New()
	require.NoError(t, reg.Add(types.NewStudent("S1", "Ada", "2", "CS")))
	_, err := reg.AssignCourse("S1", "Algorithms")
	require.NoError(t, err)
	_, err = reg.UpdateMarks("S1", "Algorithms", math.NaN())
	require.NoError(t, err)

	rec := call(router(reg), http.MethodGet, "/api/students/S1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status":"error","error":"cannot encode response"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	rec := call(router(memory.New()), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
