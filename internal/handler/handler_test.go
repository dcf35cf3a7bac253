package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"school-service/internal/model"
	"school-service/internal/rules"
	"school-service/internal/store"
	"school-service/internal/testutil"
	"school-service/pkg/config"
	"school-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	e     *echo.Echo
	store *store.Store
}

func setupTest(t *testing.T) *testServer {
	t.Helper()
	s := store.New(testutil.NewDB(t), nil)
	h := New(s, config.PaginationConfig{SchoolPageSize: 10, StudentPageSize: 5})

	e := echo.New()
	e.Use(logger.Middleware(zap.NewNop()))
	h.Register(e.Group("/api"))
	return &testServer{e: e, store: s}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) school(t *testing.T, name string, capacity int) *model.School {
	t.Helper()
	school, err := ts.store.CreateSchool(context.Background(), store.SchoolFields{
		Name:             name,
		Code:             "A0001",
		Location:         "Bangkok",
		StudentMaxNumber: &capacity,
	})
	require.NoError(t, err)
	return school
}

func (ts *testServer) student(t *testing.T, first string, schoolID uint) *model.Student {
	t.Helper()
	student, err := ts.store.CreateStudent(context.Background(), store.StudentFields{
		Title:     model.TitleMiss,
		FirstName: first,
		LastName:  "Doe",
		Age:       14,
		Gender:    model.GenderFemale,
	}, &schoolID)
	require.NoError(t, err)
	return student
}

func studentBody(first string, age int, school interface{}) map[string]interface{} {
	return map[string]interface{}{
		"title":      "MR",
		"first_name": first,
		"last_name":  "Smith",
		"age":        age,
		"gender":     "MALE",
		"school":     school,
	}
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	var out []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func decodeFields(t *testing.T, rec *httptest.ResponseRecorder) map[string][]string {
	t.Helper()
	var out map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestCreateSchool(t *testing.T) {
	ts := setupTest(t)

	rec := ts.do(t, http.MethodPost, "/api/schools", map[string]interface{}{
		"name":     "  Martin School ",
		"code":     "A01234",
		"location": "Bangkok",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeMap(t, rec)
	assert.Equal(t, "Martin School", body["name"])
	assert.EqualValues(t, 100, body["student_max_number"])
	assert.Equal(t, true, body["is_active"])
	assert.NotNil(t, body["id"])
	assert.NotEmpty(t, body["created_at"])
}

func TestCreateSchool_Validation(t *testing.T) {
	ts := setupTest(t)

	rec := ts.do(t, http.MethodPost, "/api/schools", map[string]interface{}{"code": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decodeFields(t, rec)
	assert.Equal(t, []string{msgRequired}, fields["name"])
	assert.Equal(t, []string{msgRequired}, fields["location"])

	rec = ts.do(t, http.MethodPost, "/api/schools", map[string]interface{}{
		"name":               "Martin School",
		"code":               "",
		"location":           "Bangkok",
		"student_max_number": 0,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields = decodeFields(t, rec)
	assert.Equal(t, []string{"This field may not be blank."}, fields["code"])
	assert.Contains(t, fields, "student_max_number")

	rec = ts.do(t, http.MethodPost, "/api/schools", map[string]interface{}{
		"name":               "Martin School",
		"code":               "A1",
		"location":           "Bangkok",
		"student_max_number": "lots",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"A valid integer is required."}, decodeFields(t, rec)["student_max_number"])
}

func TestCreateSchool_DuplicateName(t *testing.T) {
	ts := setupTest(t)
	ts.school(t, "Martin School", 10)

	rec := ts.do(t, http.MethodPost, "/api/schools", map[string]interface{}{
		"name": "Martin School", "code": "B1", "location": "Chiang Mai",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"school with this name already exists."}, decodeFields(t, rec)["name"])
}

func TestCreateSchool_MalformedJSON(t *testing.T) {
	ts := setupTest(t)

	rec := ts.do(t, http.MethodPost, "/api/schools", `{"name": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSchoolDetail(t *testing.T) {
	ts := setupTest(t)
	school := ts.school(t, "Martin School", 10)

	rec := ts.do(t, http.MethodGet, fmt.Sprintf("/api/schools/%d", school.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Martin School", decodeMap(t, rec)["name"])

	for _, path := range []string{"/api/schools/999", "/api/schools/abc"} {
		rec = ts.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, notFoundDetail, decodeMap(t, rec)["detail"])
	}
}

func TestUpdateSchool(t *testing.T) {
	ts := setupTest(t)
	school := ts.school(t, "Martin School", 10)
	path := fmt.Sprintf("/api/schools/%d", school.ID)

	rec := ts.do(t, http.MethodPatch, path, map[string]interface{}{"location": "Phuket"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	assert.Equal(t, "Phuket", body["location"])
	assert.Equal(t, "Martin School", body["name"])

	rec = ts.do(t, http.MethodPut, path, map[string]interface{}{"name": "New Name"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decodeFields(t, rec)
	assert.Contains(t, fields, "code")
	assert.Contains(t, fields, "location")

	rec = ts.do(t, http.MethodPut, path, map[string]interface{}{
		"name": "New Name", "code": "Z9", "location": "Krabi",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decodeMap(t, rec)
	assert.Equal(t, "New Name", body["name"])
	assert.EqualValues(t, 10, body["student_max_number"])
}

func TestListSchools_Pagination(t *testing.T) {
	ts := setupTest(t)
	for i := 0; i < 3; i++ {
		ts.school(t, fmt.Sprintf("School %d", i), 10)
	}

	rec := ts.do(t, http.MethodGet, "/api/schools?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Count    int64          `json:"count"`
		Next     *string        `json:"next"`
		Previous *string        `json:"previous"`
		Results  []model.School `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.EqualValues(t, 3, page.Count)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "School 2", page.Results[0].Name)
	require.NotNil(t, page.Next)
	assert.Equal(t, "http://example.com/api/schools?limit=2&offset=2", *page.Next)
	assert.Nil(t, page.Previous)

	rec = ts.do(t, http.MethodGet, "/api/schools?limit=2&offset=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page.Next, page.Previous, page.Results = nil, nil, nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Results, 1)
	assert.Nil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "http://example.com/api/schools?limit=2", *page.Previous)
}

func TestListSchools_HugeWindow(t *testing.T) {
	ts := setupTest(t)
	ts.school(t, "School 0", 10)
	ts.school(t, "School 1", 10)

	rec := ts.do(t, http.MethodGet, "/api/schools?limit=9223372036854775807&offset=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.EqualValues(t, 2, body["count"])
	assert.Len(t, body["results"], 1)
	assert.Nil(t, body["next"])
	assert.Equal(t, fmt.Sprintf("http://example.com/api/schools?limit=%d", maxPageLimit), body["previous"])

	rec = ts.do(t, http.MethodGet, "/api/schools?offset=9223372036854775807", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeMap(t, rec)
	assert.Nil(t, body["next"])
	assert.Equal(t, []interface{}{}, body["results"])
}

func TestPageFromQuery(t *testing.T) {
	tests := []struct {
		query  string
		limit  int
		offset int
	}{
		{"", 10, 0},
		{"limit=3&offset=6", 3, 6},
		{"limit=0&offset=-2", 10, 0},
		{"limit=abc", 10, 0},
		{"limit=5000", maxPageLimit, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/api/schools?"+tt.query, nil), httptest.NewRecorder())
			p := pageFromQuery(c, 10)
			assert.Equal(t, tt.limit, p.Limit)
			assert.Equal(t, tt.offset, p.Offset)
		})
	}
}

func TestListSchools_Filters(t *testing.T) {
	ts := setupTest(t)
	ts.school(t, "Martin School", 10)
	ts.school(t, "John School", 10)

	rec := ts.do(t, http.MethodGet, "/api/schools?name=John+School", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.EqualValues(t, 1, body["count"])

	rec = ts.do(t, http.MethodGet, "/api/schools?location=Nowhere", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeMap(t, rec)
	assert.EqualValues(t, 0, body["count"])
	assert.Equal(t, []interface{}{}, body["results"])
}

func TestDeleteSchool_Cascade(t *testing.T) {
	ts := setupTest(t)
	school := ts.school(t, "Closing School", 10)
	students := []*model.Student{
		ts.student(t, "Anna", school.ID),
		ts.student(t, "Bea", school.ID),
		ts.student(t, "Cara", school.ID),
	}
	path := fmt.Sprintf("/api/schools/%d", school.ID)

	rec := ts.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = ts.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for _, st := range students {
		rec = ts.do(t, http.MethodGet, fmt.Sprintf("/api/students/%d", st.ID), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeMap(t, rec)
		assert.Nil(t, body["school"])
		assert.Nil(t, body["school_details"])
	}

	rec = ts.do(t, http.MethodGet, "/api/schools", nil)
	assert.EqualValues(t, 0, decodeMap(t, rec)["count"])

	rec = ts.do(t, http.MethodGet, "/api/schools?include_inactive=true", nil)
	assert.EqualValues(t, 1, decodeMap(t, rec)["count"])

	// deleting again is a no-op
	rec = ts.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/schools/4242", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateStudent(t *testing.T) {
	ts := setupTest(t)
	school := ts.school(t, "Martin School", 10)

	rec := ts.do(t, http.MethodPost, "/api/students", studentBody("John", 15, school.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeMap(t, rec)
	assert.EqualValues(t, school.ID, body["school"])
	assert.NotEmpty(t, body["identification"])
	details, ok := body["school_details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Martin School", details["name"])
}

func TestCreateStudent_AgeRule(t *testing.T) {
	ts := setupTest(t)
	school := ts.school(t, "Martin School", 10)

	for _, age := range []int{9, 21} {
		rec := ts.do(t, http.MethodPost, "/api/students", studentBody("John", age, school.ID))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, []string{rules.AgeMessage}, decodeList(t, rec))
	}

	rec := ts.do(t, http.MethodPost, "/api/students", studentBody("John", 10, school.ID))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateStudent_CapacityRule(t *testing.T) {
	ts := setupTest(t)
	school := ts.school(t, "Small School", 2)
	ts.student(t, "Anna", school.ID)

	rec := ts.do(t, http.MethodPost, "/api/students", studentBody("Ben", 15, school.ID))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/students", studentBody("Carl", 15, school.ID))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{rules.CapacityMessage}, decodeList(t, rec))

	rec = ts.do(t, http.MethodGet, "/api/students", nil)
	assert.EqualValues(t, 2, decodeMap(t, rec)["count"])
}

func TestCreateStudent_SchoolReference(t *testing.T) {
	ts := setupTest(t)
	closed := ts.school(t, "Closed School", 10)
	require.NoError(t, ts.store.DeactivateSchool(context.Background(), closed.ID))

	tests := []struct {
		name    string
		school  interface{}
		omit    bool
		message string
	}{
		{name: "missing", omit: true, message: msgRequired},
		{name: "null", school: nil, message: msgNotNull},
		{name: "empty string", school: "", message: msgNotNull},
		{name: "unknown", school: 999, message: `Invalid pk "999" - object does not exist.`},
		{name: "inactive", school: closed.ID, message: fmt.Sprintf(`Invalid pk "%d" - object does not exist.`, closed.ID)},
		{name: "wrong type", school: true, message: "Incorrect type. Expected pk value, received bool."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := studentBody("John", 15, tt.school)
			if tt.omit {
				delete(body, "school")
			}
			rec := ts.do(t, http.MethodPost, "/api/students", body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, []string{tt.message}, decodeFields(t, rec)["school"])
		})
	}
}

func TestCreateStudent_FieldErrors(t *testing.T) {
	ts := setupTest(t)
	school := ts.school(t, "Martin School", 10)

	body := studentBody("John", 15, school.ID)
	body["title"] = "SIR"
	body["gender"] = "OTHER"
	rec := ts.do(t, http.MethodPost, "/api/students", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decodeFields(t, rec)
	assert.Equal(t, []string{`"SIR" is not a valid choice.`}, fields["title"])
	assert.Equal(t, []string{`"OTHER" is not a valid choice.`}, fields["gender"])

	body = studentBody("John", 15, school.ID)
	body["age"] = "old"
	rec = ts.do(t, http.MethodPost, "/api/students", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"A valid integer is required."}, decodeFields(t, rec)["age"])
}

func TestUpdateStudent(t *testing.T) {
	ts := setupTest(t)
	a := ts.school(t, "School A", 10)
	b := ts.school(t, "School B", 1)
	student := ts.student(t, "Anna", a.ID)
	ts.student(t, "Filler", b.ID)
	path := fmt.Sprintf("/api/students/%d", student.ID)

	rec := ts.do(t, http.MethodPatch, path, map[string]interface{}{"age": 25})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{rules.AgeMessage}, decodeList(t, rec))

	rec = ts.do(t, http.MethodPatch, path, map[string]interface{}{"school": b.ID})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{rules.CapacityMessage}, decodeList(t, rec))

	rec = ts.do(t, http.MethodPatch, path, map[string]interface{}{"school": nil})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{msgNotNull}, decodeFields(t, rec)["school"])

	rec = ts.do(t, http.MethodGet, path, nil)
	body := decodeMap(t, rec)
	assert.EqualValues(t, 14, body["age"])
	assert.EqualValues(t, a.ID, body["school"])

	rec = ts.do(t, http.MethodPatch, path, map[string]interface{}{"last_name": "Jones", "age": 16})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decodeMap(t, rec)
	assert.Equal(t, "Jones", body["last_name"])
	assert.Equal(t, "Anna", body["first_name"])
	assert.EqualValues(t, 16, body["age"])
}

func TestReplaceStudent(t *testing.T) {
	ts := setupTest(t)
	a := ts.school(t, "School A", 10)
	b := ts.school(t, "School B", 10)
	student := ts.student(t, "Anna", a.ID)
	path := fmt.Sprintf("/api/students/%d", student.ID)

	body := studentBody("Bea", 18, nil)
	delete(body, "school")
	rec := ts.do(t, http.MethodPut, path, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{msgRequired}, decodeFields(t, rec)["school"])

	rec = ts.do(t, http.MethodPut, path, studentBody("Bea", 18, b.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeMap(t, rec)
	assert.Equal(t, "Bea", got["first_name"])
	assert.Equal(t, "MR", got["title"])
	assert.EqualValues(t, b.ID, got["school"])
	assert.Equal(t, student.Identification.String(), got["identification"])
}

func TestDeleteStudent(t *testing.T) {
	ts := setupTest(t)
	school := ts.school(t, "Tiny School", 1)
	student := ts.student(t, "Anna", school.ID)
	path := fmt.Sprintf("/api/students/%d", student.ID)

	rec := ts.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// the seat was released
	rec = ts.do(t, http.MethodPost, "/api/students", studentBody("Ben", 15, school.ID))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestListStudents(t *testing.T) {
	ts := setupTest(t)
	a := ts.school(t, "School A", 20)
	b := ts.school(t, "School B", 20)
	for i := 0; i < 6; i++ {
		ts.student(t, fmt.Sprintf("A%d", i), a.ID)
	}
	ts.student(t, "Bonnie", b.ID)

	rec := ts.do(t, http.MethodGet, "/api/students", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.EqualValues(t, 7, body["count"])
	assert.Len(t, body["results"], 5)
	assert.Equal(t, "http://example.com/api/students?limit=5&offset=5", body["next"])

	rec = ts.do(t, http.MethodGet, "/api/students?school=School+B", nil)
	body = decodeMap(t, rec)
	assert.EqualValues(t, 1, body["count"])

	rec = ts.do(t, http.MethodGet, "/api/students?first_name=A3&last_name=Doe", nil)
	body = decodeMap(t, rec)
	assert.EqualValues(t, 1, body["count"])
}

func TestSchoolStudents(t *testing.T) {
	ts := setupTest(t)
	a := ts.school(t, "School A", 2)
	b := ts.school(t, "School B", 10)
	anna := ts.student(t, "Anna", a.ID)
	bonnie := ts.student(t, "Bonnie", b.ID)
	base := fmt.Sprintf("/api/schools/%d/students", a.ID)

	rec := ts.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeMap(t, rec)["count"])

	// the body cannot redirect a nested create
	rec = ts.do(t, http.MethodPost, base, studentBody("Ben", 12, b.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.EqualValues(t, a.ID, decodeMap(t, rec)["school"])

	rec = ts.do(t, http.MethodPost, base, studentBody("Carl", 12, nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{rules.CapacityMessage}, decodeList(t, rec))

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("%s/%d", base, anna.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("%s/%d", base, bonnie.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPatch, fmt.Sprintf("%s/%d", base, anna.ID), map[string]interface{}{
		"first_name": "Annie",
		"school":     b.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	assert.Equal(t, "Annie", body["first_name"])
	assert.EqualValues(t, a.ID, body["school"])

	rec = ts.do(t, http.MethodDelete, fmt.Sprintf("%s/%d", base, bonnie.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodDelete, fmt.Sprintf("%s/%d", base, anna.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, base+"?first_name=Ben", nil)
	assert.EqualValues(t, 1, decodeMap(t, rec)["count"])
}

func TestSchoolStudents_InactiveSchool(t *testing.T) {
	ts := setupTest(t)
	school := ts.school(t, "Closed School", 10)
	student := ts.student(t, "Anna", school.ID)
	require.NoError(t, ts.store.DeactivateSchool(context.Background(), school.ID))
	base := fmt.Sprintf("/api/schools/%d/students", school.ID)

	for _, rec := range []*httptest.ResponseRecorder{
		ts.do(t, http.MethodGet, base, nil),
		ts.do(t, http.MethodPost, base, studentBody("Ben", 12, nil)),
		ts.do(t, http.MethodGet, fmt.Sprintf("%s/%d", base, student.ID), nil),
		ts.do(t, http.MethodGet, "/api/schools/777/students", nil),
	} {
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, notFoundDetail, decodeMap(t, rec)["detail"])
	}
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealthCheck(t *testing.T) {
	e := echo.New()
	e.GET("/health", HealthCheck(fakePinger{}))
	e.GET("/down", HealthCheck(fakePinger{err: fmt.Errorf("connection refused")}))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeMap(t, rec)["status"])

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/down", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
