package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"school-service/internal/model"
	"school-service/internal/store"

	"github.com/labstack/echo/v4"
)

const (
	msgRequired = "This field is required."
	msgNotNull  = "This field may not be null."
)

// schoolRequest is the body of a school write. Nil means the field was absent.
type schoolRequest struct {
	Name             *string `json:"name"`
	Code             *string `json:"code"`
	Location         *string `json:"location"`
	StudentMaxNumber *int    `json:"student_max_number"`
}

// fields returns the full field set required by create and replace
func (r schoolRequest) fields() (store.SchoolFields, error) {
	missing := &store.ValidationError{}
	requireField(missing, "name", r.Name == nil)
	requireField(missing, "code", r.Code == nil)
	requireField(missing, "location", r.Location == nil)
	if missing.HasFields() {
		return store.SchoolFields{}, missing
	}
	return store.SchoolFields{
		Name:             *r.Name,
		Code:             *r.Code,
		Location:         *r.Location,
		StudentMaxNumber: r.StudentMaxNumber,
	}, nil
}

func (r schoolRequest) patch() store.SchoolPatch {
	return store.SchoolPatch{
		Name:             r.Name,
		Code:             r.Code,
		Location:         r.Location,
		StudentMaxNumber: r.StudentMaxNumber,
	}
}

// studentRequest is the body of a student write. School is only honoured on
// the flat student routes.
type studentRequest struct {
	Title     *string     `json:"title"`
	FirstName *string     `json:"first_name"`
	LastName  *string     `json:"last_name"`
	Age       *int        `json:"age"`
	Gender    *string     `json:"gender"`
	School    schoolField `json:"school"`
}

// fields returns the full field set required by create and replace. With
// withSchool the school reference is required too.
func (r studentRequest) fields(withSchool bool) (store.StudentFields, *uint, error) {
	missing := &store.ValidationError{}
	requireField(missing, "title", r.Title == nil)
	requireField(missing, "first_name", r.FirstName == nil)
	requireField(missing, "last_name", r.LastName == nil)
	requireField(missing, "age", r.Age == nil)
	requireField(missing, "gender", r.Gender == nil)
	if withSchool {
		r.School.check(missing, true)
	}
	if missing.HasFields() {
		return store.StudentFields{}, nil, missing
	}

	fields := store.StudentFields{
		Title:     model.Title(*r.Title),
		FirstName: *r.FirstName,
		LastName:  *r.LastName,
		Age:       *r.Age,
		Gender:    model.Gender(*r.Gender),
	}
	if !withSchool {
		return fields, nil, nil
	}
	id := r.School.ID
	return fields, &id, nil
}

// patch returns the partial update. With withSchool a supplied school
// reference is applied; it may not be null.
func (r studentRequest) patch(withSchool bool) (store.StudentPatch, error) {
	p := store.StudentPatch{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Age:       r.Age,
	}
	if r.Title != nil {
		t := model.Title(*r.Title)
		p.Title = &t
	}
	if r.Gender != nil {
		g := model.Gender(*r.Gender)
		p.Gender = &g
	}

	if withSchool && r.School.Set {
		invalid := &store.ValidationError{}
		r.School.check(invalid, false)
		if invalid.HasFields() {
			return store.StudentPatch{}, invalid
		}
		id := r.School.ID
		p.SetSchool = true
		p.SchoolID = &id
	}
	return p, nil
}

// replacement returns a patch that overwrites every writable field
func (r studentRequest) replacement(withSchool bool) (store.StudentPatch, error) {
	fields, schoolID, err := r.fields(withSchool)
	if err != nil {
		return store.StudentPatch{}, err
	}
	p := store.StudentPatch{
		Title:     &fields.Title,
		FirstName: &fields.FirstName,
		LastName:  &fields.LastName,
		Age:       &fields.Age,
		Gender:    &fields.Gender,
	}
	if withSchool {
		p.SetSchool = true
		p.SchoolID = schoolID
	}
	return p, nil
}

// schoolField decodes the school reference of a student body, which may be
// absent, null, an empty string, a number or a numeric string.
type schoolField struct {
	Set     bool
	Null    bool
	ID      uint
	Invalid string
}

func (f *schoolField) UnmarshalJSON(b []byte) error {
	f.Set = true
	raw := strings.TrimSpace(string(b))
	if raw == "null" || raw == `""` {
		f.Null = true
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		raw = strings.TrimSpace(s)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		f.Invalid = incorrectTypeMessage(b)
		return nil
	}
	if n <= 0 {
		f.Invalid = doesNotExistMessage(n)
		return nil
	}
	f.ID = uint(n)
	return nil
}

func (f schoolField) check(v *store.ValidationError, required bool) {
	switch {
	case !f.Set && required:
		v.Add("school", msgRequired)
	case f.Null:
		v.Add("school", msgNotNull)
	case f.Invalid != "":
		v.Add("school", f.Invalid)
	}
}

func doesNotExistMessage(id int64) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}

func incorrectTypeMessage(b []byte) string {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return "Incorrect type. Expected pk value."
	}
	var kind string
	switch v.(type) {
	case string:
		kind = "str"
	case float64:
		kind = "float"
	case bool:
		kind = "bool"
	case []interface{}:
		kind = "list"
	default:
		kind = "dict"
	}
	return fmt.Sprintf("Incorrect type. Expected pk value, received %s.", kind)
}

func requireField(v *store.ValidationError, field string, missing bool) {
	if missing {
		v.Add(field, msgRequired)
	}
}

// bindBody decodes the request body into dst. Type mismatches are reported
// per field; malformed JSON as a parse error.
func bindBody(c echo.Context, dst interface{}) error {
	err := (&echo.DefaultBinder{}).BindBody(c, dst)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return store.FieldError(typeErr.Field, typeMessage(typeErr.Type))
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
			"detail": "JSON parse error - " + syntaxErr.Error(),
		})
	}
	return err
}

func typeMessage(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int64, reflect.Int32, reflect.Uint, reflect.Uint64, reflect.Uint32:
		return "A valid integer is required."
	case reflect.String:
		return "Not a valid string."
	default:
		return "Invalid value."
	}
}
