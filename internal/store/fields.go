package store

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"school-service/internal/model"
)

// SchoolFields are the writable fields of a new school
type SchoolFields struct {
	Name     string `json:"name" validate:"required,max=20"`
	Code     string `json:"code" validate:"required,max=20"`
	Location string `json:"location" validate:"required,max=100"`
	// StudentMaxNumber defaults to model.DefaultStudentMaxNumber when nil
	StudentMaxNumber *int `json:"student_max_number" validate:"omitnil,gt=0"`
}

// SchoolPatch carries the school fields to change; nil leaves a field as is
type SchoolPatch struct {
	Name             *string `json:"name" validate:"omitnil,min=1,max=20"`
	Code             *string `json:"code" validate:"omitnil,min=1,max=20"`
	Location         *string `json:"location" validate:"omitnil,min=1,max=100"`
	StudentMaxNumber *int    `json:"student_max_number" validate:"omitnil,gt=0"`
}

// StudentFields are the writable fields of a new student
type StudentFields struct {
	Title     model.Title  `json:"title" validate:"required,title"`
	FirstName string       `json:"first_name" validate:"required,max=20"`
	LastName  string       `json:"last_name" validate:"required,max=20"`
	Age       int          `json:"age" validate:"min=0"`
	Gender    model.Gender `json:"gender" validate:"required,gender"`
}

// StudentPatch carries the student fields to change; nil leaves a field as is.
// The school reference only changes when SetSchool is true, in which case a
// nil SchoolID unlinks the student.
type StudentPatch struct {
	Title     *model.Title  `json:"title" validate:"omitnil,title"`
	FirstName *string       `json:"first_name" validate:"omitnil,min=1,max=20"`
	LastName  *string       `json:"last_name" validate:"omitnil,min=1,max=20"`
	Age       *int          `json:"age" validate:"omitnil,min=0"`
	Gender    *model.Gender `json:"gender" validate:"omitnil,gender"`

	SetSchool bool  `json:"-"`
	SchoolID  *uint `json:"-"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// choice fields defer to the model enums
	_ = v.RegisterValidation("title", func(fl validator.FieldLevel) bool {
		return model.Title(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		return model.Gender(fl.Field().String()).Valid()
	})
	return v
}

// checkFields runs the struct tag rules on v and converts violations into a
// ValidationError keyed by json field name.
func checkFields(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Add(fe.Field(), fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field may not be blank."
	case "min":
		if fe.Kind() == reflect.String {
			return "This field may not be blank."
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "gt":
		return "Ensure this value is greater than or equal to 1."
	case "title", "gender":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(fe.Value()))
	default:
		return "Invalid value."
	}
}

func (f *SchoolFields) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Code = strings.TrimSpace(f.Code)
	f.Location = strings.TrimSpace(f.Location)
}

func (p *SchoolPatch) normalize() {
	trimPtr(p.Name)
	trimPtr(p.Code)
	trimPtr(p.Location)
}

func (f *StudentFields) normalize() {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
}

func (p *StudentPatch) normalize() {
	trimPtr(p.FirstName)
	trimPtr(p.LastName)
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
