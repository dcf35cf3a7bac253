// Package rules holds the registration rules that every student mutation must
// satisfy before it is persisted. Nothing in this package touches storage; the
// caller supplies the prospective state and gets back an approval or a reason.
package rules

import (
	"errors"

	"school-service/internal/model"
)

const (
	MinimumAge = 10
	MaximumAge = 20
)

const (
	AgeMessage      = "Students need to be age between 10 to 20 to register!"
	CapacityMessage = "Unable to add student to school as it is full!"
)

// Rule names, used as metric labels
const (
	RuleAge      = "age"
	RuleCapacity = "capacity"
)

// Violation is returned when a mutation breaks a registration rule
type Violation struct {
	Rule    string
	Message string
}

func (v *Violation) Error() string {
	return v.Message
}

// IsViolation reports whether err is a rule violation and returns it
func IsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// CheckAge rejects ages outside [MinimumAge, MaximumAge]
func CheckAge(age int) error {
	if age < MinimumAge || age > MaximumAge {
		return &Violation{Rule: RuleAge, Message: AgeMessage}
	}
	return nil
}

// CheckCapacity rejects adding a student to school when enrolled active
// students have already reached its capacity. A capacity lowered below the
// current enrolment also counts as full.
func CheckCapacity(school model.School, enrolled int64) error {
	if enrolled >= int64(school.StudentMaxNumber) {
		return &Violation{Rule: RuleCapacity, Message: CapacityMessage}
	}
	return nil
}

// Mutation describes a proposed student create or update in terms of the
// state it would produce.
type Mutation struct {
	// Create is true for a new student.
	Create bool
	// Age is the supplied age, nil when an update leaves age untouched.
	Age *int
	// PreviousSchoolID is the school the student references now (updates only).
	PreviousSchoolID *uint
	// TargetSchool is the school the student would reference afterwards, nil for none.
	TargetSchool *model.School
	// Enrolled is the number of active students currently referencing TargetSchool.
	Enrolled int64
}

// NeedsCapacityCheck reports whether m moves the student into a school it is
// not already counted against.
func (m Mutation) NeedsCapacityCheck() bool {
	if m.TargetSchool == nil {
		return false
	}
	if m.Create {
		return true
	}
	return m.PreviousSchoolID == nil || *m.PreviousSchoolID != m.TargetSchool.ID
}

// Validate applies the age and capacity rules to m. The age rule runs first;
// both must pass for the mutation to be approved.
func Validate(m Mutation) error {
	if m.Age != nil {
		if err := CheckAge(*m.Age); err != nil {
			return err
		}
	}
	if m.NeedsCapacityCheck() {
		if err := CheckCapacity(*m.TargetSchool, m.Enrolled); err != nil {
			return err
		}
	}
	return nil
}
