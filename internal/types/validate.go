package types

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Messages returned by Validate and the Parse helpers. Callers surface
// them to the user verbatim.
const (
	MsgName  = "Name must be at least 2 characters."
	MsgAge   = "Age must be an integer between 3 and 120."
	MsgGrade = "Grade is required."
	MsgEmail = "Email must be valid if provided."
	MsgGPA   = "GPA must be between 0.0 and 4.0."
	MsgID    = "ID must be a positive integer."
)

// validate is safe for concurrent use and caches rule parsing, so one
// instance serves the whole process.
var validate = validator.New()

// rule is one field check. The first failing rule wins.
type rule struct {
	value any
	tag   string
	msg   string
}

// Validate checks student input field by field, in order, and returns on
// the first failure with a user-facing message. On success it returns
// (true, ""). It has no side effects.
//
//  1. name, trimmed, is at least 2 characters
//  2. age is within [3, 120]
//  3. grade, trimmed, is not empty
//  4. email, when given, contains "@"
//  5. gpa is within [0.0, 4.0]
func Validate(name string, age int, grade, email string, gpa float64) (bool, string) {
	rules := []rule{
		{strings.TrimSpace(name), "required,min=2", MsgName},
		{age, "gte=3,lte=120", MsgAge},
		{strings.TrimSpace(grade), "required", MsgGrade},
		{email, "omitempty,contains=@", MsgEmail},
		{gpa, "gte=0,lte=4", MsgGPA},
	}

	for _, r := range rules {
		if err := validate.Var(r.value, r.tag); err != nil {
			return false, r.msg
		}
	}

	return true, ""
}

// ValidateStudent runs Validate over a complete record.
func ValidateStudent(s Student) (bool, string) {
	return Validate(s.Name, s.Age, s.Grade, s.EmailOrEmpty(), s.GPA)
}

// ValidationError is returned by the Parse helpers when caller input
// cannot be coerced to a number.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ParseID converts caller text to a record id. Anything but a positive
// decimal integer is rejected.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 1 {
		return 0, &ValidationError{Message: MsgID}
	}
	return id, nil
}

// ParseAge converts caller text to an integer age. Range checks are left
// to Validate so search bounds can use it too.
func ParseAge(s string) (int, error) {
	age, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &ValidationError{Message: MsgAge}
	}
	return age, nil
}

// ParseGPA converts caller text to a GPA. NaN and infinities are
// rejected here; range checks are left to Validate.
func ParseGPA(s string) (float64, error) {
	gpa, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(gpa) || math.IsInf(gpa, 0) {
		return 0, &ValidationError{Message: MsgGPA}
	}
	return gpa, nil
}
