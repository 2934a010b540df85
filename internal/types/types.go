// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage backends, and the CLI can all import types without
// depending on each other.
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Student represents one student record in the persisted collection.
//
// ID is assigned by the storage layer on creation and never changes
// afterwards. Email and Notes are optional: nil encodes to JSON null.
type Student struct {
	ID    int64   `json:"id"    yaml:"id"`
	Name  string  `json:"name"  yaml:"name"`
	Age   int     `json:"age"   yaml:"age"`
	Grade string  `json:"grade" yaml:"grade"`
	Email *string `json:"email" yaml:"email"`
	GPA   float64 `json:"gpa"   yaml:"gpa"`
	Notes *string `json:"notes" yaml:"notes"`
}

// ToMap converts the record into a generic field-name → value mapping.
// Optional fields that are unset map to nil.
func (s Student) ToMap() map[string]any {
	return map[string]any{
		"id":    s.ID,
		"name":  s.Name,
		"age":   s.Age,
		"grade": s.Grade,
		"email": derefOrNil(s.Email),
		"gpa":   s.GPA,
		"notes": derefOrNil(s.Notes),
	}
}

// StudentFromMap builds a Student from a generic mapping, as produced by
// decoding a JSON object. Numeric fields are coerced explicitly: id and
// age must be integral, gpa any number. Missing optional keys are nil.
func StudentFromMap(m map[string]any) (Student, error) {
	var (
		s   Student
		err error
	)

	if s.ID, err = toInt64(m["id"]); err != nil {
		return Student{}, fmt.Errorf("field id: %w", err)
	}
	if s.Name, err = toString(m["name"]); err != nil {
		return Student{}, fmt.Errorf("field name: %w", err)
	}
	age, err := toInt64(m["age"])
	if err != nil {
		return Student{}, fmt.Errorf("field age: %w", err)
	}
	s.Age = int(age)
	if s.Grade, err = toString(m["grade"]); err != nil {
		return Student{}, fmt.Errorf("field grade: %w", err)
	}
	if s.Email, err = toOptString(m["email"]); err != nil {
		return Student{}, fmt.Errorf("field email: %w", err)
	}
	if v, ok := m["gpa"]; ok && v != nil {
		if s.GPA, err = toFloat64(v); err != nil {
			return Student{}, fmt.Errorf("field gpa: %w", err)
		}
	}
	if s.Notes, err = toOptString(m["notes"]); err != nil {
		return Student{}, fmt.Errorf("field notes: %w", err)
	}

	return s, nil
}

// Normalize trims text fields and turns blank optional fields into nil,
// the same clean-up every caller applies before writing a record.
func (s Student) Normalize() Student {
	s.Name = strings.TrimSpace(s.Name)
	s.Grade = strings.TrimSpace(s.Grade)
	s.Email = trimOptional(s.Email)
	s.Notes = trimOptional(s.Notes)
	return s
}

// EmailOrEmpty returns the email, or "" when it is unset.
func (s Student) EmailOrEmpty() string {
	if s.Email == nil {
		return ""
	}
	return *s.Email
}

// NotesOrEmpty returns the notes, or "" when they are unset.
func (s Student) NotesOrEmpty() string {
	if s.Notes == nil {
		return ""
	}
	return *s.Notes
}

// StudentPatch is a partial update. A nil field leaves the stored value
// unchanged. Email and Notes can additionally be cleared to null with
// ClearEmail / ClearNotes. There is no ID field: an update can never
// rewrite a record's identity.
type StudentPatch struct {
	Name  *string
	Age   *int
	Grade *string
	Email *string
	GPA   *float64
	Notes *string

	ClearEmail bool
	ClearNotes bool
}

// ReplaceWith returns a patch that overwrites every field of a record
// with the values of s (used for full PUT-style replacement).
func ReplaceWith(s Student) StudentPatch {
	p := StudentPatch{
		Name:  &s.Name,
		Age:   &s.Age,
		Grade: &s.Grade,
		GPA:   &s.GPA,
		Email: s.Email,
		Notes: s.Notes,
	}
	p.ClearEmail = s.Email == nil
	p.ClearNotes = s.Notes == nil
	return p
}

// PatchFromMap converts an untyped key/value update payload into a
// StudentPatch. An "id" key is ignored. A null email or notes clears the
// field. Unknown keys are rejected.
func PatchFromMap(m map[string]any) (StudentPatch, error) {
	var p StudentPatch

	for key, v := range m {
		switch key {
		case "id":
			// identity is immutable
		case "name":
			str, err := toString(v)
			if err != nil {
				return StudentPatch{}, fmt.Errorf("field name: %w", err)
			}
			p.Name = &str
		case "age":
			n, err := toInt64(v)
			if err != nil {
				return StudentPatch{}, fmt.Errorf("field age: %w", err)
			}
			age := int(n)
			p.Age = &age
		case "grade":
			str, err := toString(v)
			if err != nil {
				return StudentPatch{}, fmt.Errorf("field grade: %w", err)
			}
			p.Grade = &str
		case "email":
			str, err := toOptString(v)
			if err != nil {
				return StudentPatch{}, fmt.Errorf("field email: %w", err)
			}
			p.Email, p.ClearEmail = str, str == nil
		case "gpa":
			f, err := toFloat64(v)
			if err != nil {
				return StudentPatch{}, fmt.Errorf("field gpa: %w", err)
			}
			p.GPA = &f
		case "notes":
			str, err := toOptString(v)
			if err != nil {
				return StudentPatch{}, fmt.Errorf("field notes: %w", err)
			}
			p.Notes, p.ClearNotes = str, str == nil
		default:
			return StudentPatch{}, fmt.Errorf("unknown field %q", key)
		}
	}

	return p, nil
}

// Normalize applies the same trimming rules as Student.Normalize to the
// supplied fields. A blank email or notes becomes a clear.
func (p StudentPatch) Normalize() StudentPatch {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
	}
	if p.Grade != nil {
		grade := strings.TrimSpace(*p.Grade)
		p.Grade = &grade
	}
	if p.Email != nil {
		p.Email = trimOptional(p.Email)
		p.ClearEmail = p.Email == nil
	}
	if p.Notes != nil {
		p.Notes = trimOptional(p.Notes)
		p.ClearNotes = p.Notes == nil
	}
	return p
}

// IsEmpty reports whether the patch would change nothing.
func (p StudentPatch) IsEmpty() bool {
	return p.Name == nil && p.Age == nil && p.Grade == nil && p.Email == nil &&
		p.GPA == nil && p.Notes == nil && !p.ClearEmail && !p.ClearNotes
}

// Apply merges the supplied fields onto s and returns the result. The
// ID of s is always preserved.
func (p StudentPatch) Apply(s Student) Student {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Age != nil {
		s.Age = *p.Age
	}
	if p.Grade != nil {
		s.Grade = *p.Grade
	}
	if p.GPA != nil {
		s.GPA = *p.GPA
	}
	switch {
	case p.Email != nil:
		email := *p.Email
		s.Email = &email
	case p.ClearEmail:
		s.Email = nil
	}
	switch {
	case p.Notes != nil:
		notes := *p.Notes
		s.Notes = &notes
	case p.ClearNotes:
		s.Notes = nil
	}
	return s
}

// Criteria is a set of optional search constraints, combined with AND.
// An empty string or a nil bound means "no constraint"; zero is a real
// bound.
type Criteria struct {
	Keyword string   `json:"keyword,omitempty"`
	Grade   string   `json:"grade,omitempty"`
	MinAge  *int     `json:"min_age,omitempty"`
	MaxAge  *int     `json:"max_age,omitempty"`
	MinGPA  *float64 `json:"min_gpa,omitempty"`
	MaxGPA  *float64 `json:"max_gpa,omitempty"`
}

// Matches reports whether s satisfies every supplied constraint.
//
// The keyword matches a case-insensitive substring of the name, or the
// exact decimal text of the id.
func (c Criteria) Matches(s Student) bool {
	if kw := strings.ToLower(strings.TrimSpace(c.Keyword)); kw != "" {
		if !strings.Contains(strings.ToLower(s.Name), kw) &&
			kw != strconv.FormatInt(s.ID, 10) {
			return false
		}
	}
	if c.Grade != "" && !strings.EqualFold(s.Grade, c.Grade) {
		return false
	}
	if c.MinAge != nil && s.Age < *c.MinAge {
		return false
	}
	if c.MaxAge != nil && s.Age > *c.MaxAge {
		return false
	}
	if c.MinGPA != nil && s.GPA < *c.MinGPA {
		return false
	}
	if c.MaxGPA != nil && s.GPA > *c.MaxGPA {
		return false
	}
	return true
}

func derefOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
