package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		sName   string
		age     int
		grade   string
		email   string
		gpa     float64
		wantOK  bool
		wantMsg string
	}{
		{"valid without email", "Ann", 20, "10", "", 3.5, true, ""},
		{"valid with email", "Ann", 20, "10", "ann@school.org", 3.5, true, ""},
		{"single character name", "A", 20, "10", "", 3.5, false, MsgName},
		{"name padded to one character", "  A  ", 20, "10", "", 3.5, false, MsgName},
		{"blank name", "   ", 20, "10", "", 3.5, false, MsgName},
		{"two rune name", "Æb", 20, "10", "", 3.5, true, ""},
		{"age below range", "Ann", 2, "10", "", 3.5, false, MsgAge},
		{"age lower bound", "Ann", 3, "10", "", 3.5, true, ""},
		{"age upper bound", "Ann", 120, "10", "", 3.5, true, ""},
		{"age above range", "Ann", 121, "10", "", 3.5, false, MsgAge},
		{"blank grade", "Ann", 20, "  ", "", 3.5, false, MsgGrade},
		{"email without at", "Ann", 20, "10", "bad-email", 3.5, false, MsgEmail},
		{"gpa lower bound", "Ann", 20, "10", "", 0.0, true, ""},
		{"gpa upper bound", "Ann", 20, "10", "", 4.0, true, ""},
		{"gpa negative", "Ann", 20, "10", "", -0.1, false, MsgGPA},
		{"gpa above range", "Ann", 20, "10", "", 4.01, false, MsgGPA},
		{"gpa NaN", "Ann", 20, "10", "", math.NaN(), false, MsgGPA},
		{"first failure wins", "A", 1, "", "x", 9, false, MsgName},
		{"age before grade", "Ann", 1, "", "", 3.5, false, MsgAge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, msg := Validate(tt.sName, tt.age, tt.grade, tt.email, tt.gpa)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestValidateStudent(t *testing.T) {
	email := "bo@school.org"
	ok, msg := ValidateStudent(Student{Name: "Bo", Age: 21, Grade: "11", Email: &email, GPA: 3.8})
	assert.True(t, ok)
	assert.Empty(t, msg)

	bad := "nope"
	ok, msg = ValidateStudent(Student{Name: "Bo", Age: 21, Grade: "11", Email: &bad, GPA: 3.8})
	assert.False(t, ok)
	assert.Equal(t, MsgEmail, msg)
}

func TestParseID(t *testing.T) {
	id, err := ParseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, in := range []string{"", "abc", "0", "-3", "1.5"} {
		_, err := ParseID(in)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "input %q", in)
		assert.Equal(t, MsgID, verr.Message)
	}
}

func TestParseAgeAndGPA(t *testing.T) {
	age, err := ParseAge("18")
	require.NoError(t, err)
	assert.Equal(t, 18, age)

	_, err = ParseAge("eighteen")
	assert.EqualError(t, err, MsgAge)

	gpa, err := ParseGPA("3.25")
	require.NoError(t, err)
	assert.InDelta(t, 3.25, gpa, 1e-9)

	for _, in := range []string{"", "high", "NaN", "Inf"} {
		_, err := ParseGPA(in)
		assert.EqualError(t, err, MsgGPA, "input %q", in)
	}
}
