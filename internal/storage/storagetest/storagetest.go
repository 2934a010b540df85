// Package storagetest is a behavioural test suite shared by every
// storage.Storage backend.
package storagetest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

// Factory returns a fresh, empty store. Reopen, when non-nil, returns a
// second handle on the same backing file as the last store built.
type Factory struct {
	New    func(t *testing.T) storage.Storage
	Reopen func(t *testing.T) storage.Storage
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

func ann() types.Student {
	return types.Student{Name: "Ann", Age: 20, Grade: "10", GPA: 3.5}
}

func bo() types.Student {
	return types.Student{Name: "Bo", Age: 21, Grade: "11", GPA: 3.8}
}

// Run executes the whole suite as subtests.
func Run(t *testing.T, f Factory) {
	t.Run("EmptyList", func(t *testing.T) { testEmptyList(t, f) })
	t.Run("SequentialIDs", func(t *testing.T) { testSequentialIDs(t, f) })
	t.Run("CreateIgnoresCallerID", func(t *testing.T) { testCreateIgnoresCallerID(t, f) })
	t.Run("CreateThenGet", func(t *testing.T) { testCreateThenGet(t, f) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, f) })
	t.Run("UpdatePatchesOnlySuppliedFields", func(t *testing.T) { testUpdate(t, f) })
	t.Run("UpdateMissing", func(t *testing.T) { testUpdateMissing(t, f) })
	t.Run("DeleteThenGet", func(t *testing.T) { testDelete(t, f) })
	t.Run("NextIDAfterDelete", func(t *testing.T) { testNextIDAfterDelete(t, f) })
	t.Run("SearchEmptyCriteriaEqualsList", func(t *testing.T) { testSearchAll(t, f) })
	t.Run("SearchGPARange", func(t *testing.T) { testSearchGPARange(t, f) })
	t.Run("SearchCombined", func(t *testing.T) { testSearchCombined(t, f) })
	t.Run("Scenario", func(t *testing.T) { testScenario(t, f) })
	if f.Reopen != nil {
		t.Run("PersistAndReload", func(t *testing.T) { testPersistAndReload(t, f) })
	}
}

func mustCreate(t *testing.T, s storage.Storage, st types.Student) types.Student {
	t.Helper()
	created, err := s.CreateStudent(st)
	require.NoError(t, err)
	return created
}

func testEmptyList(t *testing.T, f Factory) {
	s := f.New(t)

	students, err := s.GetStudents()
	require.NoError(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)
}

func testSequentialIDs(t *testing.T, f Factory) {
	s := f.New(t)

	for want := int64(1); want <= 5; want++ {
		created := mustCreate(t, s, ann())
		assert.Equal(t, want, created.ID)
	}
}

func testCreateIgnoresCallerID(t *testing.T, f Factory) {
	s := f.New(t)

	st := ann()
	st.ID = 500
	created := mustCreate(t, s, st)
	assert.Equal(t, int64(1), created.ID)
}

func testCreateThenGet(t *testing.T, f Factory) {
	s := f.New(t)

	st := bo()
	st.Email = strPtr("bo@school.org")
	st.Notes = strPtr("transfer student")
	created := mustCreate(t, s, st)

	got, ok, err := s.GetStudentByID(created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, created, got)
}

func testGetMissing(t *testing.T, f Factory) {
	s := f.New(t)
	mustCreate(t, s, ann())

	_, ok, err := s.GetStudentByID(42)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testUpdate(t *testing.T, f Factory) {
	s := f.New(t)
	created := mustCreate(t, s, ann())
	other := mustCreate(t, s, bo())

	updated, ok, err := s.UpdateStudentByID(created.ID, types.StudentPatch{
		GPA:   floatPtr(3.9),
		Email: strPtr("ann@school.org"),
	})
	require.NoError(t, err)
	require.True(t, ok)

	want := created
	want.GPA = 3.9
	want.Email = strPtr("ann@school.org")
	assert.Equal(t, want, updated)

	got, ok, err := s.GetStudentByID(created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	untouched, _, err := s.GetStudentByID(other.ID)
	require.NoError(t, err)
	assert.Equal(t, other, untouched)

	cleared, ok, err := s.UpdateStudentByID(created.ID, types.StudentPatch{ClearEmail: true})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, cleared.Email)
	assert.Equal(t, created.ID, cleared.ID)
}

func testUpdateMissing(t *testing.T, f Factory) {
	s := f.New(t)
	created := mustCreate(t, s, ann())

	_, ok, err := s.UpdateStudentByID(created.ID+1, types.StudentPatch{Name: strPtr("Ghost")})
	require.NoError(t, err)
	assert.False(t, ok)

	students, err := s.GetStudents()
	require.NoError(t, err)
	assert.Equal(t, []types.Student{created}, students)
}

func testDelete(t *testing.T, f Factory) {
	s := f.New(t)
	created := mustCreate(t, s, ann())

	removed, err := s.DeleteStudentByID(created.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	_, ok, err := s.GetStudentByID(created.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	removed, err = s.DeleteStudentByID(created.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func testNextIDAfterDelete(t *testing.T, f Factory) {
	s := f.New(t)
	first := mustCreate(t, s, ann())
	mustCreate(t, s, bo())

	_, err := s.DeleteStudentByID(first.ID)
	require.NoError(t, err)

	third := mustCreate(t, s, ann())
	assert.Equal(t, int64(3), third.ID, "ids are max+1, deleted low ids are not refilled")
}

func testSearchAll(t *testing.T, f Factory) {
	s := f.New(t)
	mustCreate(t, s, ann())
	mustCreate(t, s, bo())

	all, err := s.GetStudents()
	require.NoError(t, err)

	found, err := s.SearchStudents(types.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, all, found)
}

func testSearchGPARange(t *testing.T, f Factory) {
	s := f.New(t)
	for _, gpa := range []float64{0.0, 1.5, 2.0, 2.75, 3.0, 3.5, 4.0} {
		st := ann()
		st.GPA = gpa
		mustCreate(t, s, st)
	}

	ranges := [][2]float64{{0, 4}, {2.0, 3.0}, {0, 0}, {3.5, 3.5}, {3.6, 3.9}}
	for _, r := range ranges {
		found, err := s.SearchStudents(types.Criteria{MinGPA: floatPtr(r[0]), MaxGPA: floatPtr(r[1])})
		require.NoError(t, err)

		all, err := s.GetStudents()
		require.NoError(t, err)
		want := make([]types.Student, 0)
		for _, st := range all {
			if st.GPA >= r[0] && st.GPA <= r[1] {
				want = append(want, st)
			}
		}
		assert.Equal(t, want, found, "range %v", r)
	}
}

func testSearchCombined(t *testing.T, f Factory) {
	s := f.New(t)
	a := mustCreate(t, s, ann())
	b := mustCreate(t, s, bo())
	c := mustCreate(t, s, types.Student{Name: "Bob", Age: 15, Grade: "A-Level", GPA: 2.1})

	tests := []struct {
		name     string
		criteria types.Criteria
		want     []types.Student
	}{
		{"keyword", types.Criteria{Keyword: "BO"}, []types.Student{b, c}},
		{"keyword as id", types.Criteria{Keyword: "1"}, []types.Student{a}},
		{"grade", types.Criteria{Grade: "a-level"}, []types.Student{c}},
		{"age range", types.Criteria{MinAge: intPtr(16), MaxAge: intPtr(20)}, []types.Student{a}},
		{"zero lower bound", types.Criteria{MinAge: intPtr(0)}, []types.Student{a, b, c}},
		{"everything", types.Criteria{Keyword: "bo", MinAge: intPtr(21), MinGPA: floatPtr(3.0)}, []types.Student{b}},
		{"nothing", types.Criteria{Grade: "12"}, []types.Student{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := s.SearchStudents(tt.criteria)
			require.NoError(t, err)
			assert.Equal(t, tt.want, found)
		})
	}
}

func testScenario(t *testing.T, f Factory) {
	s := f.New(t)

	first := mustCreate(t, s, ann())
	assert.Equal(t, int64(1), first.ID)

	second := mustCreate(t, s, bo())
	assert.Equal(t, int64(2), second.ID)

	removed, err := s.DeleteStudentByID(1)
	require.NoError(t, err)
	assert.True(t, removed)

	students, err := s.GetStudents()
	require.NoError(t, err)
	assert.Equal(t, []types.Student{second}, students)

	found, err := s.SearchStudents(types.Criteria{Keyword: "bo"})
	require.NoError(t, err)
	assert.Equal(t, []types.Student{second}, found)
}

func testPersistAndReload(t *testing.T, f Factory) {
	s := f.New(t)
	mustCreate(t, s, ann())
	st := bo()
	st.Notes = strPtr("likes chess")
	mustCreate(t, s, st)

	before, err := s.GetStudents()
	require.NoError(t, err)

	reopened := f.Reopen(t)
	after, err := reopened.GetStudents()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
