package roster

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	apperrors "github.com/kamusis/roster-cli/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, text string) *Roster {
	t.Helper()
	r, err := Parse(strings.NewReader(text))
	require.NoError(t, err)
	return r
}

func TestParse_TrimsAndDropsEmptyNames(t *testing.T) {
	r := parse(t, "Professor:  a ,b,, c ,\n")

	assert.Equal(t, []string{"Professor"}, r.Titles())
	assert.Equal(t, []string{"a", "b", "c"}, r.Names("Professor"))
}

func TestParse_SplitsOnFirstSeparatorOnly(t *testing.T) {
	r := parse(t, "Professor: Jane Smith, Note: see below\n")

	assert.Equal(t, []string{"Jane Smith", "Note: see below"}, r.Names("Professor"))
}

func TestParse_SkipsMalformedAndBlankLines(t *testing.T) {
	text := "\ufeffProfessor: Jane Smith\n\n   \nFaculty of Engineering\nAssociate Professor: Bob Stone\n"
	r := parse(t, text)

	want := map[string][]string{
		"Professor":           {"Jane Smith"},
		"Associate Professor": {"Bob Stone"},
	}
	got := map[string][]string{}
	for _, title := range r.Titles() {
		got[title] = r.Names(title)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("roster mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, r.Skipped())
	assert.Equal(t, []string{"Professor", "Associate Professor"}, r.Titles())
}

func TestParse_RepeatedTitleAppends(t *testing.T) {
	r := parse(t, "Professor: A\nLecturer: B\nProfessor: C\n")

	assert.Equal(t, []string{"Professor", "Lecturer"}, r.Titles())
	assert.Equal(t, []string{"A", "C"}, r.Names("Professor"))
}

func TestParse_EmptyTitleListIsKept(t *testing.T) {
	r := parse(t, "Professor:\n")

	assert.Equal(t, []string{"Professor"}, r.Titles())
	assert.Empty(t, r.Names("Professor"))
	assert.True(t, r.Empty())
}

func TestParse_ComposesDecomposedNames(t *testing.T) {
	r := parse(t, "Professor: Jose\u0301 Nu\u0301n\u0303ez\n")

	assert.Equal(t, []string{"Jos\u00e9 N\u00fa\u00f1ez"}, r.Names("Professor"))
}

func TestParse_EmptyInput(t *testing.T) {
	r := parse(t, "")

	assert.True(t, r.Empty())
	assert.Empty(t, r.Titles())
}

func TestParseFile_NotFound(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.txt"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInputNotFound))
}

func TestParseFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "2023.txt")
	require.NoError(t, os.WriteFile(p, []byte("Professor: Jane Smith, Bob Stone\n"), 0o644))

	r, err := ParseFile(p)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"Bob Stone", "Jane Smith"}, r.AllNames())
}

func TestNameIndex_SingleAndMultiple(t *testing.T) {
	r := New()
	r.Add("Professor", "Jane Smith", "Bob Stone")
	r.Add("Department Chair", "Jane Smith")
	r.Add("Professor", "Bob Stone")

	x := NewNameIndex(r)
	assert.Equal(t, []string{"Bob Stone", "Jane Smith"}, x.Names())

	a, ok := x.Lookup("Bob Stone")
	require.True(t, ok)
	assert.Equal(t, SingleTitle("Professor"), a, "repeat under the same title stays single")

	a, ok = x.Lookup("Jane Smith")
	require.True(t, ok)
	assert.Equal(t, MultipleTitles{"Professor", "Department Chair"}, a)
	assert.Equal(t, []string{"Professor", "Department Chair"}, a.Titles())

	_, ok = x.Lookup("Nobody")
	assert.False(t, ok)
}

func TestFromMap_SortsTitles(t *testing.T) {
	r := FromMap(map[string][]string{"Professor": {"A"}, "Lecturer": {"B"}})

	assert.Equal(t, []string{"Lecturer", "Professor"}, r.Titles())
}
