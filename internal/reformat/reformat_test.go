package reformat

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/kamusis/roster-cli/internal/errors"
	"github.com/kamusis/roster-cli/internal/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func format(t *testing.T, style string, opts Options, in string) string {
	t.Helper()
	f, err := Lookup(style, opts)
	require.NoError(t, err)
	assert.Equal(t, style, f.Name())
	var out bytes.Buffer
	require.NoError(t, f.Format(strings.NewReader(in), &out))
	return out.String()
}

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{"filter", "merge", "ranked"}, Names())

	_, err := Lookup("pdf", Options{})
	assert.True(t, errors.Is(err, apperrors.ErrUnsupportedFormat))
}

func TestMerge_JoinsContinuationLines(t *testing.T) {
	in := `SMITH, Jane, Professor
Mechanical Engineering

jsmith@example.edu
McADOO, Bob, Associate Professor
Civil Engineering
Assistant Professor, Electrical
O'CONNOR, Ann, Lecturer
`
	want := `SMITH, Jane, Professor Mechanical Engineering jsmith@example.edu
McADOO, Bob, Associate Professor Civil Engineering Assistant Professor, Electrical
O'CONNOR, Ann, Lecturer
`
	assert.Equal(t, want, format(t, "merge", Options{}, in))
}

func TestMerge_LowercaseSurnameIsContinuation(t *testing.T) {
	in := "KING, Carol, Dean\nSmith, Jane, Professor\n"

	assert.Equal(t, "KING, Carol, Dean Smith, Jane, Professor\n", format(t, "merge", Options{}, in))
}

func TestMerge_SplitsSingleLineDump(t *testing.T) {
	pad := strings.Repeat("robotics ", 20)
	in := "SMITH, Jane, Professor " + pad + "JONES, Bob, Lecturer " + pad + "KING, Carol, Dean " + pad

	got := strings.Split(strings.TrimSpace(format(t, "merge", Options{}, in)), "\n")

	require.Len(t, got, 3)
	assert.True(t, strings.HasPrefix(got[0], "SMITH, Jane, Professor robotics"))
	assert.True(t, strings.HasPrefix(got[1], "JONES, Bob, Lecturer robotics"))
	assert.True(t, strings.HasPrefix(got[2], "KING, Carol, Dean robotics"))
}

func TestMerge_Empty(t *testing.T) {
	assert.Equal(t, "", format(t, "merge", Options{}, "\n\n"))
}

const rankedInput = `Smith, Jane, Professor, Mechanical Engineering
Stone, Bob, Assistant Professor of Physics, Physics
King, Carol, Associate Professor, Engineering
Lee, David, Lecturer, Engineering
Wong, Alice, Professor and Chair, Engineering
bad line
`

func TestRanked(t *testing.T) {
	got := format(t, "ranked", Options{}, rankedInput)

	want := `Professor: Jane Smith, Alice Wong
Associate Professor: Carol King
Assistant Professor: Bob Stone
`
	assert.Equal(t, want, got)

	r, err := roster.Parse(strings.NewReader(got))
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane Smith", "Alice Wong"}, r.Names("Professor"))
}

func TestRanked_Keep(t *testing.T) {
	got := format(t, "ranked", Options{Keep: []string{"PHYSICS"}}, rankedInput)

	assert.Equal(t, "Assistant Professor: Bob Stone\n", got)
}

func TestFilter(t *testing.T) {
	in := "Smith, Jane, Mechanical Engineering\nLee, David, History\n\nWu, Dan, Computer Science  \n"

	got := format(t, "filter", Options{Keep: []string{"engineering", "computer science"}}, in)

	assert.Equal(t, "Smith, Jane, Mechanical Engineering\nWu, Dan, Computer Science\n", got)
}

func TestFilter_NeedsKeywords(t *testing.T) {
	f, err := Lookup("filter", Options{})
	require.NoError(t, err)

	err = f.Format(strings.NewReader("x"), &bytes.Buffer{})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}
