package anomaly

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect_NearButNotExact(t *testing.T) {
	names1 := []string{"John Smith", "Bob Stone"}
	names2 := []string{"Jon Smyth", "Bob Stone", "Alice Wong"}

	r := Detect(names1, names2, DefaultCutoff, DefaultLimit)

	assert.Equal(t, Report{{Name: "John Smith", Near: []string{"Jon Smyth"}}}, r)
	assert.Equal(t, map[string]struct{}{"John Smith": {}, "Jon Smyth": {}}, r.Names())
}

func TestDetect_IdenticalNeverCounts(t *testing.T) {
	r := Detect([]string{"Jane Smith"}, []string{"Jane Smith"}, DefaultCutoff, DefaultLimit)

	assert.Empty(t, r)
	assert.Empty(t, r.Names())
}

func TestDetect_LimitKeepsBestScores(t *testing.T) {
	names2 := []string{"Jane Smyth", "Jane Smithe", "Jan Smith", "Jane Smit", "Jane Smith"}

	r := Detect([]string{"Jane Smith"}, names2, DefaultCutoff, 3)

	if assert.Len(t, r, 1) {
		// Jan Smith and Jane Smit tie; sorted order breaks it. Jane Smyth is
		// fourth and drops off.
		assert.Equal(t, []string{"Jane Smithe", "Jan Smith", "Jane Smit"}, r[0].Near)
	}
}

func TestDetect_Empty(t *testing.T) {
	assert.Empty(t, Detect(nil, []string{"A"}, DefaultCutoff, DefaultLimit))
	assert.Empty(t, Detect([]string{"A"}, nil, DefaultCutoff, DefaultLimit))
}
