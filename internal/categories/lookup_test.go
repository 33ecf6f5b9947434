package categories

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_ExactMatch(t *testing.T) {
	l, err := NewLookup(Cause, []Group{
		{Name: "Reckless driving", Values: []string{"Speeding"}},
		{Name: "Driver distraction", Values: []string{"Distracted"}},
	})
	require.NoError(t, err)

	assert.Equal(t, Category("Reckless driving"), l.Classify("Speeding"))
	assert.Equal(t, Category("Driver distraction"), l.Classify("Distracted"))
}

func TestClassify_FallbackIsTotal(t *testing.T) {
	l, err := NewLookup(Weather, []Group{{Name: "Clear weather", Values: []string{"CLEAR"}}})
	require.NoError(t, err)

	for _, raw := range []string{"Unknown123", "", "clear", " CLEAR", "CLEAR ", "NaN"} {
		got := l.Classify(raw)
		assert.Equal(t, Other, got, "raw=%q", raw)
		assert.True(t, got.IsOther())
		assert.NotEmpty(t, got.String())
	}
}

func TestClassify_Deterministic(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)

	raws := []string{"TEXTING", "WEATHER", "UNABLE TO DETERMINE", "FOLLOWING TOO CLOSELY"}
	first := make([]Category, len(raws))
	for i, r := range raws {
		first[i] = set.Cause.Classify(r)
	}
	for i := len(raws) - 1; i >= 0; i-- {
		assert.Equal(t, first[i], set.Cause.Classify(raws[i]))
	}
}

func TestNewLookup_RejectsOverlap(t *testing.T) {
	_, err := NewLookup(Cause, []Group{
		{Name: "A", Values: []string{"X"}},
		{Name: "B", Values: []string{"Y", "X"}},
	})
	require.ErrorIs(t, err, ErrOverlap)
}

func TestNewLookup_RejectsReservedAndDuplicateNames(t *testing.T) {
	_, err := NewLookup(Cause, []Group{{Name: "Other", Values: []string{"X"}}})
	require.ErrorIs(t, err, ErrReservedCategory)

	_, err = NewLookup(Cause, []Group{{Name: "A"}, {Name: "A"}})
	require.ErrorIs(t, err, ErrDuplicateName)

	_, err = NewLookup(Cause, []Group{{Name: ""}})
	require.ErrorIs(t, err, ErrEmptyCategory)
}

func TestNewLookup_RepeatedValueInSameGroup(t *testing.T) {
	l, err := NewLookup(Cause, []Group{{Name: "A", Values: []string{"X", "X"}}})
	require.NoError(t, err)
	assert.Equal(t, Category("A"), l.Classify("X"))
}

func TestOrderAndRank(t *testing.T) {
	l, err := NewLookup(Trafficway, []Group{{Name: "B"}, {Name: "A"}})
	require.NoError(t, err)

	assert.Equal(t, []Category{"B", "A"}, l.Categories())
	assert.Equal(t, []Category{"B", "A", Other}, l.Ordered())
	assert.Equal(t, 0, l.Rank("B"))
	assert.Equal(t, 1, l.Rank("A"))
	assert.Equal(t, 2, l.Rank(Other))
	assert.Equal(t, 2, l.Rank("missing"))
}

func TestDefaultTables(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)

	assert.Equal(t, Category("Reckless driving"), set.Cause.Classify("EXCEEDING AUTHORIZED SPEED LIMIT"))
	assert.Equal(t, Category("Driver distraction"), set.Cause.Classify("TEXTING"))
	assert.Equal(t, Other, set.Cause.Classify("UNABLE TO DETERMINE"))
	assert.Equal(t, Category("Rain / Snow"), set.Weather.Classify("SNOW"))
	assert.Equal(t, Other, set.Weather.Classify("UNKNOWN"))
	assert.Equal(t, Category("Intersections and divided roads"), set.Trafficway.Classify("FOUR WAY"))
	assert.Equal(t, Category("Special or unknown roads"), set.Trafficway.Classify("UNKNOWN"))

	assert.Len(t, set.Cause.Categories(), 7)
	assert.Len(t, set.Weather.Categories(), 4)
	assert.Len(t, set.Trafficway.Categories(), 3)

	again, err := Default()
	require.NoError(t, err)
	assert.Same(t, set, again)
}

func TestLoad(t *testing.T) {
	doc := `
cause:
  - name: Reckless driving
    values: [Speeding]
weather:
  - name: Clear weather
    values: [CLEAR]
trafficway: []
`
	set, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, Category("Reckless driving"), set.Lookup(Cause).Classify("Speeding"))
	assert.Equal(t, Other, set.Lookup(Trafficway).Classify("NOT DIVIDED"))
	assert.Nil(t, set.Lookup("nope"))
}

func TestLoad_UnknownField(t *testing.T) {
	_, err := Load(strings.NewReader("causes: []\n"))
	require.Error(t, err)
}

func TestLoad_Overlap(t *testing.T) {
	doc := `
weather:
  - name: Wet
    values: [RAIN]
  - name: Cold
    values: [RAIN]
`
	_, err := Load(strings.NewReader(doc))
	require.ErrorIs(t, err, ErrOverlap)
}

func TestLoadFile_EmptyPathUsesDefaults(t *testing.T) {
	set, err := LoadFile("")
	require.NoError(t, err)
	def, err := Default()
	require.NoError(t, err)
	assert.Same(t, def, set)

	_, err = LoadFile("/nonexistent/categories.yaml")
	require.Error(t, err)
}
