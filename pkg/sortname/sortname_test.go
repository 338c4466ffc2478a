package sortname

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"The at beginning", "The Hobbit", "Hobbit, The"},
		{"A at beginning", "A Tale of Two Cities", "Tale of Two Cities, A"},
		{"An at beginning", "An American Tragedy", "American Tragedy, An"},
		{"lowercase article", "the hobbit", "hobbit, the"},
		{"no article", "Lord of the Rings", "Lord of the Rings"},
		{"article in middle only", "Return of the King", "Return of the King"},
		{"article prefix of word", "Theory of Everything", "Theory of Everything"},
		{"article alone", "The", "The"},
		{"empty string", "", ""},
		{"surrounding whitespace", "  The Stand  ", "Stand, The"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ForTitle(tt.input))
		})
	}
}

func TestNaturalLess(t *testing.T) {
	t.Parallel()

	t.Run("numbers compare by value and text ignores case", func(t *testing.T) {
		names := []string{"Page10", "page2", "PAGE1"}
		sort.SliceStable(names, func(i, j int) bool { return NaturalLess(names[i], names[j]) })
		assert.Equal(t, []string{"PAGE1", "page2", "Page10"}, names)
	})

	t.Run("nested paths", func(t *testing.T) {
		names := []string{"ch1/page10.jpg", "ch1/page2.jpg", "ch2/page1.jpg"}
		sort.SliceStable(names, func(i, j int) bool { return NaturalLess(names[i], names[j]) })
		assert.Equal(t, []string{"ch1/page2.jpg", "ch1/page10.jpg", "ch2/page1.jpg"}, names)
	})

	t.Run("leading digits sort before text", func(t *testing.T) {
		assert.True(t, NaturalLess("01.jpg", "cover.jpg"))
		assert.False(t, NaturalLess("cover.jpg", "01.jpg"))
	})

	t.Run("long digit runs", func(t *testing.T) {
		assert.True(t, NaturalLess("p99999999999999999999", "p100000000000000000000"))
	})

	t.Run("zero padding is equal", func(t *testing.T) {
		assert.Equal(t, 0, NaturalCompare("page01", "page1"))
	})

	t.Run("prefix sorts first", func(t *testing.T) {
		assert.True(t, NaturalLess("page", "page1"))
	})
}
