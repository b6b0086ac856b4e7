package printer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/scraper/internal/printer"
)

func TestTruncate(t *testing.T) {
	tests := map[string]struct {
		text     string
		max      int
		expected string
	}{
		"short text should be kept":           {text: "hello", max: 10, expected: "hello"},
		"long text should be cut with a mark": {text: "hello world", max: 8, expected: "hello..."},
		"multibyte runes should not be split": {text: "ñandú ñandú", max: 7, expected: "ñand..."},
		"new lines should be flattened":       {text: "a\n  b\tc", max: 0, expected: "a b c"},
		"a tiny max should cut without mark":  {text: "hello", max: 2, expected: "he"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expected, printer.Truncate(test.text, test.max))
		})
	}
}
