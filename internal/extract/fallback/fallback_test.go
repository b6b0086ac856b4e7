package fallback_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/scraper/internal/extract/fallback"
)

func TestTitle(t *testing.T) {
	tests := map[string]struct {
		html     string
		expTitle string
		expErr   bool
	}{
		"Empty HTML should fail.": {
			html:   " \n ",
			expErr: true,
		},

		"The title should be trimmed.": {
			html:     "<html><head><title>\n  My Page </title></head></html>",
			expTitle: "My Page",
		},

		"Only the first title should be used.": {
			html:     "<title>First</title><svg><title>Second</title></svg>",
			expTitle: "First",
		},

		"A page without title should return an empty title.": {
			html:     "<html><body><p>hello</p></body></html>",
			expTitle: "",
		},

		"Unclosed titles should return the available text.": {
			html:     "<title>Broken",
			expTitle: "Broken",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			title, err := fallback.Title(test.html)
			if test.expErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.expTitle, title)
		})
	}
}
