package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/scraper/internal/model"
)

func TestValidateURL(t *testing.T) {
	tests := map[string]struct {
		url    string
		expErr bool
	}{
		"An https URL should be valid.":          {url: "https://example.com/a?b=c"},
		"An http URL with port should be valid.": {url: "http://localhost:8080"},
		"An empty URL should fail.":              {url: "", expErr: true},
		"A whitespace URL should fail.":          {url: "   ", expErr: true},
		"A relative URL should fail.":            {url: "/path/only", expErr: true},
		"A non http scheme should fail.":         {url: "ftp://example.com", expErr: true},
		"A URL without host should fail.":        {url: "https://", expErr: true},
		"A malformed URL should fail.":           {url: "http://[::1", expErr: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := model.ValidateURL(test.url)

			if test.expErr {
				assert.True(t, errors.Is(err, model.ErrNotValid))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
