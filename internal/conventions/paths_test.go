package conventions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/scraper/internal/conventions"
)

func TestPaths(t *testing.T) {
	tests := map[string]struct {
		path    func(string) string
		expPath string
	}{
		"Database path.":              {path: conventions.DBPath, expPath: "/data/scraper.db"},
		"Config path.":                {path: conventions.ConfigPath, expPath: "/data/config.yaml"},
		"Screenshots path.":           {path: conventions.ScreenshotsPath, expPath: "/data/screenshots"},
		"Temporary screenshots path.": {path: conventions.TmpScreenshotsPath, expPath: "/data/tmp"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expPath, test.path("/data"))
		})
	}
}
