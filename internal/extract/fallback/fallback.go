// Package fallback has the minimal parsing used when the content extraction
// is not available or fails.
package fallback

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Title returns the trimmed text of the first title element, empty when the
// page has no title.
func Title(rawHTML string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", fmt.Errorf("HTML content is empty")
	}

	z := html.NewTokenizer(strings.NewReader(rawHTML))
	inTitle := false
	var title strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return "", fmt.Errorf("tokenizing HTML: %w", err)
			}
			return strings.TrimSpace(title.String()), nil
		case html.StartTagToken:
			name, _ := z.TagName()
			if string(name) == "title" {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				title.Write(z.Text())
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if inTitle && string(name) == "title" {
				return strings.TrimSpace(title.String()), nil
			}
		}
	}
}
