package model

// SnapshotOptions are the options used when rendering a page.
type SnapshotOptions struct {
	CaptureScreenshot bool
}

// Snapshot is a rendered page.
type Snapshot struct {
	HTML string
	// ScreenshotRef references the screenshot image, empty if none was captured.
	ScreenshotRef string
	// Temporary is true when the screenshot only exists for the current run
	// and must be removed once the result is stored.
	Temporary bool
}

// Rect is an image region in pixels. The zero value means the full image.
type Rect struct {
	X0, Y0, X1, Y1 int
}

// IsFull returns true if the region covers the full image.
func (r Rect) IsFull() bool { return r == Rect{} }

// Entity is a named entity found in a text.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Link is a hyperlink found in a page.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// Extraction is the structured content extracted from a page.
type Extraction struct {
	RawTitle             string
	CleanedTitle         string
	MainTextEntities     []Entity
	RegionalTextEntities [][]Entity
	Links                []Link
	Markdown             string
	WordCount            int
}
