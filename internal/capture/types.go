package capture

// AssetInventory counts the asset-bearing elements found in a page's DOM.
// It is a coarse structural signature of page complexity, passed to the
// reconstruction prompt as a hint.
type AssetInventory struct {
	Images      int `json:"images"`
	Stylesheets int `json:"stylesheets"`
	Scripts     int `json:"scripts"`
	Links       int `json:"links"`
}

// Capture is one immutable snapshot of a scraped page. It is created
// atomically on a successful page load and never mutated afterwards.
type Capture struct {
	// ID is the opaque handle used to retrieve this capture later.
	ID string `json:"id"`

	// SourceURL is the URL the page settled on after redirects.
	SourceURL string `json:"url"`

	// Title is the document title. Empty when the page has none.
	Title string `json:"title"`

	// RawHTML is the serialized DOM at capture time.
	RawHTML string `json:"-"`

	// Assets counts images, stylesheets, scripts and anchors in RawHTML.
	Assets AssetInventory `json:"assets_count"`

	// ScreenshotRef is the public URL path of the persisted full-page
	// screenshot. Written once by the engine, never rewritten.
	ScreenshotRef string `json:"screenshot_url,omitempty"`
}
