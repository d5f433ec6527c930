package entity

// Feed identifies one subscribed feed taken from an OPML outline tree.
// The URL is opaque to the engine and never mutated after loading.
type Feed struct {
	URL   string
	Title string
}
