package opml_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"feed-audit/internal/domain/entity"
	"feed-audit/internal/opml"
)

func TestParse_FlatOutlines(t *testing.T) {
	data := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<opml version="2.0">
  <head><title>Subscriptions</title></head>
  <body>
    <outline title="Feed A" type="rss" xmlUrl="https://a.example/feed.xml"/>
    <outline title="Feed B" type="rss" xmlUrl="https://b.example/rss"/>
  </body>
</opml>`)

	feeds, err := opml.Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []entity.Feed{
		{URL: "https://a.example/feed.xml", Title: "Feed A"},
		{URL: "https://b.example/rss", Title: "Feed B"},
	}
	if diff := cmp.Diff(want, feeds); diff != "" {
		t.Errorf("feeds mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_NestedOutlines(t *testing.T) {
	// Folders carry no xmlUrl; only leaf outlines yield feeds.
	data := []byte(`<opml version="2.0">
  <body>
    <outline text="Tech">
      <outline text="Go Blog" xmlUrl="https://go.example/feed"/>
      <outline text="Deeper">
        <outline text="Inner" xmlUrl="https://inner.example/atom.xml"/>
      </outline>
    </outline>
    <outline text="News" xmlUrl="https://news.example/rss"/>
  </body>
</opml>`)

	feeds, err := opml.Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []entity.Feed{
		{URL: "https://go.example/feed", Title: "Go Blog"},
		{URL: "https://inner.example/atom.xml", Title: "Inner"},
		{URL: "https://news.example/rss", Title: "News"},
	}
	if diff := cmp.Diff(want, feeds); diff != "" {
		t.Errorf("feeds mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_TitleFallsBackToText(t *testing.T) {
	data := []byte(`<opml><body>
    <outline text="Only Text" xmlUrl="https://t.example/feed"/>
  </body></opml>`)

	feeds, err := opml.Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(feeds) != 1 {
		t.Fatalf("feeds length = %d, want 1", len(feeds))
	}
	if feeds[0].Title != "Only Text" {
		t.Errorf("Title = %q, want %q", feeds[0].Title, "Only Text")
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := opml.Parse([]byte("<opml><body>")); err == nil {
		t.Fatal("Parse() expected error for truncated document")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subs.opml")
	data := `<opml><body><outline text="F" xmlUrl="https://f.example/feed"/></body></opml>`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	feeds, err := opml.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(feeds) != 1 || feeds[0].URL != "https://f.example/feed" {
		t.Errorf("feeds = %+v, want one feed for https://f.example/feed", feeds)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := opml.LoadFile(filepath.Join(t.TempDir(), "absent.opml")); err == nil {
		t.Fatal("LoadFile() expected error for missing file")
	}
}
