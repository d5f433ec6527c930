// Package opml loads the feed list from an OPML subscription file.
// Only the xmlUrl attribute of leaf outline elements matters here; the
// rest of the outline tree is folder structure.
package opml

import (
	"encoding/xml"
	"fmt"
	"os"

	"feed-audit/internal/domain/entity"
)

type document struct {
	XMLName xml.Name `xml:"opml"`
	Body    body     `xml:"body"`
}

type body struct {
	Outlines []outline `xml:"outline"`
}

type outline struct {
	Title    string    `xml:"title,attr"`
	Text     string    `xml:"text,attr"`
	XMLURL   string    `xml:"xmlUrl,attr"`
	Outlines []outline `xml:"outline"`
}

// Parse extracts feeds from OPML data. Outlines are walked depth-first
// in document order, so the returned slice preserves the file's order.
func Parse(data []byte) ([]entity.Feed, error) {
	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse OPML: %w", err)
	}

	var feeds []entity.Feed
	collect(&feeds, doc.Body.Outlines)
	return feeds, nil
}

// LoadFile reads and parses an OPML file. Unreadable or malformed input
// is a fatal configuration fault for the caller: no probing may occur.
func LoadFile(path string) ([]entity.Feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read OPML file: %w", err)
	}
	return Parse(data)
}

func collect(feeds *[]entity.Feed, outlines []outline) {
	for _, o := range outlines {
		if o.XMLURL != "" {
			title := o.Title
			if title == "" {
				title = o.Text
			}
			*feeds = append(*feeds, entity.Feed{URL: o.XMLURL, Title: title})
		}
		if len(o.Outlines) > 0 {
			collect(feeds, o.Outlines)
		}
	}
}
