package crawler

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// Metadata holds the raw extraction candidates for one page, before
// trimming. Title and description fall through a fixed priority order;
// the thumbnail comes from og:image only.
type Metadata struct {
	Title        string
	Description  string
	ThumbnailURL string
}

// ExtractMetadata parses markup and pulls title, description, and
// thumbnail candidates. Priority: og:title then <title>; og:description
// then the description meta tag.
func ExtractMetadata(body []byte) (Metadata, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Metadata{}, fmt.Errorf("parse markup: %w", err)
	}

	title := doc.Find(`meta[property="og:title"]`).First().AttrOr("content", "")
	if title == "" {
		title = doc.Find("title").First().Text()
	}

	description := doc.Find(`meta[property="og:description"]`).First().AttrOr("content", "")
	if description == "" {
		description = doc.Find(`meta[name="description"]`).First().AttrOr("content", "")
	}

	thumbnail := doc.Find(`meta[property="og:image"]`).First().AttrOr("content", "")

	return Metadata{
		Title:        title,
		Description:  description,
		ThumbnailURL: thumbnail,
	}, nil
}
