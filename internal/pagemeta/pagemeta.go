// Package pagemeta reads Open Graph metadata from watch pages. It is used as
// a fallback source when the API omits a title or description.
package pagemeta

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Meta holds the Open Graph fields of a page. Missing tags leave fields empty.
type Meta struct {
	Title       string
	Description string
}

// Parse extracts Open Graph metadata from an HTML document.
func Parse(body []byte) (Meta, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Meta{}, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Meta{}, fmt.Errorf("parsing page: %w", err)
	}
	return FromDocument(doc), nil
}

// FromDocument extracts Open Graph metadata from a parsed document.
func FromDocument(doc *goquery.Document) Meta {
	return Meta{
		Title:       property(doc, "og:title"),
		Description: property(doc, "og:description"),
	}
}

// property returns the content of the first non-empty meta tag whose
// property (or name, as some pages use) equals prop.
func property(doc *goquery.Document, prop string) string {
	var value string
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		key, ok := s.Attr("property")
		if !ok {
			key, ok = s.Attr("name")
		}
		if !ok || !strings.EqualFold(strings.TrimSpace(key), prop) {
			return true
		}
		content, _ := s.Attr("content")
		if content = strings.TrimSpace(content); content != "" {
			value = content
			return false
		}
		return true
	})
	return value
}
