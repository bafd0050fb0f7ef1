// Package ingest prepares raw page content for the memory engine. Wiki
// revisions arrive as HTML; extraction prompts want plain text.
package ingest

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagPattern        = regexp.MustCompile(`<[a-zA-Z!/][^>]*>`)
	whitespacePattern = regexp.MustCompile(`[ \t]+`)
	blankLinePattern  = regexp.MustCompile(`\n{3,}`)
)

// Text returns the visible text of an HTML document with page chrome
// (scripts, styles, navigation) removed. Input without markup passes
// through unchanged apart from whitespace normalization.
func Text(input string) string {
	if !tagPattern.MatchString(input) {
		return collapse(input)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return collapse(input)
	}

	doc.Find("script, style, noscript, nav, header, footer, aside").Remove()

	// Block-level elements become line breaks so headings and paragraphs
	// stay separated in the flattened text.
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6, br, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	body := doc.Find("body")
	if body.Length() == 0 {
		return collapse(doc.Text())
	}
	return collapse(body.Text())
}

func collapse(text string) string {
	text = whitespacePattern.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = blankLinePattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
