// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"html"
	"html/template"
	"math"
	"regexp"
	"strings"
)

var (
	blankLines = regexp.MustCompile(`\n[ \t]*\n`)
	strong     = regexp.MustCompile(`\*\*(.+?)\*\*`)
	emphasis   = regexp.MustCompile(`\*(.+?)\*`)
)

// WordsPerMinute is the reading speed used for read-time estimates.
const WordsPerMinute = 200

// Article renders the article body subset: "## " and "### " headings,
// **bold**, *italic* and blank-line separated paragraphs. The source is
// HTML-escaped before any markup is added, so authors cannot inject tags.
func Article(content string) template.HTML {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var b strings.Builder
	for _, block := range blankLines.Split(content, -1) {
		var para []string
		flush := func() {
			if len(para) > 0 {
				b.WriteString("<p>")
				b.WriteString(strings.Join(para, "\n"))
				b.WriteString("</p>\n")
				para = nil
			}
		}

		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimRight(line, " \t")
			switch {
			case strings.HasPrefix(line, "### "):
				flush()
				b.WriteString("<h3>" + inline(strings.TrimSpace(line[4:])) + "</h3>\n")
			case strings.HasPrefix(line, "## "):
				flush()
				b.WriteString("<h2>" + inline(strings.TrimSpace(line[3:])) + "</h2>\n")
			case strings.TrimSpace(line) == "":
				// stray whitespace-only line inside a block
			default:
				para = append(para, inline(line))
			}
		}
		flush()
	}

	return template.HTML(b.String())
}

// inline escapes a single line and applies bold then italic.
func inline(s string) string {
	s = html.EscapeString(s)
	s = strong.ReplaceAllString(s, "<strong>$1</strong>")
	return emphasis.ReplaceAllString(s, "<em>$1</em>")
}

// ReadTime estimates reading minutes from the body, falling back to the
// excerpt when the body is not loaded (summary listings). Never below one.
func ReadTime(content, excerpt string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		words = len(strings.Fields(excerpt))
	}
	minutes := int(math.Ceil(float64(words) / WordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}
