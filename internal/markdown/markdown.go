// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown turns text into HTML. Article bodies go through the
// small pattern-based Article renderer; the informational pages shipped
// with the binary use the full goldmark pipeline in ToHTML.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// pages is the goldmark instance for static pages, reused across calls.
var pages = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,         // tables for the grade charts, autolinks
		extension.Typographer, // smart quotes and dashes
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(), // anchors for the privacy policy sections
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(), // page sources are compiled in, never user supplied
	),
)

// ToHTML converts a trusted Markdown document into HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := pages.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
