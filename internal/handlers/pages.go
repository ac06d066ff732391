// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"jowam/internal/markdown"
	"jowam/internal/render"
)

// LoadPages converts every pages/*.md file in fsys into a static view
// keyed by file name without extension. The first "# " line is the title.
func LoadPages(fsys fs.FS) (map[string]render.StaticView, error) {
	files, err := fs.Glob(fsys, "pages/*.md")
	if err != nil {
		return nil, fmt.Errorf("glob pages: %w", err)
	}

	pages := make(map[string]render.StaticView, len(files))
	for _, file := range files {
		src, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		name := strings.TrimSuffix(path.Base(file), ".md")

		title := name
		body := strings.ReplaceAll(string(src), "\r\n", "\n")
		if first, rest, _ := strings.Cut(body, "\n"); strings.HasPrefix(first, "# ") {
			title = strings.TrimSpace(first[2:])
			body = rest
		}

		html, err := markdown.ToHTML(body)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", file, err)
		}
		pages[name] = render.StaticView{Title: title, Body: template.HTML(html)}
	}
	return pages, nil
}
