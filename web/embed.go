// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package web provides the embedded public site assets and the markdown
// sources of the informational pages.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var staticFiles embed.FS

// PagesFS holds pages/*.md, one file per informational page.
//
//go:embed pages/*.md
var PagesFS embed.FS

// Static returns the static/ tree rooted at its top, ready to be served
// under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err) // the directory is embedded at build time
	}
	return sub
}
