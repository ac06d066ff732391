// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging inspects uploaded cover images. It decodes only the
// image header, so a corrupt or truncated upload is caught before it
// reaches object storage, and reports the dimensions for the admin UI.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder

	_ "golang.org/x/image/webp" // register decoder
)

// Cover limits. Covers are shown at 16:9 up to 1200px wide, so anything
// much smaller looks blurry and anything huge is wasted bandwidth.
const (
	MinCoverWidth  = 320
	MinCoverHeight = 180
	MaxCoverSide   = 8000
)

// ErrUndecodable is returned for bytes that claim an image type but do
// not parse as one.
var ErrUndecodable = errors.New("imaging: image could not be decoded")

// Info describes a decoded image header.
type Info struct {
	Format string `json:"format"` // "jpeg", "png", "gif" or "webp"
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// DimensionError reports an image outside the accepted cover size.
type DimensionError struct {
	Width, Height int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("imaging: cover is %dx%d, must be at least %dx%d and at most %d px per side",
		e.Width, e.Height, MinCoverWidth, MinCoverHeight, MaxCoverSide)
}

// Inspect decodes the header of data.
func Inspect(data []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// CheckCover inspects data and applies the cover size limits.
func CheckCover(data []byte) (Info, error) {
	info, err := Inspect(data)
	if err != nil {
		return Info{}, err
	}
	if info.Width < MinCoverWidth || info.Height < MinCoverHeight ||
		info.Width > MaxCoverSide || info.Height > MaxCoverSide {
		return info, &DimensionError{Width: info.Width, Height: info.Height}
	}
	return info, nil
}
