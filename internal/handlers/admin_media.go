// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"jowam/internal/imaging"
)

// maxUploadSize is the largest accepted cover image (10 MiB).
const maxUploadSize = 10 << 20

// coverTypes maps accepted sniffed MIME types to file extensions.
var coverTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// CoverStorage stores article cover images and returns their public URL.
type CoverStorage interface {
	PutCover(ctx context.Context, ext, contentType string, body io.Reader, size int64) (string, error)
	DeleteByURL(ctx context.Context, rawURL string) error
}

// UploadCover accepts a multipart "file" field and stores it as a cover
// image. The type is sniffed from the content, not trusted from the client,
// and the header is decoded to reject corrupt or undersized images.
func (a *Admin) UploadCover(w http.ResponseWriter, r *http.Request) {
	if a.covers == nil {
		writeError(w, http.StatusServiceUnavailable, "object storage is not configured", "")
		return
	}

	// Allow some room for the multipart framing around the file.
	const maxBody = maxUploadSize + 64<<10
	if r.ContentLength > maxBody {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large, maximum size is 10 MB", "file")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large, maximum size is 10 MB", "file")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart body", "")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided", "file")
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large, maximum size is 10 MB", "file")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		internalError(w, r, "read upload failed", err)
		return
	}
	if len(data) > maxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large, maximum size is 10 MB", "file")
		return
	}

	contentType := http.DetectContentType(data)
	ext, ok := coverTypes[contentType]
	if !ok {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported image type "+contentType, "file")
		return
	}

	info, err := imaging.CheckCover(data)
	if err != nil {
		var dim *imaging.DimensionError
		if errors.As(err, &dim) {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf(
				"cover is %dx%d, it must be at least %dx%d and at most %d pixels per side",
				dim.Width, dim.Height, imaging.MinCoverWidth, imaging.MinCoverHeight, imaging.MaxCoverSide), "file")
			return
		}
		writeError(w, http.StatusUnprocessableEntity, "image could not be decoded", "file")
		return
	}

	url, err := a.covers.PutCover(r.Context(), ext, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		slog.Error("cover upload failed", "error", err, "filename", header.Filename)
		writeError(w, http.StatusBadGateway, "upload to object storage failed", "")
		return
	}

	slog.Info("cover uploaded", "url", url, "size", len(data), "type", contentType,
		"width", info.Width, "height", info.Height)
	writeJSON(w, http.StatusCreated, map[string]any{"url": url, "width": info.Width, "height": info.Height})
}
