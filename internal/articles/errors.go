// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package articles

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateSlug is returned when another article already uses the slug.
	ErrDuplicateSlug = errors.New("slug already in use")
	// ErrNotFound is returned for missing articles and, on public reads,
	// for drafts.
	ErrNotFound = errors.New("article not found")
	// ErrUnauthorized is returned when the caller may not perform the operation.
	ErrUnauthorized = errors.New("not authorized")
	// ErrStoreUnavailable wraps any content store failure not classified above.
	ErrStoreUnavailable = errors.New("content store unavailable")
)

// ValidationError names the first field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// storeErr classifies a repository error. Unique-slug violations reported by
// the store keep their identity; everything else becomes ErrStoreUnavailable
// with the cause still reachable through errors.Is/As.
func storeErr(op string, err error) error {
	if errors.Is(err, ErrDuplicateSlug) {
		return fmt.Errorf("%s: %w", op, ErrDuplicateSlug)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
