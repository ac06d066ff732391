// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package articles

import (
	"context"

	"github.com/google/uuid"

	"jowam/internal/models"
)

// Repository is the content store the manager writes through. FindByID and
// FindBySlug return (nil, nil) when nothing matches. A store that enforces a
// unique slug index should report violations as ErrDuplicateSlug.
type Repository interface {
	Create(ctx context.Context, a *models.Article) (*models.Article, error)
	Update(ctx context.Context, a *models.Article) (*models.Article, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error)
	FindBySlug(ctx context.Context, slug string) (*models.Article, error)
	List(ctx context.Context, filter models.ArticleFilter) ([]models.Article, error)
}

// Identity is the caller as seen by the auth gate.
type Identity struct {
	UserID    uuid.UUID
	Email     string
	CanMutate bool
}

// AuthGate resolves the caller attached to a request context. The second
// return value is false for anonymous callers.
type AuthGate interface {
	Identity(ctx context.Context) (Identity, bool)
}
