// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"jowam/internal/models"
)

const catalogColumns = `id, name, region, variety, grade, processing_method, flavor_notes,
	description, image_url, altitude, farm_details, is_microlot, availability_status,
	seasonal_notes, created_at`

// CatalogStore reads the coffee lots offered on the public catalog page.
type CatalogStore struct {
	db *sql.DB
}

// NewCatalogStore creates a new CatalogStore with the given database connection.
func NewCatalogStore(db *sql.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// ListAvailable returns the available lots matching the filter, microlots
// first, then by grade.
func (s *CatalogStore) ListAvailable(ctx context.Context, f models.CatalogFilter) ([]models.CatalogItem, error) {
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	where := []string{"availability_status = " + arg(models.AvailabilityAvailable)}
	if f.Region != "" {
		where = append(where, "region = "+arg(f.Region))
	}
	if f.Grade != "" {
		where = append(where, "grade = "+arg(f.Grade))
	}
	if f.ProcessingMethod != "" {
		where = append(where, "processing_method = "+arg(f.ProcessingMethod))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		p := arg(likePattern(q))
		where = append(where, "(name ILIKE "+p+" OR region ILIKE "+p+" OR grade ILIKE "+p+
			" OR EXISTS (SELECT 1 FROM unnest(flavor_notes) AS note WHERE note ILIKE "+p+"))")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+catalogColumns+`
		FROM catalog_items
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY is_microlot DESC, grade ASC, name ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list catalog items: %w", err)
	}
	defer rows.Close()

	m := pgtype.NewMap()
	items := []models.CatalogItem{}
	for rows.Next() {
		var it models.CatalogItem
		if err := rows.Scan(
			&it.ID, &it.Name, &it.Region, &it.Variety, &it.Grade, &it.ProcessingMethod,
			m.SQLScanner(&it.FlavorNotes), &it.Description, &it.ImageURL, &it.Altitude,
			&it.FarmDetails, &it.IsMicrolot, &it.AvailabilityStatus, &it.SeasonalNotes,
			&it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan catalog item: %w", err)
		}
		if it.FlavorNotes == nil {
			it.FlavorNotes = []string{}
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Facets returns the distinct regions, grades and processing methods of
// all available lots, for the catalog filter dropdowns.
func (s *CatalogStore) Facets(ctx context.Context) (*models.CatalogFacets, error) {
	f := &models.CatalogFacets{}
	m := pgtype.NewMap()
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(array_agg(DISTINCT region ORDER BY region), '{}'),
		       COALESCE(array_agg(DISTINCT grade ORDER BY grade), '{}'),
		       COALESCE(array_agg(DISTINCT processing_method ORDER BY processing_method), '{}')
		FROM catalog_items
		WHERE availability_status = $1
	`, models.AvailabilityAvailable).Scan(
		m.SQLScanner(&f.Regions), m.SQLScanner(&f.Grades), m.SQLScanner(&f.ProcessingMethods),
	)
	if err != nil {
		return nil, fmt.Errorf("catalog facets: %w", err)
	}
	return f, nil
}
