// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Availability is the stock state of a catalog lot.
type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilityReserved  Availability = "reserved"
	AvailabilitySoldOut   Availability = "sold_out"
)

// CatalogItem is a green coffee lot offered for export. Items are seeded
// from data files and only read by the public site.
type CatalogItem struct {
	ID                 uuid.UUID    `json:"id" yaml:"-"`
	Name               string       `json:"name" yaml:"name"`
	Region             string       `json:"region" yaml:"region"`
	Variety            string       `json:"variety" yaml:"variety"`
	Grade              string       `json:"grade" yaml:"grade"`
	ProcessingMethod   string       `json:"processing_method" yaml:"processing_method"`
	FlavorNotes        []string     `json:"flavor_notes" yaml:"flavor_notes"`
	Description        string       `json:"description" yaml:"description"`
	ImageURL           *string      `json:"image_url,omitempty" yaml:"image_url"`
	Altitude           string       `json:"altitude" yaml:"altitude"`
	FarmDetails        *string      `json:"farm_details,omitempty" yaml:"farm_details"`
	IsMicrolot         bool         `json:"is_microlot" yaml:"is_microlot"`
	AvailabilityStatus Availability `json:"availability_status" yaml:"availability_status"`
	SeasonalNotes      *string      `json:"seasonal_notes,omitempty" yaml:"seasonal_notes"`
	CreatedAt          time.Time    `json:"created_at" yaml:"-"`
}

// CatalogFilter narrows the public catalog listing.
type CatalogFilter struct {
	Query            string
	Region           string
	Grade            string
	ProcessingMethod string
}

// CatalogFacets holds the distinct filter values present in a listing.
type CatalogFacets struct {
	Regions           []string `json:"regions"`
	Grades            []string `json:"grades"`
	ProcessingMethods []string `json:"processing_methods"`
}
