package models

import "time"

// Region is a named grouping of members inside one host family. When
// LinkedFamilyID is set, every member whose home family matches it is an
// implicit member of the region, without a membership row.
type Region struct {
	ID             string    `json:"id"`
	FamilyID       string    `json:"family_id"`
	Name           string    `json:"name"`
	Description    *string   `json:"description"`
	Color          string    `json:"color"`
	LinkedFamilyID *string   `json:"linked_family_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// DefaultRegionColor is used when a region is created without a color
const DefaultRegionColor = "#EBF8FF"
