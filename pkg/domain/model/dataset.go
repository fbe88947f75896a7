package model

import (
	"slices"
	"time"
)

const (
	// UnnamedDataset is shown when a source record carries no display name
	UnnamedDataset = "Unnamed Dataset"

	// UnknownSizeCategory is used when a source record has no size category
	UnknownSizeCategory = "Unknown"
)

// DatasetRecord represents one catalog entry
type DatasetRecord struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"display_name"`
	Tags         []string  `json:"tags"`
	Downloads    int64     `json:"downloads"`
	LastModified time.Time `json:"last_modified"`
	SizeCategory string    `json:"size_category"`
	SizeBytes    int64     `json:"size_bytes"`
}

// HasTag reports whether the record carries the exact tag
func (r *DatasetRecord) HasTag(tag string) bool {
	return slices.Contains(r.Tags, tag)
}

// FacetCategory is a named group of distinct tags observed in a collection
type FacetCategory struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// View is the filtered, sorted and paginated subset of a collection
type View struct {
	Items      []*DatasetRecord `json:"items"`
	TotalCount int              `json:"total_count"`
	PageCount  int              `json:"page_count"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
}
