package model

import (
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// SortKey selects the field a view is ordered by
type SortKey string

const (
	SortByName      SortKey = "name"
	SortByDownloads SortKey = "downloads"
	SortBySize      SortKey = "size"
)

// SortOrder selects ascending or descending order
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortKey converts user input to a SortKey. Empty input yields the default key.
func ParseSortKey(s string) (SortKey, error) {
	switch key := SortKey(strings.ToLower(s)); key {
	case "":
		return SortByDownloads, nil
	case SortByName, SortByDownloads, SortBySize:
		return key, nil
	default:
		return "", goerr.New("unknown sort key", goerr.V("sort", s), goerr.T(ErrTagInvalidInput))
	}
}

// ParseSortOrder converts user input to a SortOrder. Empty input yields the default order.
func ParseSortOrder(s string) (SortOrder, error) {
	switch order := SortOrder(strings.ToLower(s)); order {
	case "":
		return SortDesc, nil
	case SortAsc, SortDesc:
		return order, nil
	default:
		return "", goerr.New("unknown sort order", goerr.V("order", s), goerr.T(ErrTagInvalidInput))
	}
}

// FilterState is the UI state of one viewing session.
// Changing the search term or the selected tags resets Page to 1.
type FilterState struct {
	SearchTerm   string    `json:"q"`
	SelectedTags []string  `json:"tags"`
	SortKey      SortKey   `json:"sort"`
	SortOrder    SortOrder `json:"order"`
	Page         int       `json:"page"`
}

// NewFilterState returns a state with default sort and the first page
func NewFilterState() FilterState {
	return FilterState{
		SortKey:   SortByDownloads,
		SortOrder: SortDesc,
		Page:      1,
	}
}

// Normalize fills defaults and turns SelectedTags into a sorted set
func (s FilterState) Normalize() FilterState {
	if s.SortKey == "" {
		s.SortKey = SortByDownloads
	}
	if s.SortOrder == "" {
		s.SortOrder = SortDesc
	}
	if s.Page < 1 {
		s.Page = 1
	}
	s.SelectedTags = tagSet(s.SelectedTags)
	return s
}

// SetSearchTerm replaces the search term and resets to the first page
func (s *FilterState) SetSearchTerm(term string) {
	if s.SearchTerm == term {
		return
	}
	s.SearchTerm = term
	s.Page = 1
}

// ToggleTag adds the tag if absent, removes it otherwise, and resets to the first page
func (s *FilterState) ToggleTag(tag string) {
	if i := slices.Index(s.SelectedTags, tag); i >= 0 {
		s.SelectedTags = slices.Delete(slices.Clone(s.SelectedTags), i, i+1)
	} else {
		s.SelectedTags = tagSet(append(slices.Clone(s.SelectedTags), tag))
	}
	s.Page = 1
}

// SelectTags replaces the selected tags and resets to the first page
func (s *FilterState) SelectTags(tags ...string) {
	s.SelectedTags = tagSet(tags)
	s.Page = 1
}

// ClearTags drops every selected tag and resets to the first page
func (s *FilterState) ClearTags() {
	s.SelectedTags = nil
	s.Page = 1
}

// SetSort changes ordering without leaving the current page
func (s *FilterState) SetSort(key SortKey, order SortOrder) {
	s.SortKey = key
	s.SortOrder = order
}

// SetPage moves to the given page. Range clamping happens when the view is built.
func (s *FilterState) SetPage(page int) {
	s.Page = page
}

func tagSet(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != "" {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
