package catalog

import (
	"sort"

	"github.com/m-mizutani/datamart/pkg/domain/model"
)

// BuildFacets groups the distinct tags of records by category.
// Categories are sorted by name, tags keep first-seen order.
func BuildFacets(records []*model.DatasetRecord) []model.FacetCategory {
	index := make(map[string]*model.FacetCategory)
	seen := make(map[string]struct{})

	for _, r := range records {
		if r == nil {
			continue
		}
		for _, tag := range r.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}

			name := Categorize(tag)
			facet, ok := index[name]
			if !ok {
				facet = &model.FacetCategory{Name: name}
				index[name] = facet
			}
			facet.Tags = append(facet.Tags, tag)
		}
	}

	facets := make([]model.FacetCategory, 0, len(index))
	for _, facet := range index {
		facets = append(facets, *facet)
	}
	sort.Slice(facets, func(i, j int) bool {
		return facets[i].Name < facets[j].Name
	})
	return facets
}
