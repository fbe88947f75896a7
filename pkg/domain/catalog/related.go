package catalog

import "github.com/m-mizutani/datamart/pkg/domain/model"

// RelatedLimit caps the number of related datasets
const RelatedLimit = 5

// Related returns up to limit records sharing the first tag of target,
// ordered like the default view. The target itself is excluded.
func Related(records []*model.DatasetRecord, target *model.DatasetRecord, limit int) []*model.DatasetRecord {
	if target == nil || len(target.Tags) == 0 {
		return []*model.DatasetRecord{}
	}
	if limit <= 0 {
		limit = RelatedLimit
	}

	candidates := make([]*model.DatasetRecord, 0, len(records))
	for _, r := range records {
		if r != nil && r.ID != target.ID {
			candidates = append(candidates, r)
		}
	}

	state := model.NewFilterState()
	state.SelectTags(target.Tags[0])

	matched := FilterRecords(candidates, state.SearchTerm, state.SelectedTags)
	defaultEngine.SortRecords(matched, state.SortKey, state.SortOrder)

	if len(matched) > limit {
		return matched[:limit]
	}
	return matched
}
