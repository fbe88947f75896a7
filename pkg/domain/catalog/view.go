package catalog

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/m-mizutani/datamart/pkg/domain/model"
)

// PageSize is the fixed number of records per page
const PageSize = 20

// Engine filters, sorts and paginates dataset collections.
// It holds no collection state; every call is a pure function of its arguments.
type Engine struct {
	lang language.Tag
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithLanguage sets the collation language used by the name sort key
func WithLanguage(tag language.Tag) EngineOption {
	return func(e *Engine) {
		e.lang = tag
	}
}

// NewEngine creates an Engine. English collation is used by default.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{lang: language.English}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// View builds a page of records with the default engine
func View(records []*model.DatasetRecord, state model.FilterState) *model.View {
	return defaultEngine.View(records, state)
}

// View applies the filter, sort and paginate steps to records
func (e *Engine) View(records []*model.DatasetRecord, state model.FilterState) *model.View {
	state = state.Normalize()

	matched := FilterRecords(records, state.SearchTerm, state.SelectedTags)
	e.SortRecords(matched, state.SortKey, state.SortOrder)

	return Paginate(matched, state.Page)
}

// FilterRecords keeps records whose display name contains term (case-insensitive)
// and that carry every tag in tags. The input slice is not modified.
func FilterRecords(records []*model.DatasetRecord, term string, tags []string) []*model.DatasetRecord {
	needle := strings.ToLower(term)
	matched := make([]*model.DatasetRecord, 0, len(records))

	for _, r := range records {
		if r == nil {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(r.DisplayName), needle) {
			continue
		}
		if !hasAllTags(r, tags) {
			continue
		}
		matched = append(matched, r)
	}
	return matched
}

func hasAllTags(r *model.DatasetRecord, tags []string) bool {
	for _, tag := range tags {
		if !r.HasTag(tag) {
			return false
		}
	}
	return true
}

// SortRecords orders records in place. Ties keep their input order.
func (e *Engine) SortRecords(records []*model.DatasetRecord, key model.SortKey, order model.SortOrder) {
	var compare func(a, b *model.DatasetRecord) int

	switch key {
	case model.SortByName:
		// Collator keeps internal buffers and is not safe for concurrent use.
		col := collate.New(e.lang, collate.IgnoreCase)
		compare = func(a, b *model.DatasetRecord) int {
			return col.CompareString(a.DisplayName, b.DisplayName)
		}
	case model.SortBySize:
		compare = func(a, b *model.DatasetRecord) int {
			return cmp.Compare(a.SizeBytes, b.SizeBytes)
		}
	default:
		compare = func(a, b *model.DatasetRecord) int {
			return cmp.Compare(a.Downloads, b.Downloads)
		}
	}

	if order == model.SortDesc {
		asc := compare
		compare = func(a, b *model.DatasetRecord) int {
			return asc(b, a)
		}
	}

	slices.SortStableFunc(records, compare)
}

// Paginate slices records into the requested page, clamping page into [1, pageCount]
func Paginate(records []*model.DatasetRecord, page int) *model.View {
	total := len(records)
	pageCount := (total + PageSize - 1) / PageSize

	if page > pageCount {
		page = pageCount
	}
	if page < 1 {
		page = 1
	}

	start := min((page-1)*PageSize, total)
	end := min(start+PageSize, total)

	items := make([]*model.DatasetRecord, end-start)
	copy(items, records[start:end])

	return &model.View{
		Items:      items,
		TotalCount: total,
		PageCount:  pageCount,
		Page:       page,
		PageSize:   PageSize,
	}
}
