package model_test

import (
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/datamart/pkg/domain/model"
)

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		input   string
		want    model.SortKey
		wantErr bool
	}{
		{input: "", want: model.SortByDownloads},
		{input: "name", want: model.SortByName},
		{input: "Downloads", want: model.SortByDownloads},
		{input: "SIZE", want: model.SortBySize},
		{input: "likes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("input="+tt.input, func(t *testing.T) {
			got, err := model.ParseSortKey(tt.input)
			if tt.wantErr {
				gt.Error(t, err)
				gt.True(t, goerr.HasTag(err, model.ErrTagInvalidInput))
				return
			}
			gt.NoError(t, err)
			gt.Equal(t, got, tt.want)
		})
	}
}

func TestParseSortOrder(t *testing.T) {
	order, err := model.ParseSortOrder("")
	gt.NoError(t, err)
	gt.Equal(t, order, model.SortDesc)

	order, err = model.ParseSortOrder("ASC")
	gt.NoError(t, err)
	gt.Equal(t, order, model.SortAsc)

	_, err = model.ParseSortOrder("sideways")
	gt.Error(t, err)
}

func TestFilterState_ResetRules(t *testing.T) {
	t.Run("search term change resets page", func(t *testing.T) {
		s := model.NewFilterState()
		s.SetPage(4)
		s.SetSearchTerm("wiki")
		gt.Equal(t, s.Page, 1)
		gt.Equal(t, s.SearchTerm, "wiki")
	})

	t.Run("same search term keeps page", func(t *testing.T) {
		s := model.NewFilterState()
		s.SetSearchTerm("wiki")
		s.SetPage(3)
		s.SetSearchTerm("wiki")
		gt.Equal(t, s.Page, 3)
	})

	t.Run("toggling tags resets page", func(t *testing.T) {
		s := model.NewFilterState()
		s.SetPage(2)
		s.ToggleTag("license:mit")
		gt.Equal(t, s.Page, 1)
		gt.Equal(t, s.SelectedTags, []string{"license:mit"})

		s.SetPage(5)
		s.ToggleTag("license:mit")
		gt.Equal(t, s.Page, 1)
		gt.A(t, s.SelectedTags).Length(0)
	})

	t.Run("select and clear tags reset page", func(t *testing.T) {
		s := model.NewFilterState()
		s.SetPage(2)
		s.SelectTags("b", "a", "b", "")
		gt.Equal(t, s.SelectedTags, []string{"a", "b"})
		gt.Equal(t, s.Page, 1)

		s.SetPage(3)
		s.ClearTags()
		gt.Equal(t, s.Page, 1)
		gt.A(t, s.SelectedTags).Length(0)
	})

	t.Run("sort change keeps page", func(t *testing.T) {
		s := model.NewFilterState()
		s.SetPage(3)
		s.SetSort(model.SortByName, model.SortAsc)
		gt.Equal(t, s.Page, 3)
		gt.Equal(t, s.SortKey, model.SortByName)
	})
}

func TestFilterState_Normalize(t *testing.T) {
	s := model.FilterState{
		SelectedTags: []string{"z", "a", "z"},
		Page:         -3,
	}.Normalize()

	gt.Equal(t, s.SortKey, model.SortByDownloads)
	gt.Equal(t, s.SortOrder, model.SortDesc)
	gt.Equal(t, s.Page, 1)
	gt.Equal(t, s.SelectedTags, []string{"a", "z"})
}

func TestDatasetRecord_HasTag(t *testing.T) {
	r := &model.DatasetRecord{Tags: []string{"license:mit", "language:en"}}
	gt.True(t, r.HasTag("license:mit"))
	gt.False(t, r.HasTag("license:apache-2.0"))
}
