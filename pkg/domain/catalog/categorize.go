package catalog

import "strings"

// OtherCategory is assigned to tags without a recognized prefix
const OtherCategory = "Other"

type prefixRule struct {
	prefix string
	label  string
}

// Order matters: the first matching prefix wins.
var prefixRules = []prefixRule{
	{prefix: "task_categories:", label: "Task"},
	{prefix: "task_ids:", label: "Task ID"},
	{prefix: "annotations_creators:", label: "Annotations Creators"},
	{prefix: "language_creators:", label: "Language Creators"},
	{prefix: "multilinguality:", label: "Multilinguality"},
	{prefix: "source_datasets:", label: "Source Datasets"},
	{prefix: "language:", label: "Language"},
	{prefix: "license:", label: "License"},
	{prefix: "size_categories:", label: "Size"},
	{prefix: "format:", label: "Format"},
	{prefix: "modality:", label: "Modality"},
	{prefix: "library:", label: "Library"},
	{prefix: "arxiv:", label: "ArXiv"},
	{prefix: "region:", label: "Region"},
}

// Categorize returns the facet category of a raw tag
func Categorize(tag string) string {
	for _, rule := range prefixRules {
		if strings.HasPrefix(tag, rule.prefix) {
			return rule.label
		}
	}
	return OtherCategory
}

// Categories lists every category label in prefix order, followed by OtherCategory
func Categories() []string {
	labels := make([]string, 0, len(prefixRules)+1)
	for _, rule := range prefixRules {
		labels = append(labels, rule.label)
	}
	return append(labels, OtherCategory)
}
