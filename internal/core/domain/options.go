package domain

import "strings"

// OptionsIndex maps each category label to its ordered option labels.
// Categories keeps the column order of the source range.
type OptionsIndex struct {
	Categories []string
	Options    map[string][]string
}

// NewOptionsIndex returns an empty index.
func NewOptionsIndex() OptionsIndex {
	return OptionsIndex{Options: make(map[string][]string)}
}

// Len returns the number of categories.
func (o OptionsIndex) Len() int {
	return len(o.Categories)
}

// IsEmpty reports whether the index has no categories.
func (o OptionsIndex) IsEmpty() bool {
	return len(o.Categories) == 0
}

// OptionsFor returns the options of a category, nil when unknown.
func (o OptionsIndex) OptionsFor(category string) []string {
	if o.Options == nil {
		return nil
	}
	return o.Options[category]
}

// Has reports whether category is present.
func (o OptionsIndex) Has(category string) bool {
	_, ok := o.Options[category]
	return ok
}

// Contains reports whether option is listed under category.
func (o OptionsIndex) Contains(category, option string) bool {
	for _, opt := range o.OptionsFor(category) {
		if opt == option {
			return true
		}
	}
	return false
}

// BuildOptionsIndex interprets a lookup range: row 0 holds category labels,
// every later row holds options for the category of its column. Columns with
// a blank header are skipped, blank option cells are dropped and values are
// trimmed. A repeated label keeps its first position but takes the options of
// its last column.
func BuildOptionsIndex(grid Grid) OptionsIndex {
	index := NewOptionsIndex()
	if len(grid) == 0 {
		return index
	}

	width := len(grid[0])
	for c := 0; c < width; c++ {
		category := strings.TrimSpace(FormatScalar(grid.At(0, c)))
		if category == "" {
			continue
		}

		options := make([]string, 0, len(grid)-1)
		for r := 1; r < len(grid); r++ {
			option := strings.TrimSpace(FormatScalar(grid.At(r, c)))
			if option == "" {
				continue
			}
			options = append(options, option)
		}

		if _, seen := index.Options[category]; !seen {
			index.Categories = append(index.Categories, category)
		}
		index.Options[category] = options
	}

	return index
}
