package gd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Selection is the set of category keys the operator wants exported.
// All means no filtering; Wanted still carries the full category set in
// that case so callers can report what was chosen.
type Selection struct {
	All    bool
	Wanted map[string]struct{}
}

// ParseError reports a selection token that is not an integer
type ParseError struct {
	Token string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid entry %q: use comma-separated numbers or 'all'", e.Token)
}

// RangeError reports menu indexes outside the 1-based category range
type RangeError struct {
	Indexes []int
}

func (e *RangeError) Error() string {
	parts := make([]string, len(e.Indexes))
	for i, index := range e.Indexes {
		parts[i] = strconv.Itoa(index)
	}
	return "indexes out of range: " + strings.Join(parts, ", ")
}

// DeriveCategories returns the distinct category keys present in the
// activities, sorted. Activities without a category descriptor contribute
// nothing.
func DeriveCategories(activities []Activity) []string {
	seen := make(map[string]struct{})
	for _, activity := range activities {
		if activity.Category != "" {
			seen[activity.Category] = struct{}{}
		}
	}

	categories := make([]string, 0, len(seen))
	for category := range seen {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// ResolveSelection maps the operator's raw input against a 1-based category
// menu. An empty submission, "all" or "*" (case-insensitive) selects every
// category without filtering. Otherwise the input must be a comma-separated
// list of in-range integers; violations come back as *ParseError or
// *RangeError so the caller can re-prompt.
func ResolveSelection(categories []string, input string) (Selection, error) {
	input = strings.TrimSpace(input)

	if input == "" || strings.EqualFold(input, "all") || input == "*" {
		return Selection{All: true, Wanted: categorySet(categories)}, nil
	}

	indexes := make(map[int]struct{})
	for _, token := range strings.Split(input, ",") {
		token = strings.TrimSpace(token)
		value, err := strconv.Atoi(token)
		if err != nil {
			return Selection{}, &ParseError{Token: token}
		}
		indexes[value] = struct{}{}
	}

	var outOfRange []int
	for index := range indexes {
		if index < 1 || index > len(categories) {
			outOfRange = append(outOfRange, index)
		}
	}
	if len(outOfRange) > 0 {
		sort.Ints(outOfRange)
		return Selection{}, &RangeError{Indexes: outOfRange}
	}

	wanted := make(map[string]struct{}, len(indexes))
	for index := range indexes {
		wanted[categories[index-1]] = struct{}{}
	}
	return Selection{Wanted: wanted}, nil
}

func categorySet(categories []string) map[string]struct{} {
	set := make(map[string]struct{}, len(categories))
	for _, category := range categories {
		set[category] = struct{}{}
	}
	return set
}
