package gd

// FilterByCategory narrows activities to those whose category key is in the
// selection, preserving the original order. When the selection means
// "everything" the input comes back unchanged, so activities without a
// category descriptor survive; with an active subset they are dropped.
func FilterByCategory(activities []Activity, selection Selection) []Activity {
	if selection.All || len(selection.Wanted) == 0 {
		return activities
	}

	var filtered []Activity
	for _, activity := range activities {
		if activity.Category == "" {
			continue
		}
		if _, ok := selection.Wanted[activity.Category]; ok {
			filtered = append(filtered, activity)
		}
	}
	return filtered
}
