package analysis

// Filter selects which registered rules/providers the Registry should run
// for one pass (spec §4.7 "a selector over categories, groups, and rules").
// A zero-value Filter matches everything.
type Filter struct {
	Categories []Category // empty means all categories
	Groups     []string   // empty means all groups
	Only       []string   // rule names to run exclusively, if non-empty
	Skip       []string   // rule names to exclude
}

// Matches reports whether meta is selected by f.
func (f Filter) Matches(meta Meta) bool {
	if len(f.Categories) > 0 && !containsCategory(f.Categories, meta.Key.Category) {
		return false
	}
	if len(f.Groups) > 0 && !containsString(f.Groups, meta.Key.Group) {
		return false
	}
	if containsString(f.Skip, meta.Key.Name) {
		return false
	}
	if len(f.Only) > 0 {
		return containsString(f.Only, meta.Key.Name)
	}
	return true
}

func containsCategory(list []Category, c Category) bool {
	for _, x := range list {
		if x == c {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
