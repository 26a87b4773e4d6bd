package models

// Categories is the fixed set every expense must fall into, in the
// order the UI presents them.
var Categories = []string{
	"Food",
	"Savings",
	"Gift",
	"Utility",
	"Entertainment",
	"Miscellaneous",
	"Services",
}

// CategoryCatchAll absorbs imported rows whose category is missing or
// not in the fixed set.
const CategoryCatchAll = "Miscellaneous"

// ValidCategory reports whether name is one of the fixed categories.
func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// NormalizeCategory maps unknown or empty categories to the catch-all.
func NormalizeCategory(name string) string {
	if ValidCategory(name) {
		return name
	}
	return CategoryCatchAll
}
