package desktopentry

import "strings"

// categoryBlacklist is dropped unconditionally from any Categories= value
// (§4.4). Entries are matched exactly, including case.
var categoryBlacklist = map[string]struct{}{
	"GTK":         {},
	"Qt":          {},
	"GNOME":       {},
	"KDE":         {},
	"GUI":         {},
	"Application": {},
}

// canonicalCategories is the freedesktop.org menu category vocabulary this
// core validates Categories= entries against. Anything outside it (after
// the blacklist and "x-" filters) is discarded with a category-name-invalid
// hint.
var canonicalCategories = map[string]struct{}{
	"AudioVideo": {}, "Audio": {}, "Video": {}, "Development": {},
	"Education": {}, "Game": {}, "Graphics": {}, "Network": {},
	"Office": {}, "Science": {}, "Settings": {}, "System": {},
	"Utility": {},
}

func isBlacklisted(category string) bool {
	_, ok := categoryBlacklist[category]
	return ok
}

func isVendorPrefixed(category string) bool {
	return strings.HasPrefix(strings.ToLower(category), "x-")
}

func isCanonical(category string) bool {
	_, ok := canonicalCategories[category]
	return ok
}
