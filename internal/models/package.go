package models

import "fmt"

// Package describes one binary package entry as read from a repository's
// package index. Identity is the (Name, Version, Architecture) triple;
// Filename and Maintainer are carried along but do not participate in
// identity.
type Package struct {
	Name         string
	Version      string
	Architecture string
	Filename     string
	Maintainer   string

	// LongDesc holds the rendered, paragraph-wrapped long description per
	// locale tag, keyed the same way as Component's localized attributes.
	LongDesc map[string]string
}

// Valid reports whether the package carries every field required for it to
// be addressable and cacheable. Packages failing this check are dropped
// during index loading with a warning, never propagated further.
func (p Package) Valid() bool {
	return p.Name != "" && p.Version != "" && p.Architecture != "" && p.Filename != ""
}

// Pkid returns the stable identifier used as the persistent store's key for
// this package. Only meaningful for a Valid package.
func (p Package) Pkid() string {
	return fmt.Sprintf("%s:%s:%s", p.Name, p.Version, p.Architecture)
}
