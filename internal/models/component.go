package models

// Unlocalized is the reserved locale tag denoting the untranslated base
// value of a localized attribute. Code must never conflate it with a
// missing entry — a Component with no explicit "C" name simply has no
// entry under that key.
const Unlocalized = "C"

// KindDesktopApp is the only Component kind this core ever produces.
const KindDesktopApp = "desktop-app"

// Icon is a single icon reference attached to a Component. The real width
// and height are resolved later by an out-of-scope icon pipeline; this core
// only ever attaches placeholder-sized cached icons (see DesktopParser).
type Icon struct {
	Kind   string
	Width  int
	Height int
	Name   string
}

// Component is one AppStream catalog entry, built up incrementally while a
// single desktop-entry file is parsed, then handed off immutably to
// aggregation.
type Component struct {
	ID   string
	Kind string

	Name     map[string]string
	Summary  map[string]string
	Keywords map[string][]string

	categories map[string]struct{}
	catOrder   []string

	Provides map[string][]string

	Icons []Icon
}

// NewComponent creates an empty Component for the given id.
func NewComponent(id string) *Component {
	return &Component{
		ID:       id,
		Kind:     KindDesktopApp,
		Name:     make(map[string]string),
		Summary:  make(map[string]string),
		Keywords: make(map[string][]string),
		Provides: make(map[string][]string),
	}
}

// AddCategory adds a category to the component's category set, ignoring
// duplicates and preserving first-seen order for deterministic rendering.
func (c *Component) AddCategory(name string) {
	if c.categories == nil {
		c.categories = make(map[string]struct{})
	}
	if _, ok := c.categories[name]; ok {
		return
	}
	c.categories[name] = struct{}{}
	c.catOrder = append(c.catOrder, name)
}

// Categories returns the component's categories in first-seen order.
func (c *Component) Categories() []string {
	out := make([]string, len(c.catOrder))
	copy(out, c.catOrder)
	return out
}

// HasCategory reports whether name was added to the component.
func (c *Component) HasCategory(name string) bool {
	_, ok := c.categories[name]
	return ok
}
