package models

// RenderedHint is one tag/message pair, already severity-partitioned and
// message-rendered by the ReportAggregator.
type RenderedHint struct {
	Tag     string
	Message string
}

// HintEntry carries every hint raised against one component within one
// package, partitioned by severity, plus the set of architectures the
// component was observed under.
type HintEntry struct {
	ComponentID string
	Arches      map[string]struct{}

	Infos    []RenderedHint
	Warnings []RenderedHint
	Errors   []RenderedHint
}

// NewHintEntry creates an empty HintEntry for the given component id.
func NewHintEntry(componentID string) *HintEntry {
	return &HintEntry{
		ComponentID: componentID,
		Arches:      make(map[string]struct{}),
	}
}

// Add appends a rendered hint to the bucket matching sev. Any severity other
// than warning or error lands in the Infos bucket.
func (e *HintEntry) Add(sev Severity, rendered RenderedHint) {
	switch sev {
	case SeverityWarning:
		e.Warnings = append(e.Warnings, rendered)
	case SeverityError:
		e.Errors = append(e.Errors, rendered)
	default:
		e.Infos = append(e.Infos, rendered)
	}
}

// PkgSummary is one row of a maintainer's package listing: totals only, no
// per-component detail (that lives in DataSummary.HintEntries).
type PkgSummary struct {
	PkgName    string
	PkgVersion string
	Maintainer string

	Infos    int
	Warnings int
	Errors   int
}

// DataSummary is the aggregate produced by the ReportAggregator for one
// (suite, section): package summaries grouped by maintainer, and hint
// entries grouped by package name then component id.
type DataSummary struct {
	Suite   string
	Section string

	PkgSummaries map[string][]PkgSummary
	HintEntries  map[string]map[string]*HintEntry

	TotalInfos    int
	TotalWarnings int
	TotalErrors   int
}

// NewDataSummary creates an empty DataSummary for (suite, section).
func NewDataSummary(suite, section string) *DataSummary {
	return &DataSummary{
		Suite:        suite,
		Section:      section,
		PkgSummaries: make(map[string][]PkgSummary),
		HintEntries:  make(map[string]map[string]*HintEntry),
	}
}

// hintEntriesFor returns (creating if absent) the component->HintEntry map
// for pkgName.
func (d *DataSummary) hintEntriesFor(pkgName string) map[string]*HintEntry {
	m, ok := d.HintEntries[pkgName]
	if !ok {
		m = make(map[string]*HintEntry)
		d.HintEntries[pkgName] = m
	}
	return m
}

// HintEntryFor returns (creating if absent) the HintEntry for
// (pkgName, componentID).
func (d *DataSummary) HintEntryFor(pkgName, componentID string) *HintEntry {
	entries := d.hintEntriesFor(pkgName)
	entry, ok := entries[componentID]
	if !ok {
		entry = NewHintEntry(componentID)
		entries[componentID] = entry
	}
	return entry
}

// AppendPkgSummary appends summary under its maintainer's bucket.
func (d *DataSummary) AppendPkgSummary(summary PkgSummary) {
	d.PkgSummaries[summary.Maintainer] = append(d.PkgSummaries[summary.Maintainer], summary)
}
