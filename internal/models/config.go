package models

// SuiteConfig names one repository suite and the sections/architectures
// this pipeline should enumerate for it. A "slice" in the rest of the core
// is one (suite, section, arch) coordinate drawn from this configuration.
type SuiteConfig struct {
	Name     string
	Sections []string
	Arches   []string
}

// Config is the workspace configuration this core consumes. Loading it
// (from flags and/or a YAML file) is an ambient, out-of-scope concern; the
// core only ever reads the fields below.
type Config struct {
	WorkspaceDir string
	ProjectName  string
	HTMLBaseURL  string
	Suites       []SuiteConfig

	// FormatVersion gates the reverse-DNS component-id rewriting rule in
	// the DesktopParser (§4.4).
	FormatVersion int

	TmpDir string

	// RepoRoot is the repository root the Fetcher resolves relative
	// paths against; a scheme prefix ("http://", "https://") selects the
	// remote path, anything else (including "file://" and bare paths) is
	// treated as local.
	RepoRoot string

	// Fetcher tuning.
	FetcherUserAgent  string
	FetcherMaxRetries int
	FetcherBaseDelay  int // milliseconds

	// SigningKeyring, if set, is a path to an armored OpenPGP public
	// keyring used to verify each suite's InRelease cleartext signature.
	// Verification failure is logged as a warning and never fatal; no hint
	// is recorded for it.
	SigningKeyring string
}

// ReverseDNSCutoff is the format-version threshold at and above which the
// DesktopParser strips a reverse-DNS-looking ".desktop" basename down to
// its bare reverse-DNS id (§4.4, scenario 2 vs 3).
const ReverseDNSCutoff = 1000 // AppStream formatVersion 1.0 and later, x1000
