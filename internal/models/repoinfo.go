package models

// RepoInfo is the object behind the persistent store's getRepoInfo /
// setRepoInfo contract (§6): at minimum an integer mtime used by
// PackageIndex.hasChanges to detect whether a slice's index file changed
// since the last run.
type RepoInfo struct {
	Mtime int64 `yaml:"mtime" json:"mtime"`
}
