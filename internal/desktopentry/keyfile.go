package desktopentry

import (
	"strings"
)

// group is one [GroupName] section of a desktop-entry key-file: an ordered
// list of keys (duplicates overwrite, keeping first position) plus their
// raw, unsanitized values.
type group struct {
	order  []string
	values map[string]string
}

// keyFile is a minimal freedesktop.org Desktop Entry key-file reader.
// Desktop files are simple enough (flat "Key=Value" lines under
// "[Group]" headers, no multi-line values, "#" comments) that a hand-rolled
// line scanner — in repogen's own style of small explicit scanners over ar
// headers and control files — is clearer than reaching for a generic INI
// library.
type keyFile struct {
	groups []string
	byName map[string]*group
}

const desktopEntryGroup = "Desktop Entry"

func parseKeyFile(contents string) (*keyFile, bool) {
	kf := &keyFile{byName: make(map[string]*group)}
	var current *group

	for _, raw := range strings.Split(contents, "\n") {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			name := trimmed[1 : len(trimmed)-1]
			g, ok := kf.byName[name]
			if !ok {
				g = &group{values: make(map[string]string)}
				kf.byName[name] = g
				kf.groups = append(kf.groups, name)
			}
			current = g
			continue
		}

		if current == nil {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			continue
		}

		key := strings.TrimSpace(line[:idx])
		value := line[idx+1:]
		if _, seen := current.values[key]; !seen {
			current.order = append(current.order, key)
		}
		current.values[key] = value
	}

	_, hasDesktopEntry := kf.byName[desktopEntryGroup]
	return kf, hasDesktopEntry
}

// desktopEntry returns the [Desktop Entry] group's keys in file order.
func (k *keyFile) desktopEntry() *group {
	return k.byName[desktopEntryGroup]
}
