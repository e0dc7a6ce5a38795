// Package desktopentry implements C4: DesktopParser, producing a
// models.Component from a single desktop-entry file.
package desktopentry

import (
	"fmt"
	"strings"

	"github.com/ralt/appstream-gen/internal/genresult"
	"github.com/ralt/appstream-gen/internal/locale"
	"github.com/ralt/appstream-gen/internal/models"
)

// Parser parses desktop-entry files into Components, attaching hints for
// every recoverable problem it finds (§7 class 1: never aborts the
// pipeline).
type Parser struct {
	decoder       *locale.Decoder
	formatVersion int

	// TranslationHook, when set, supplies additional Name*/Comment*
	// translations discovered by an external backend (e.g. a separate
	// .mo catalog). Explicitly decoded locales in the file always win
	// over hook-supplied ones (§4.4, §5 ordering guarantee).
	TranslationHook func(basename string) (names, comments map[string]string)
}

// New creates a Parser. formatVersion gates the reverse-DNS component-id
// rewriting rule (§4.4); see models.ReverseDNSCutoff.
func New(formatVersion int) *Parser {
	return &Parser{decoder: locale.NewDecoder(), formatVersion: formatVersion}
}

// controlCharReplacement is substituted for any control byte in the
// sanitation blacklist (§4.4).
const controlCharReplacement = "#?#"

var controlCharBlacklist = map[byte]struct{}{
	0x00: {}, 0x08: {}, 0x0B: {}, 0x0C: {},
	0x0E: {}, 0x0F: {}, 0x10: {}, 0x11: {}, 0x12: {}, 0x13: {},
	0x14: {}, 0x15: {}, 0x16: {}, 0x17: {}, 0x18: {}, 0x19: {},
	0x1A: {}, 0x1B: {}, 0x1C: {}, 0x1D: {}, 0x1E: {}, 0x1F: {},
}

func sanitize(value string) string {
	var needsWork bool
	for i := 0; i < len(value); i++ {
		if _, bad := controlCharBlacklist[value[i]]; bad {
			needsWork = true
			break
		}
	}
	if !needsWork {
		return value
	}

	var b strings.Builder
	for i := 0; i < len(value); i++ {
		c := value[i]
		if _, bad := controlCharBlacklist[c]; bad {
			b.WriteString(controlCharReplacement)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isQuoted(value string) bool {
	if len(value) < 2 {
		return false
	}
	first, last := value[0], value[len(value)-1]
	return (first == '\'' && last == '\'') || (first == '"' && last == '"')
}

var recognizedTLDs = []string{
	"com.", "org.", "net.", "io.", "gnome.", "kde.", "github.", "xyz.",
}

func looksReverseDNS(baseID string) bool {
	lower := strings.ToLower(baseID)
	for _, tld := range recognizedTLDs {
		if strings.HasPrefix(lower, tld) {
			return true
		}
	}
	return false
}

// componentID derives the component id from the desktop file's basename
// (§4.4, scenarios 1-3).
func componentID(basename string, formatVersion int) string {
	stripped := strings.TrimSuffix(basename, ".desktop")
	if formatVersion >= models.ReverseDNSCutoff && looksReverseDNS(stripped) {
		return stripped
	}
	return basename
}

// Parse produces a Component from contents (the full text of a
// .desktop file named basename) attached to result, or returns nil when
// the file is to be silently skipped. ignoreNoDisplay, when true,
// overrides a NoDisplay=true skip condition.
//
// Parse never lets an internal problem escape to the caller: any panic
// while parsing is converted into a desktop-file-error hint (§7: "any
// internal exception is converted into a desktop-file-error hint").
func (p *Parser) Parse(result *genresult.Result, basename, contents string, ignoreNoDisplay bool) (c *models.Component) {
	defer func() {
		if r := recover(); r != nil {
			result.AddHint(models.FileSubject(basename), "desktop-file-error", map[string]string{
				"error": fmt.Sprintf("%v", r),
			})
			c = nil
		}
	}()
	return p.parse(result, basename, contents, ignoreNoDisplay)
}

func (p *Parser) parse(result *genresult.Result, basename, contents string, ignoreNoDisplay bool) *models.Component {
	kf, hasEntry := parseKeyFile(contents)
	if !hasEntry {
		result.AddHint(models.FileSubject(basename), "desktop-file-error", map[string]string{
			"error": "missing [Desktop Entry] group",
		})
		return nil
	}
	entry := kf.desktopEntry()

	if t, ok := entry.values["Type"]; ok && !strings.EqualFold(t, "application") {
		return nil
	}
	if noDisplay, ok := entry.values["NoDisplay"]; ok && strings.EqualFold(noDisplay, "true") && !ignoreNoDisplay {
		return nil
	}
	if ignore, ok := entry.values["X-AppStream-Ignore"]; ok && strings.EqualFold(ignore, "true") {
		return nil
	}

	id := componentID(basename, p.formatVersion)
	c := models.NewComponent(id)

	for _, key := range entry.order {
		rawValue := entry.values[key]

		localeTag, ok := p.decoder.Decode(key)
		if !ok {
			continue
		}

		base, bracket := splitKey(key)
		_ = bracket

		value := sanitize(rawValue)
		if isQuoted(rawValue) {
			result.AddHint(models.FileSubject(basename), "metainfo-quoted-value", map[string]string{
				"key": key,
			})
		}

		p.dispatch(result, basename, c, base, localeTag, value)
	}

	if p.TranslationHook != nil {
		names, comments := p.TranslationHook(basename)
		mergeHookTranslations(c.Name, names)
		mergeHookTranslations(c.Summary, comments)
	}

	result.AddComponent(basename, c)
	return c
}

// splitKey separates a key's base name from its bracketed locale suffix,
// e.g. "Name[de_DE]" -> ("Name", "[de_DE]").
func splitKey(key string) (base, bracket string) {
	if idx := strings.IndexByte(key, '['); idx >= 0 {
		return key[:idx], key[idx:]
	}
	return key, ""
}

func (p *Parser) dispatch(result *genresult.Result, basename string, c *models.Component, base, localeTag, value string) {
	switch base {
	case "Name":
		c.Name[localeTag] = value
	case "Comment":
		c.Summary[localeTag] = value
	case "Categories":
		p.setCategories(result, basename, c, value)
	case "Keywords":
		c.Keywords[localeTag] = splitKeywordList(value)
	case "MimeType":
		mimeTypes := splitSemicolonList(value)
		if len(mimeTypes) > 0 {
			c.Provides["mimetype"] = append(c.Provides["mimetype"], mimeTypes...)
		}
	case "Icon":
		c.Icons = append(c.Icons, models.Icon{
			Kind: "cached", Width: 1, Height: 1, Name: value,
		})
	}
}

func (p *Parser) setCategories(result *genresult.Result, basename string, c *models.Component, value string) {
	for _, cat := range splitSemicolonList(value) {
		if isBlacklisted(cat) || isVendorPrefixed(cat) {
			continue
		}
		if !isCanonical(cat) {
			result.AddHint(models.ComponentSubject(c), "category-name-invalid", map[string]string{
				"category": cat,
			})
			continue
		}
		c.AddCategory(cat)
	}
}

// splitSemicolonList splits on ";" and drops empty elements (this also
// absorbs the Desktop Entry convention of a trailing ";"). Used for
// Categories and MimeType, where an empty entry is never meaningful.
func splitSemicolonList(value string) []string {
	parts := strings.Split(value, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// splitKeywordList splits on ";" and drops only a trailing empty element,
// the one the Desktop Entry convention produces for a terminating ";".
// Unlike splitSemicolonList, an internal empty element is kept: Keywords
// items are taken literally rather than filtered.
func splitKeywordList(value string) []string {
	parts := strings.Split(value, ";")
	if n := len(parts); n > 0 && parts[n-1] == "" {
		parts = parts[:n-1]
	}
	return parts
}

// mergeHookTranslations fills dst with any src entries whose locale is not
// already present — an explicitly decoded locale in the file always wins
// over a hook-supplied one.
func mergeHookTranslations(dst, src map[string]string) {
	for locale, value := range src {
		if _, exists := dst[locale]; !exists {
			dst[locale] = value
		}
	}
}
