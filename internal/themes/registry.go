package themes

import (
	"github.com/cloudflare/ahocorasick"

	"github.com/jonesrussell/goveille/internal/frenchtext"
)

// Registry holds the compiled theme, sector and exclusion matchers. All
// matching methods expect text already normalized by frenchtext.Normalize.
type Registry struct {
	themes        []Theme
	byName        map[string]int
	themeMatchers map[string]*ahocorasick.Matcher

	sectors        []Sector
	sectorMatchers []*ahocorasick.Matcher

	exclusions        *ahocorasick.Matcher
	exclusionPatterns []string
	business          *ahocorasick.Matcher
}

// NewRegistry compiles the built-in themes, sectors and exclusion lists.
func NewRegistry() *Registry {
	r := &Registry{
		themes:            builtinThemes,
		byName:            make(map[string]int, len(builtinThemes)),
		themeMatchers:     make(map[string]*ahocorasick.Matcher, len(builtinThemes)),
		sectors:           builtinSectors,
		exclusionPatterns: exclusionPatterns,
		exclusions:        ahocorasick.NewStringMatcher(exclusionPatterns),
		business:          ahocorasick.NewStringMatcher(businessContextTerms),
	}

	for i, theme := range r.themes {
		r.byName[theme.Name] = i
		r.themeMatchers[theme.Name] = ahocorasick.NewStringMatcher(theme.Keywords)
	}

	r.sectorMatchers = make([]*ahocorasick.Matcher, len(r.sectors))
	for i, sector := range r.sectors {
		r.sectorMatchers[i] = ahocorasick.NewStringMatcher(sector.Signals)
	}

	return r
}

// All returns every theme in canonical order.
func (r *Registry) All() []Theme {
	return r.themes
}

// Names returns the canonical theme name list.
func (r *Registry) Names() []string {
	names := make([]string, len(r.themes))
	for i, theme := range r.themes {
		names[i] = theme.Name
	}
	return names
}

// Get looks up a theme by name.
func (r *Registry) Get(name string) (Theme, bool) {
	idx, ok := r.byName[name]
	if !ok {
		return Theme{}, false
	}
	return r.themes[idx], true
}

// KeywordHits counts the distinct theme keywords present in normText.
// Unknown themes yield zero.
func (r *Registry) KeywordHits(themeName, normText string) int {
	matcher, ok := r.themeMatchers[themeName]
	if !ok {
		return 0
	}
	return len(matcher.MatchThreadSafe([]byte(normText)))
}

// ExcludedBy reports the first exclusion pattern found in normText, if any.
func (r *Registry) ExcludedBy(normText string) (string, bool) {
	hits := r.exclusions.MatchThreadSafe([]byte(normText))
	if len(hits) == 0 {
		return "", false
	}
	return r.exclusionPatterns[hits[0]], true
}

// HasBusinessContext reports whether normText contains at least one generic
// business vocabulary term.
func (r *Registry) HasBusinessContext(normText string) bool {
	return len(r.business.MatchThreadSafe([]byte(normText))) > 0
}

// DetectSector identifies the activity sector from an entity's name and raw
// sector label. The first sector with a signal hit wins.
func (r *Registry) DetectSector(name, sectorLabel string) (Sector, bool) {
	normText := frenchtext.Normalize(name + " " + sectorLabel)
	for i, matcher := range r.sectorMatchers {
		if len(matcher.MatchThreadSafe([]byte(normText))) > 0 {
			return r.sectors[i], true
		}
	}
	return Sector{}, false
}
