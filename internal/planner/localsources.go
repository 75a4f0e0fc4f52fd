package planner

import (
	"fmt"
	"strings"

	"github.com/jonesrussell/goveille/internal/domain"
	"github.com/jonesrussell/goveille/internal/themes"
)

// localPressSites are regional news outlets likely to cover small
// businesses by name.
var localPressSites = []string{
	"francebleu.fr",
	"actu.fr",
	"france3-regions.francetvinfo.fr",
	"leparisien.fr",
}

// institutionalSites publish subsidy and support announcements.
var institutionalSites = []string{
	"cci.fr",
	"bpifrance.fr",
	"economie.gouv.fr",
}

// localSourceQueries builds site-scoped variants. They rank below every
// other strategy and only fill remaining slots in the plan.
func (p *Planner) localSourceQueries(name, commune string, theme themes.Theme) []candidateQuery {
	sites := localPressSites
	source := domain.SourceLocalPress
	if theme.Name == themes.ThemeSubsidies {
		sites = institutionalSites
		source = domain.SourceInstitutional
	}

	out := make([]candidateQuery, 0, len(sites))
	for _, site := range sites {
		out = append(out, candidateQuery{
			text:     strings.TrimSpace(fmt.Sprintf("site:%s %q %s", site, name, commune)),
			strategy: domain.StrategyLocalSource,
			source:   source,
		})
	}
	return out
}
