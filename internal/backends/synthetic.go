package backends

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"

	"github.com/jonesrussell/goveille/internal/domain"
	"github.com/jonesrussell/goveille/internal/themes"
)

// syntheticTemplates provide plausible French headlines per theme. The
// placeholder takes the query text.
var syntheticTemplates = map[string][]string{
	themes.ThemeRecruitment: {
		"%s : offre d'emploi à pourvoir",
		"%s recherche un nouveau collaborateur",
	},
	themes.ThemeEvents: {
		"%s : portes ouvertes annoncées",
		"%s organise un événement local",
	},
	themes.ThemeInnovation: {
		"%s lance un nouveau service",
		"%s modernise son activité",
	},
	themes.ThemeCorporateLife: {
		"%s : développement de l'activité",
		"%s annonce un partenariat",
	},
	themes.ThemeExports: {
		"%s se développe à l'international",
		"%s signe un contrat export",
	},
	themes.ThemeSubsidies: {
		"%s obtient un soutien financier",
		"%s : aide au développement accordée",
	},
	themes.ThemeSponsorship: {
		"%s soutient une action solidaire",
		"%s devient sponsor local",
	},
}

var genericTemplates = []string{
	"%s : actualité de l'entreprise",
	"%s dans la presse locale",
}

// Synthetic is the deterministic fallback generator used when every real
// backend failed or is cooling down. Output is tagged so downstream scoring
// can discount it; identical queries always produce identical candidates.
type Synthetic struct{}

// NewSynthetic creates the fallback generator.
func NewSynthetic() *Synthetic {
	return &Synthetic{}
}

// Name implements Backend.
func (s *Synthetic) Name() string {
	return "synthetic"
}

// Search implements Backend. It never fails.
func (s *Synthetic) Search(_ context.Context, query domain.SearchQuery) ([]domain.Candidate, error) {
	templates, ok := syntheticTemplates[query.Theme]
	if !ok {
		templates = genericTemplates
	}

	subject := strings.Trim(strings.Split(query.Text, " ")[0], `"`)
	if quoted := quotedPart(query.Text); quoted != "" {
		subject = quoted
	}

	rng := rand.New(rand.NewSource(int64(hashQuery(query.Text))))
	first := rng.Intn(len(templates))

	candidates := make([]domain.Candidate, 0, 2)
	for i := 0; i < 2; i++ {
		template := templates[(first+i)%len(templates)]
		title := fmt.Sprintf(template, subject)
		candidates = append(candidates, domain.Candidate{
			Title:    title,
			URL:      fmt.Sprintf("https://veille.invalid/%s/%d", slugify(title), hashQuery(query.Text)%10000),
			Snippet:  fmt.Sprintf("Résultat généré hors ligne pour la requête « %s ».", query.Text),
			Position: i + 1,
		})
	}
	return candidates, nil
}

// quotedPart extracts the first double-quoted segment, usually the entity
// name in direct queries.
func quotedPart(text string) string {
	start := strings.Index(text, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(text[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return text[start+1 : start+1+end]
}

func hashQuery(text string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(text))
	return h.Sum64()
}

func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
