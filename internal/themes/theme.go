// Package themes defines the fixed economic-activity themes, their French
// keyword sets, sector vocabularies and exclusion patterns, with
// Aho-Corasick matchers for fast scoring over normalized text.
package themes

// Theme is one fixed economic-activity category.
type Theme struct {
	// Canonical theme name
	Name string
	// Scoring keywords, stored pre-normalized (lowercase, no diacritics)
	Keywords []string
	// Keywords used when building search queries, strongest first
	QueryKeywords []string
}

// Canonical theme names.
const (
	ThemeRecruitment   = "recruitment"
	ThemeEvents        = "events"
	ThemeInnovation    = "innovation"
	ThemeCorporateLife = "corporate_life"
	ThemeExports       = "exports"
	ThemeSubsidies     = "subsidies"
	ThemeSponsorship   = "sponsorship"
)

// builtinThemes lists every theme in canonical (sorted) order. Keyword lists
// reflect the vocabulary French small businesses actually use online.
var builtinThemes = []Theme{
	{
		Name: ThemeCorporateLife,
		Keywords: []string{
			"ouverture", "fermeture", "demenagement", "implantation",
			"developpement", "expansion", "partenariat", "collaboration",
			"fusion", "acquisition", "croissance", "rachat", "transmission",
			"reprend l'entreprise", "succursale", "nouveaux locaux",
		},
		QueryKeywords: []string{"developpement", "partenariat", "implantation"},
	},
	{
		Name: ThemeEvents,
		Keywords: []string{
			"porte ouverte", "portes ouvertes", "conference", "salon",
			"rencontre", "evenement", "manifestation", "colloque",
			"seminaire", "inauguration", "anniversaire", "braderie",
			"venez decouvrir", "marche de noel",
		},
		QueryKeywords: []string{"inauguration", "porte ouverte", "evenement"},
	},
	{
		Name: ThemeExports,
		Keywords: []string{
			"export", "exportation", "international", "etranger",
			"marche international", "contrat export",
			"developpement international",
		},
		QueryKeywords: []string{"export", "international"},
	},
	{
		Name: ThemeInnovation,
		Keywords: []string{
			"innovation", "nouveau produit", "nouveau service", "lancement",
			"brevet", "technologie", "nouveaute", "modernise",
			"se digitalise", "nouvelle machine", "click and collect",
			"commande en ligne",
		},
		QueryKeywords: []string{"innovation", "nouveau service", "lancement"},
	},
	{
		Name: ThemeRecruitment,
		Keywords: []string{
			"recrutement", "embauche", "recrute", "offre emploi",
			"offres emploi", "cdi", "cdd", "stage", "alternance",
			"apprentissage", "carriere", "poste a pourvoir",
			"nous recherchons", "rejoindre notre equipe", "cherche apprenti",
		},
		QueryKeywords: []string{"recrutement", "embauche", "recrute"},
	},
	{
		Name: ThemeSponsorship,
		Keywords: []string{
			"fondation", "sponsor", "sponsoring", "mecenat", "partenaire",
			"dons", "solidarite", "charitable",
		},
		QueryKeywords: []string{"sponsor", "mecenat"},
	},
	{
		Name: ThemeSubsidies,
		Keywords: []string{
			"subvention", "aide", "financement", "soutien", "credit",
			"subventionne", "pret", "investissement public",
		},
		QueryKeywords: []string{"subvention", "financement", "aide"},
	},
}
