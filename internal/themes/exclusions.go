package themes

// exclusionPatterns match dictionary, translation, encyclopedia and
// language-forum content. Any hit disqualifies a candidate outright.
// Patterns are pre-normalized and matched against normalized
// title+snippet+url text.
var exclusionPatterns = []string{
	// low-quality domains
	"forum.wordreference.com",
	"wordreference.com",
	"wiktionary.org",
	"wikipedia.org",
	"larousse.fr/dictionnaires",
	"linguee.",
	"reverso.net",
	// content signals
	"dictionnaire",
	"dictionary",
	"definition",
	"traduction",
	"translation",
	"grammaire",
	"grammar",
	"linguistique",
	"conjugaison",
	"cours de francais",
	"much or many",
}

// businessContextTerms are generic French business vocabulary; at least one
// must appear for a candidate to count as business content at all.
var businessContextTerms = []string{
	"entreprise", "societe", "service", "activite", "secteur", "emploi",
	"etablissement", "commerce", "commercial", "artisan", "magasin",
	"boutique", "salarie", "professionnel", "clientele", "economie",
	"recrutement", "atelier", "agence",
}
