package themes

// Sector groups the query vocabulary for one recognizable activity sector.
type Sector struct {
	// Canonical sector name
	Name string
	// Signals detected in entity names or raw sector labels, pre-normalized
	Signals []string
	// Keywords appended to sector-specialized queries
	QueryKeywords []string
}

// builtinSectors covers the activity sectors common enough among French
// small businesses to justify specialized queries.
var builtinSectors = []Sector{
	{
		Name:          "hospitality",
		Signals:       []string{"hotel", "hebergement", "camping", "gite", "chambres d'hotes"},
		QueryKeywords: []string{"hotel", "reservation", "sejour"},
	},
	{
		Name:          "laundry",
		Signals:       []string{"blanchisserie", "pressing", "laverie", "nettoyage a sec"},
		QueryKeywords: []string{"pressing", "nettoyage"},
	},
	{
		Name:          "transport",
		Signals:       []string{"transport", "transports", "logistique", "taxi", "demenagement"},
		QueryKeywords: []string{"transport", "livraison", "logistique"},
	},
	{
		Name:          "food_service",
		Signals:       []string{"restaurant", "brasserie", "pizzeria", "traiteur", "boulangerie", "patisserie", "restauration"},
		QueryKeywords: []string{"restaurant", "menu", "plat du jour"},
	},
	{
		Name:          "retail",
		Signals:       []string{"magasin", "boutique", "commerce", "tabac", "epicerie", "supermarche"},
		QueryKeywords: []string{"magasin", "vente", "clientele"},
	},
	{
		Name:          "healthcare",
		Signals:       []string{"pharmacie", "cabinet medical", "infirmier", "infirmiere", "sante", "kinesitherapeute"},
		QueryKeywords: []string{"cabinet", "consultation", "soins"},
	},
	{
		Name:          "automotive",
		Signals:       []string{"garage", "carrosserie", "automobile", "mecanique", "controle technique"},
		QueryKeywords: []string{"garage", "reparation", "entretien"},
	},
	{
		Name:          "real_estate",
		Signals:       []string{"immobilier", "immobiliere", "syndic", "gestion locative"},
		QueryKeywords: []string{"immobilier", "location", "vente"},
	},
	{
		Name:          "hairdressing",
		Signals:       []string{"coiffure", "coiffeur", "coiffeuse", "esthetique", "institut de beaute"},
		QueryKeywords: []string{"salon", "coiffure", "beaute"},
	},
	{
		Name:          "construction",
		Signals:       []string{"batiment", "maconnerie", "menuiserie", "plomberie", "electricite", "charpente", "couverture", "travaux", "peinture"},
		QueryKeywords: []string{"chantier", "travaux", "renovation"},
	},
}
