package frenchtext

// legalForms are French company legal forms that carry no identity signal.
var legalForms = map[string]struct{}{
	"sarl": {}, "sas": {}, "sasu": {}, "sa": {}, "eurl": {}, "sci": {},
	"snc": {}, "scop": {}, "scp": {}, "selarl": {}, "ei": {}, "eirl": {},
	"entreprise": {}, "societe": {}, "ets": {}, "etablissements": {},
}

// civilities are personal titles used in sole-trader records.
var civilities = map[string]struct{}{
	"m": {}, "mr": {}, "mme": {}, "mlle": {},
	"monsieur": {}, "madame": {}, "mademoiselle": {},
}

// stopwords are short French function words ignored when scoring name overlap.
var stopwords = map[string]struct{}{
	"le": {}, "la": {}, "les": {}, "de": {}, "du": {}, "des": {}, "un": {},
	"une": {}, "et": {}, "en": {}, "au": {}, "aux": {}, "chez": {}, "sur": {},
	"sous": {}, "pour": {}, "par": {}, "dans": {},
}

const minSignificantLen = 3

// IsLegalForm reports whether the normalized token is a company legal form.
func IsLegalForm(token string) bool {
	_, ok := legalForms[Normalize(token)]
	return ok
}

// IsCivility reports whether the normalized token is a personal title.
func IsCivility(token string) bool {
	_, ok := civilities[Normalize(token)]
	return ok
}

// IsSignificant reports whether a normalized token carries identity signal:
// long enough and neither a legal form, a civility, nor a stopword.
func IsSignificant(token string) bool {
	if len([]rune(token)) < minSignificantLen {
		return false
	}
	if _, ok := legalForms[token]; ok {
		return false
	}
	if _, ok := civilities[token]; ok {
		return false
	}
	if _, ok := stopwords[token]; ok {
		return false
	}
	return true
}

// SignificantTokens tokenizes s and keeps only significant tokens, preserving
// order and dropping duplicates.
func SignificantTokens(s string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tok := range Tokenize(s) {
		if !IsSignificant(tok) {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
