package normalize

import (
	"sort"
	"strings"
	"unicode"

	"FxPulse/internal/domain/models"
)

// currencyAliases maps lowercase free text (ISO codes, countries, demonyms, central banks,
// currency names and nicknames) to a currency. It is the only such table in the service.
var currencyAliases = map[string]models.Currency{
	"usd": models.USD, "us": models.USD, "u.s.": models.USD, "united states": models.USD,
	"america": models.USD, "american": models.USD, "us dollar": models.USD, "u.s. dollar": models.USD,
	"greenback": models.USD, "fed": models.USD, "federal reserve": models.USD, "fomc": models.USD,

	"eur": models.EUR, "euro": models.EUR, "euro area": models.EUR, "eurozone": models.EUR,
	"euro zone": models.EUR, "emu": models.EUR, "eu": models.EUR, "european union": models.EUR,
	"ecb": models.EUR, "european central bank": models.EUR, "germany": models.EUR, "german": models.EUR,
	"france": models.EUR, "french": models.EUR, "italy": models.EUR, "italian": models.EUR,
	"spain": models.EUR, "spanish": models.EUR,

	"gbp": models.GBP, "uk": models.GBP, "united kingdom": models.GBP, "britain": models.GBP,
	"great britain": models.GBP, "british": models.GBP, "england": models.GBP, "pound": models.GBP,
	"pound sterling": models.GBP, "sterling": models.GBP, "boe": models.GBP, "bank of england": models.GBP,

	"jpy": models.JPY, "japan": models.JPY, "japanese": models.JPY, "yen": models.JPY,
	"boj": models.JPY, "bank of japan": models.JPY,

	"aud": models.AUD, "australia": models.AUD, "australian": models.AUD, "aussie": models.AUD,
	"australian dollar": models.AUD, "rba": models.AUD, "reserve bank of australia": models.AUD,

	"cad": models.CAD, "canada": models.CAD, "canadian": models.CAD, "loonie": models.CAD,
	"canadian dollar": models.CAD, "boc": models.CAD, "bank of canada": models.CAD,

	"chf": models.CHF, "switzerland": models.CHF, "swiss": models.CHF, "franc": models.CHF,
	"swiss franc": models.CHF, "snb": models.CHF, "swiss national bank": models.CHF,

	"nzd": models.NZD, "new zealand": models.NZD, "kiwi": models.NZD, "new zealand dollar": models.NZD,
	"rbnz": models.NZD, "reserve bank of new zealand": models.NZD,

	"cny": models.CNY, "cnh": models.CNY, "china": models.CNY, "chinese": models.CNY,
	"yuan": models.CNY, "renminbi": models.CNY, "rmb": models.CNY, "pboc": models.CNY,
	"people's bank of china": models.CNY,
}

// ambiguousInText are aliases accepted as a whole field value but too noisy to detect in prose.
var ambiguousInText = map[string]bool{"us": true, "u.s.": true, "eu": true, "emu": true, "franc": true, "kiwi": true}

// LookupCurrency resolves s strictly: an ISO code or a known alias, nothing else.
func LookupCurrency(s string) (models.Currency, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(s), " "))
	if key == "" {
		return "", false
	}
	c, ok := currencyAliases[key]
	return c, ok
}

// NormalizeCurrency resolves s, falling back to the base currency when s is unknown.
// The fallback is lossy; adapters use LookupCurrency to drop such records instead.
func NormalizeCurrency(s string) models.Currency {
	if c, ok := LookupCurrency(s); ok {
		return c
	}
	return models.BaseCurrency
}

// DetectCurrencies finds currencies mentioned in free text, ordered by first mention.
func DetectCurrencies(text string) []models.Currency {
	padded := " " + tokenize(text) + " "
	first := map[models.Currency]int{}
	for alias, c := range currencyAliases {
		if ambiguousInText[alias] {
			continue
		}
		idx := strings.Index(padded, " "+tokenize(alias)+" ")
		if idx < 0 {
			continue
		}
		if prev, ok := first[c]; !ok || idx < prev {
			first[c] = idx
		}
	}

	out := make([]models.Currency, 0, len(first))
	for c := range first {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if first[out[i]] != first[out[j]] {
			return first[out[i]] < first[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

// tokenize lowercases s and turns everything but letters, digits and apostrophes into single spaces.
func tokenize(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}
