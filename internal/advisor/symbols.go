package advisor

import "strings"

// stopwords are uppercase tokens that look ticker-shaped but are plain
// English in practice.
var stopwords = map[string]bool{
	"A": true, "AN": true, "AND": true, "ARE": true, "BUY": true,
	"CAN": true, "DO": true, "FOR": true, "HOW": true, "IS": true,
	"IT": true, "ME": true, "MY": true, "OF": true, "ON": true,
	"OR": true, "SELL": true, "THE": true, "TO": true, "WHAT": true,
	"WHY": true, "YOU": true,
}

// ExtractTickers scans free text for ticker-shaped tokens: runs of capitals
// and digits, optionally with an exchange suffix like ".NS" or ".BO". Only
// tokens the user already wrote in uppercase count; returns them deduplicated
// in order of appearance.
func ExtractTickers(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.')
	})

	seen := make(map[string]bool)
	var result []string
	for _, w := range words {
		w = strings.Trim(w, ".")
		if w == "" || stopwords[w] {
			continue
		}
		if !isTickerShaped(w) {
			continue
		}
		if !seen[w] {
			seen[w] = true
			result = append(result, w)
		}
	}
	return result
}

func isTickerShaped(w string) bool {
	base, suffix, hasSuffix := strings.Cut(w, ".")
	if len(base) < 2 || len(base) > 10 {
		return false
	}
	hasLetter := false
	for _, r := range base {
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		} else if r < '0' || r > '9' {
			return false
		}
	}
	// A bare number is not a ticker, but numeric codes with an exchange
	// suffix (BSE scrip codes like 500325.BO) are.
	if !hasLetter && !hasSuffix {
		return false
	}
	if hasSuffix {
		if len(suffix) < 1 || len(suffix) > 3 || strings.Contains(suffix, ".") {
			return false
		}
		for _, r := range suffix {
			if r < 'A' || r > 'Z' {
				return false
			}
		}
	}
	return true
}
