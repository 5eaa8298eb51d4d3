package records

import (
	"html"
	"sort"
	"strings"
)

// mojibakePairs maps UTF-8 byte sequences misread as Windows-1252 back to
// the characters the export meant. Multi-byte victims come first so the
// replacer never clips them with a shorter match.
var mojibakePairs = []string{
	"â‚¬", "€",
	"â€“", "–",
	"â€”", "—",
	"â€™", "’",
	"â€˜", "‘",
	"â€œ", "“",
	"â€�", "”",
	"Ã„", "Ä",
	"Ã–", "Ö",
	"Ãœ", "Ü",
	"Ã¤", "ä",
	"Ã¶", "ö",
	"Ã¼", "ü",
	"ÃŸ", "ß",
	"Ã©", "é",
	"Ã¨", "è",
	"Ãª", "ê",
	"Ã«", "ë",
	"Ã¡", "á",
	"Ã ", "à",
	"Ã¢", "â",
	"Ã§", "ç",
	"Ã±", "ñ",
	"Ã³", "ó",
	"Ãº", "ú",
	"Ã®", "î",
	"Ã´", "ô",
	"Ã»", "û",
	"Ã¯", "ï",
	"Â«", "«",
	"Â»", "»",
	"Â°", "°",
}

// Repairer rewrites a raw field into clean display text. Repair is total:
// text with nothing to fix passes through unchanged.
type Repairer struct {
	replacer *strings.Replacer
}

// NewRepairer builds the repair chain. Caller-supplied pairs take
// precedence over the built-in mojibake table.
func NewRepairer(extra map[string]string) *Repairer {
	pairs := make([]string, 0, len(extra)*2+len(mojibakePairs))
	for _, from := range sortedKeys(extra) {
		pairs = append(pairs, from, extra[from])
	}
	pairs = append(pairs, mojibakePairs...)
	return &Repairer{replacer: strings.NewReplacer(pairs...)}
}

// Repair applies mojibake substitution, HTML entity decoding and whitespace
// trimming, in that order.
func (r *Repairer) Repair(field string) string {
	field = r.replacer.Replace(field)
	field = html.UnescapeString(field)
	return strings.TrimSpace(field)
}

// sortedKeys keeps caller pair ordering deterministic; longer keys first so
// overlapping custom patterns behave like the built-in table.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}
