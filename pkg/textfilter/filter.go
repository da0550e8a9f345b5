// Package textfilter keeps generated narrative family-friendly. Stage
// stories are shown to players as young as grade school, and the generation
// backend occasionally slips in language the static fallback bank never
// would; filtering runs on generated text only.
package textfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Words that must not reach players, with family-friendly alternatives.
var replacements = map[string]string{
	"fuck":         "fudge",
	"shit":         "shoot",
	"damn":         "dang",
	"hell":         "heck",
	"ass":          "butt",
	"bitch":        "jerk",
	"bastard":      "jerk",
	"crap":         "crud",
	"piss":         "ticked",
	"goddamn":      "gosh-dang",
	"asshole":      "jerk",
	"dumbass":      "dummy",
	"jackass":      "jerk",
	"badass":       "tough",
	"bullshit":     "baloney",
	"motherfucker": "mother-trucker",
	"prick":        "jerk",
}

// Filter replaces flagged words with family-friendly alternatives,
// preserving the original casing.
type Filter struct {
	regexes map[string]*regexp.Regexp
}

// New creates a filter with pre-compiled word patterns.
func New() *Filter {
	f := &Filter{
		regexes: make(map[string]*regexp.Regexp, len(replacements)),
	}
	for word := range replacements {
		f.regexes[word] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	}
	return f
}

// Clean replaces flagged words in text with their alternatives.
func (f *Filter) Clean(text string) string {
	result := text
	for word, replacement := range replacements {
		result = f.regexes[word].ReplaceAllStringFunc(result, func(match string) string {
			return preserveCase(match, replacement)
		})
	}
	return result
}

// preserveCase applies the case pattern of the original word to the replacement
func preserveCase(original, replacement string) string {
	if original == "" {
		return replacement
	}

	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}
	if strings.ToLower(original) == original {
		return strings.ToLower(replacement)
	}

	titleCaser := cases.Title(language.English)
	if titleCaser.String(strings.ToLower(original)) == original {
		return titleCaser.String(replacement)
	}

	// Mixed case: carry the original's per-character casing as far as it goes.
	originalRunes := []rune(original)
	result := make([]rune, 0, len(replacement))
	for i, r := range replacement {
		if i < len(originalRunes) && unicode.IsUpper(originalRunes[i]) {
			result = append(result, unicode.ToUpper(r))
		} else {
			result = append(result, unicode.ToLower(r))
		}
	}
	return string(result)
}
