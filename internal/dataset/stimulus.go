package dataset

import (
	"regexp"
	"sort"
	"strings"
)

// stimulusAliases maps each canonical stimulus type to the spellings that
// appear in recording mark files. Matching checks whether an alias occurs
// as a substring of the cleaned or raw lowercased mark name; an earlier
// variant of this
// lookup tested the alias against the type key instead, which never
// matched anything but the key itself.
var stimulusAliases = map[string][]string{
	"water":     {"acqua piante"},
	"H2SO":      {"h2so"},
	"ozone":     {"ozone", "ozono", "o3"},
	"NaCL":      {"nacl"},
	"light-on":  {"light-on"},
	"light-off": {"light-off"},
}

var trailingDigits = regexp.MustCompile(`_?\d+$`)

// CleanStimulusName normalizes a raw mark name: trailing digits (with an
// optional underscore) are stripped and the result lowercased, so
// "Ozono_3" and "ozono12" both clean to "ozono".
func CleanStimulusName(name string) string {
	return strings.ToLower(trailingDigits.ReplaceAllString(strings.TrimSpace(name), ""))
}

// MatchStimulusType resolves a raw mark name to a canonical stimulus type.
// Aliases are checked against both the digit-stripped form and the raw
// lowercased name: a mark named exactly "O3" would otherwise lose the
// alias itself to the counter-suffix strip. Types are tried in sorted
// order so an ambiguous name resolves the same way every run. The second
// return is false when no alias matches; such marks are ignored by the
// loaders.
func MatchStimulusType(name string) (string, bool) {
	raw := strings.ToLower(strings.TrimSpace(name))
	cleaned := CleanStimulusName(name)
	types := make([]string, 0, len(stimulusAliases))
	for typ := range stimulusAliases {
		types = append(types, typ)
	}
	sort.Strings(types)
	for _, typ := range types {
		for _, alias := range stimulusAliases[typ] {
			if strings.Contains(cleaned, alias) || strings.Contains(raw, alias) {
				return typ, true
			}
		}
	}
	return "", false
}

// StimulusTypes returns the canonical stimulus vocabulary, plus the null
// label used for stimulus-free segments.
func StimulusTypes() []string {
	types := make([]string, 0, len(stimulusAliases)+1)
	types = append(types, LabelNull)
	for typ := range stimulusAliases {
		types = append(types, typ)
	}
	sort.Strings(types[1:])
	return types
}
