package inference

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// typeNamer generates a base type name for a derived nested object. fromArray
// distinguishes array-derived nested types, which some strategies name
// differently at depth.
type typeNamer interface {
	typeName(parentType, fieldName string, depth int, fromArray bool) string
}

// hierarchicalNamer produces ParentFieldName.
type hierarchicalNamer struct{}

func (hierarchicalNamer) typeName(parentType, fieldName string, depth int, fromArray bool) string {
	return parentType + capitalize(fieldName)
}

// flatNamer produces bare FieldName. Array-derived names deeper than two
// levels carry the parent's initials so unrelated deep arrays cannot
// accidentally share a name.
type flatNamer struct{}

func (flatNamer) typeName(parentType, fieldName string, depth int, fromArray bool) string {
	if fromArray && depth > 2 {
		return initials(parentType) + capitalize(fieldName)
	}
	return capitalize(fieldName)
}

// shortNamer compresses names as nesting deepens: hierarchical near the root,
// parent initials in the middle, vowel-stripped abbreviations past depth 3.
type shortNamer struct{}

func (shortNamer) typeName(parentType, fieldName string, depth int, fromArray bool) string {
	switch {
	case depth > 3:
		return abbreviate(parentType) + abbreviate(capitalize(fieldName))
	case depth > 1:
		return initials(parentType) + capitalize(fieldName)
	default:
		return parentType + capitalize(fieldName)
	}
}

// customNamer adapts a user-supplied NamingFunc to the namer capability.
type customNamer struct {
	fn NamingFunc
}

func (n customNamer) typeName(parentType, fieldName string, depth int, fromArray bool) string {
	return n.fn(parentType, fieldName, depth)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return cases.Title(language.Und, cases.NoLower).String(s)
}

// initials collects the uppercase rune of each capitalized segment:
// "UserHomeAddress" -> "UHA".
func initials(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// abbreviate strips vowels after the first rune and truncates to four runes.
func abbreviate(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	out := []rune{runes[0]}
	for _, r := range runes[1:] {
		if strings.ContainsRune("aeiouAEIOU", r) {
			continue
		}
		out = append(out, r)
		if len(out) == 4 {
			break
		}
	}
	return string(out)
}

// singularExclusions are suffixes that look plural but are not.
var singularExclusions = []string{"ss", "ous", "us", "is"}

// singularize trims a regular plural suffix from an array-derived field name.
func singularize(s string) string {
	lower := strings.ToLower(s)
	for _, suf := range singularExclusions {
		if strings.HasSuffix(lower, suf) {
			return s
		}
	}
	if strings.HasSuffix(lower, "ies") && len(s) > 3 {
		return s[:len(s)-3] + "y"
	}
	if strings.HasSuffix(lower, "s") && len(s) > 1 {
		return s[:len(s)-1]
	}
	return s
}
