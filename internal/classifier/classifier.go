// Package classifier assigns a spending category to a bank transaction
// title using an ordered list of regular expressions.
package classifier

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Unknown is returned when no rule matches.
const Unknown = "UNKNOWN"

// metadataMarker starts the block of transaction metadata mBank appends to titles.
const metadataMarker = "DATA TRANSAKCJI"

// Rule maps titles matching Pattern to Category.
type Rule struct {
	Pattern  *regexp.Regexp
	Category string
}

// R compiles a rule; it panics on a bad pattern, so use it for static tables only.
func R(pattern, category string) Rule {
	return Rule{Pattern: regexp.MustCompile(pattern), Category: category}
}

// Classifier evaluates rules in order; the first match wins, so specific
// rules must come before broad ones.
type Classifier struct {
	rules []Rule
}

func New(rules []Rule) *Classifier {
	return &Classifier{rules: append([]Rule(nil), rules...)}
}

var defaultClassifier = New(defaultRules)

// Default returns the classifier with the built-in Polish merchant rules.
func Default() *Classifier {
	return defaultClassifier
}

// Classify returns the category for a raw title, or Unknown.
func (c *Classifier) Classify(rawTitle string) string {
	if strings.TrimSpace(rawTitle) == "" {
		return Unknown
	}
	title := NormalizeTitle(rawTitle)
	for _, r := range c.rules {
		if r.Pattern.MatchString(title) {
			return r.Category
		}
	}
	return Unknown
}

var (
	stripMarks   = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	disallowed   = regexp.MustCompile(`[^A-Za-z0-9 .&]+`)
	multiSpace   = regexp.MustCompile(`\s+`)
	slashReplace = strings.NewReplacer("/", " ", `\`, " ")
)

// NormalizeTitle drops the appended metadata, strips diacritics, keeps
// only ASCII letters, digits, dots and ampersands, collapses whitespace and
// upper-cases the result. "Ł" has no decomposition and becomes a space.
func NormalizeTitle(s string) string {
	if idx := strings.Index(s, metadataMarker); idx >= 0 {
		s = s[:idx]
	}
	if stripped, _, err := transform.String(stripMarks, s); err == nil {
		s = stripped
	}
	s = slashReplace.Replace(s)
	s = disallowed.ReplaceAllString(s, " ")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.ToUpper(strings.TrimSpace(s))
}
