package moderation

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultTerms are blocked unconditionally.
var DefaultTerms = []string{
	"kill",
	"kill myself",
	"murder",
	"suicide",
	"suicidal",
	"self-harm",
	"selfharm",
	"cut myself",
	"hurt myself",
	"rape",
	"porn",
	"porno",
	"pornography",
	"sex",
	"sexy",
	"nude",
	"nudes",
	"naked",
	"xxx",
	"cocaine",
	"heroin",
	"meth",
	"fentanyl",
	"fuck",
	"fucking",
	"shit",
	"bitch",
	"bastard",
}

// LifestyleTerms are only blocked in strict mode. They show up in ordinary
// history and health lessons, so they are opt-in.
var LifestyleTerms = []string{
	"beer",
	"wine",
	"vodka",
	"whiskey",
	"alcohol",
	"drunk",
	"weed",
	"marijuana",
	"cigarette",
	"cigarettes",
	"vape",
	"smoking",
	"drugs",
}

// wordSep is any Unicode whitespace. \s alone is ASCII only in RE2.
const wordSep = `[\s\v\p{Z}\x{0085}]`

type termPattern struct {
	term string
	re   *regexp.Regexp
}

// Blocklist matches whole words only: a term must be surrounded by whitespace
// or the ends of the text, so "skill" never trips "kill". It is immutable once
// built and safe for concurrent use.
type Blocklist struct {
	patterns []termPattern
}

// NewBlocklist lowercases, trims and de-duplicates terms, keeping the first
// occurrence order.
func NewBlocklist(terms ...[]string) *Blocklist {
	seen := make(map[string]struct{})
	bl := &Blocklist{}
	for _, group := range terms {
		for _, raw := range group {
			term := strings.ToLower(strings.TrimSpace(raw))
			if term == "" {
				continue
			}
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			bl.patterns = append(bl.patterns, termPattern{
				term: term,
				re:   regexp.MustCompile(`(?i)(^|` + wordSep + `)` + regexp.QuoteMeta(term) + `(` + wordSep + `|$)`),
			})
		}
	}
	return bl
}

// Match returns the first term found in text.
func (b *Blocklist) Match(text string) (string, bool) {
	if b == nil {
		return "", false
	}
	lowered := strings.Map(foldSpace, strings.ToLower(text))
	for _, p := range b.patterns {
		if p.re.MatchString(lowered) {
			return p.term, true
		}
	}
	return "", false
}

// foldSpace maps every Unicode space to ' ' so multi-word terms match across
// no-break and ideographic spaces too.
func foldSpace(r rune) rune {
	if unicode.IsSpace(r) || unicode.Is(unicode.Z, r) {
		return ' '
	}
	return r
}

// Terms returns a copy of the compiled terms in match order.
func (b *Blocklist) Terms() []string {
	out := make([]string, 0, len(b.patterns))
	for _, p := range b.patterns {
		out = append(out, p.term)
	}
	return out
}

// ParseTerms splits a comma separated list such as MODERATION_EXTRA_TERMS.
func ParseTerms(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
