package indexfilter

import (
	"log/slog"
	"regexp"
	"strings"

	wildcard "github.com/IGLOU-EU/go-wildcard/v2"
)

// regexPrefix tags a configured pattern as a regular expression instead
// of a glob.
const regexPrefix = "regex:"

// Pattern is a single compiled index pattern. Patterns come in two kinds,
// resolved once at construction: a shell-style glob (`*` and `?`) matched
// against the entire index name, or a `regex:`-prefixed regular expression
// matched anchored at the start of the name. The regex kind deliberately
// keeps prefix-match semantics (a pattern without a trailing `$` matches
// partial prefixes); glob patterns always match the full name.
type Pattern struct {
	raw     string
	re      *regexp.Regexp // regex kind, or a glob with ? (anchored both ends)
	invalid bool           // regex failed to compile; never matches
}

// CompilePattern resolves a raw configured pattern string into a Pattern.
// A malformed regex is logged at error level and yields a pattern that
// never matches; it is not a fatal condition.
func CompilePattern(raw string, logger *slog.Logger) Pattern {
	if logger == nil {
		logger = slog.Default()
	}

	expr, ok := strings.CutPrefix(raw, regexPrefix)
	if !ok {
		// The wildcard library treats ? as zero-or-one characters;
		// shell glob semantics require exactly one. Globs containing ?
		// compile to an anchored regexp instead.
		if strings.Contains(raw, "?") {
			return Pattern{raw: raw, re: globRegexp(raw)}
		}
		return Pattern{raw: raw}
	}

	// \A(?:...) anchors the match at the start of the name without
	// changing what the expression itself consumes.
	re, err := regexp.Compile(`\A(?:` + expr + `)`)
	if err != nil {
		logger.Error("invalid regex index pattern", "pattern", expr, "error", err)
		return Pattern{raw: raw, invalid: true}
	}
	return Pattern{raw: raw, re: re}
}

// globRegexp translates a glob into a fully anchored regular expression:
// * becomes .*, ? becomes exactly one character, everything else is
// literal.
func globRegexp(glob string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString(`\A`)
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteByte('.')
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`\z`)
	return regexp.MustCompile(b.String())
}

// Matches reports whether name matches the pattern. Matching is
// case-sensitive and never faults.
func (p Pattern) Matches(name string) bool {
	if p.invalid {
		return false
	}
	if p.re != nil {
		return p.re.MatchString(name)
	}
	return wildcard.Match(p.raw, name)
}

// String returns the pattern as configured, including any regex: prefix.
func (p Pattern) String() string {
	return p.raw
}
