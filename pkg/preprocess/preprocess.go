// Package preprocess normalizes raw source text into comparison-ready
// form: comments and imports stripped, whitespace collapsed, and
// optionally identifiers anonymized into positional placeholders.
package preprocess

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"
)

// DefaultMaxChars is the character budget applied before downstream
// scoring. Truncation happens at a raw character offset, not a token
// boundary; this is a tunable, not a hidden constant.
const DefaultMaxChars = 10000

// DefaultMinTokens is the minimum token count a normalized file must
// reach to take part in comparison. Shorter files are noise, not errors.
const DefaultMinTokens = 10

var (
	identRe  = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
	stringRe = regexp.MustCompile(`"[^"\n]*"|'[^'\n]*'` + "|`[^`]*`")
	numberRe = regexp.MustCompile(`\b\d+(\.\d+)?\b`)
)

// Normalizer applies the preprocessing pipeline for one language.
// Normalize is pure and deterministic; a Normalizer is safe for
// concurrent use.
type Normalizer struct {
	lang       Language
	aggressive bool
	maxChars   int
	minTokens  int
}

// Option is a functional option for configuring Normalizer.
type Option func(*Normalizer)

// WithAggressive enables identifier anonymization.
func WithAggressive(on bool) Option {
	return func(n *Normalizer) {
		n.aggressive = on
	}
}

// WithMaxChars sets the character budget for truncation.
func WithMaxChars(max int) Option {
	return func(n *Normalizer) {
		if max > 0 {
			n.maxChars = max
		}
	}
}

// WithMinTokens sets the comparison-eligibility token floor.
func WithMinTokens(min int) Option {
	return func(n *Normalizer) {
		if min > 0 {
			n.minTokens = min
		}
	}
}

// New creates a Normalizer for the named language.
func New(language string, opts ...Option) (*Normalizer, error) {
	lang, ok := Lookup(language)
	if !ok {
		return nil, fmt.Errorf("unknown language %q (supported: %s)",
			language, strings.Join(Supported(), ", "))
	}
	n := &Normalizer{
		lang:      lang,
		maxChars:  DefaultMaxChars,
		minTokens: DefaultMinTokens,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Language returns the language variant this normalizer was built for.
func (n *Normalizer) Language() Language {
	return n.lang
}

// Normalize runs the full pipeline: strip comments, strip imports,
// optionally anonymize identifiers, collapse whitespace, truncate.
func (n *Normalizer) Normalize(raw string) string {
	text := n.stripComments(raw)
	text = n.stripImports(text)
	if n.aggressive {
		text = n.anonymize(text)
	}
	text = collapseWhitespace(text)
	// Truncation is by character offset, so it must not split a rune.
	if runes := []rune(text); len(runes) > n.maxChars {
		text = string(runes[:n.maxChars])
	}
	return text
}

// Comparable reports whether a normalized text meets the minimum token
// count. Excluded files are treated as noise, not errors.
func (n *Normalizer) Comparable(normalized string) bool {
	return len(strings.Fields(normalized)) >= n.minTokens
}

func (n *Normalizer) stripComments(text string) string {
	for _, re := range n.lang.blockComments {
		text = re.ReplaceAllString(text, " ")
	}
	for _, re := range n.lang.lineComments {
		text = re.ReplaceAllString(text, "")
	}
	return text
}

func (n *Normalizer) stripImports(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		skip := false
		for _, prefix := range n.lang.importPrefixes {
			if strings.HasPrefix(trimmed, prefix) {
				skip = true
				break
			}
		}
		if !skip {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// anonymize replaces string literals with S, numbers with N, and every
// non-keyword identifier with a positional placeholder (ID_0, ID_1, ...)
// assigned in first-seen order, so two renamed-but-structurally-identical
// files normalize to the same text.
func (n *Normalizer) anonymize(text string) string {
	text = stringRe.ReplaceAllString(text, "S")
	text = numberRe.ReplaceAllString(text, "N")

	seen := make(map[string]string)
	next := 0
	return identRe.ReplaceAllStringFunc(text, func(word string) string {
		if _, ok := n.lang.keywords[word]; ok {
			return word
		}
		if word == "S" || word == "N" {
			return word
		}
		placeholder, ok := seen[word]
		if !ok {
			placeholder = "ID_" + strconv.Itoa(next)
			seen[word] = placeholder
			next++
		}
		return placeholder
	})
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Fingerprint hashes a normalized text. Identical fingerprints allow
// scoring to short-circuit without an embedding call.
func Fingerprint(normalized string) [32]byte {
	return blake3.Sum256([]byte(normalized))
}
