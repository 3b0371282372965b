package analysis

import (
	"fmt"
	"strings"
)

// Category is one user-defined lexicon category: a name and the words
// counted under it.
type Category struct {
	Name  string
	Words []string
}

// Lexicon is an ordered set of categories. Order is preserved so CSV
// columns come out in definition order.
type Lexicon []Category

// ParseLexicon parses a lexicon definition, one category per line in the
// form "Category: word1, word2". Blank lines and lines without a colon
// are skipped.
func ParseLexicon(input string) Lexicon {
	var lex Lexicon
	for _, line := range strings.Split(input, "\n") {
		name, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		var words []string
		for _, w := range strings.Split(rest, ",") {
			if w = strings.TrimSpace(w); w != "" {
				words = append(words, w)
			}
		}
		lex = append(lex, Category{Name: name, Words: words})
	}
	return lex
}

// Names returns the category names in definition order.
func (l Lexicon) Names() []string {
	names := make([]string, len(l))
	for i, c := range l {
		names[i] = c.Name
	}
	return names
}

// Validate reports duplicate category names.
func (l Lexicon) Validate() error {
	seen := make(map[string]bool, len(l))
	for _, c := range l {
		if seen[c.Name] {
			return fmt.Errorf("duplicate lexicon category %q", c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

// Count returns per-category occurrence counts for one text. Matching is
// case-insensitive over whitespace-split tokens; a token must equal the
// word exactly.
func (l Lexicon) Count(text string) map[string]int {
	tokens := strings.Fields(strings.ToLower(text))

	counts := make(map[string]int, len(l))
	for _, c := range l {
		counts[c.Name] = 0
		for _, word := range c.Words {
			w := strings.ToLower(word)
			for _, tok := range tokens {
				if tok == w {
					counts[c.Name]++
				}
			}
		}
	}
	return counts
}
