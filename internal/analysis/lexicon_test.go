package analysis

import "testing"

const defaultLexicon = `Positive: love, great, happy, good
Negative: hate, bad, sad, terrible
Hesitation: um, uh, er, maybe, perhaps`

func TestParseLexicon(t *testing.T) {
	lex := ParseLexicon(defaultLexicon)

	if len(lex) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(lex))
	}
	wantNames := []string{"Positive", "Negative", "Hesitation"}
	for i, name := range lex.Names() {
		if name != wantNames[i] {
			t.Errorf("category %d = %q, want %q (definition order)", i, name, wantNames[i])
		}
	}
	if len(lex[0].Words) != 4 {
		t.Errorf("Positive has %d words, want 4", len(lex[0].Words))
	}
	if lex[2].Words[0] != "um" {
		t.Errorf("first Hesitation word = %q, want 'um'", lex[2].Words[0])
	}
}

func TestParseLexiconSkipsMalformedLines(t *testing.T) {
	lex := ParseLexicon("no colon here\n\nGood: yes, yay\n: orphan words")
	if len(lex) != 1 {
		t.Fatalf("expected 1 category, got %d", len(lex))
	}
	if lex[0].Name != "Good" {
		t.Errorf("category = %q, want 'Good'", lex[0].Name)
	}
}

func TestLexiconValidateDuplicates(t *testing.T) {
	lex := ParseLexicon("A: x\nA: y")
	if err := lex.Validate(); err == nil {
		t.Error("expected duplicate category error")
	}
	if err := ParseLexicon(defaultLexicon).Validate(); err != nil {
		t.Errorf("unexpected error for valid lexicon: %v", err)
	}
}

func TestLexiconCount(t *testing.T) {
	lex := ParseLexicon(defaultLexicon)

	counts := lex.Count("I love this. Love it! Um, maybe it is good, um good good.")

	// Whitespace-split tokens, lowercased: "love" matches twice, the
	// bare "good" and "um" once each ("good," "good." "Um," keep their
	// punctuation and do not match), "maybe" once.
	if counts["Positive"] != 3 {
		t.Errorf("Positive = %d, want 3", counts["Positive"])
	}
	if counts["Negative"] != 0 {
		t.Errorf("Negative = %d, want 0", counts["Negative"])
	}
	if counts["Hesitation"] != 2 {
		t.Errorf("Hesitation = %d, want 2", counts["Hesitation"])
	}
}

func TestLexiconCountExactTokens(t *testing.T) {
	lex := Lexicon{{Name: "Greeting", Words: []string{"hello"}}}

	if got := lex.Count("hello hello HELLO")["Greeting"]; got != 3 {
		t.Errorf("count = %d, want 3 (case-insensitive exact tokens)", got)
	}
	// Punctuation-attached tokens do not match under whitespace splitting.
	if got := lex.Count("hello, hello!")["Greeting"]; got != 0 {
		t.Errorf("count = %d, want 0 for punctuation-attached tokens", got)
	}
	// Substrings never match.
	if got := lex.Count("hellos othello")["Greeting"]; got != 0 {
		t.Errorf("count = %d, want 0 for substrings", got)
	}
}

func TestLexiconCountEmptyText(t *testing.T) {
	lex := ParseLexicon(defaultLexicon)
	counts := lex.Count("")
	for name, c := range counts {
		if c != 0 {
			t.Errorf("category %q = %d on empty text, want 0", name, c)
		}
	}
	if len(counts) != 3 {
		t.Errorf("expected all categories present with zero counts, got %d", len(counts))
	}
}
