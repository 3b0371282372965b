// Package analysis provides stylometric metrics and custom lexicon counts
// over conversation logs. Metrics are stateless batch transforms; they
// consume log entries and never feed back into a running simulation.
package analysis

import (
	"strings"

	prose "github.com/jdkato/prose/v2"
)

// Metrics are the per-text stylometric measurements. Ratios are over the
// total token count and use the universal tagset buckets.
type Metrics struct {
	TokenCount        int     `json:"token_count"`
	SentenceCount     int     `json:"sentence_count"`
	AvgSentenceLength float64 `json:"avg_sentence_length"`
	NounRatio         float64 `json:"noun_ratio"`
	VerbRatio         float64 `json:"verb_ratio"`
	AdjRatio          float64 `json:"adj_ratio"`
	AdvRatio          float64 `json:"adv_ratio"`
	PronRatio         float64 `json:"pron_ratio"`
}

// AnalyzeText computes stylometric metrics for one text. Empty text
// yields zero metrics without error.
func AnalyzeText(text string) (Metrics, error) {
	if strings.TrimSpace(text) == "" {
		return Metrics{}, nil
	}

	doc, err := prose.NewDocument(text, prose.WithExtraction(false))
	if err != nil {
		return Metrics{}, err
	}

	tokens := doc.Tokens()
	sentences := doc.Sentences()
	total := len(tokens)

	var nouns, verbs, adjs, advs, prons int
	for _, tok := range tokens {
		switch universalTag(tok.Tag) {
		case "NOUN":
			nouns++
		case "VERB":
			verbs++
		case "ADJ":
			adjs++
		case "ADV":
			advs++
		case "PRON":
			prons++
		}
	}

	m := Metrics{
		TokenCount:    total,
		SentenceCount: len(sentences),
	}
	if len(sentences) > 0 {
		m.AvgSentenceLength = float64(total) / float64(len(sentences))
	}
	if total > 0 {
		m.NounRatio = float64(nouns) / float64(total)
		m.VerbRatio = float64(verbs) / float64(total)
		m.AdjRatio = float64(adjs) / float64(total)
		m.AdvRatio = float64(advs) / float64(total)
		m.PronRatio = float64(prons) / float64(total)
	}
	return m, nil
}

// universalTag collapses a Penn Treebank tag into its universal tagset
// bucket. Tags outside the tracked buckets return "".
func universalTag(penn string) string {
	switch penn {
	case "NN", "NNS", "NNP", "NNPS":
		return "NOUN"
	case "VB", "VBD", "VBG", "VBN", "VBP", "VBZ", "MD":
		return "VERB"
	case "JJ", "JJR", "JJS":
		return "ADJ"
	case "RB", "RBR", "RBS", "WRB":
		return "ADV"
	case "PRP", "PRP$", "WP", "WP$":
		return "PRON"
	default:
		return ""
	}
}
