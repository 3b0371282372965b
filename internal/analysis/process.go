package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/duetsim/duet/pkg/models"
)

// Row is one analyzed log entry: the original fields plus metrics and
// lexicon counts.
type Row struct {
	Entry         models.LogEntry
	Metrics       Metrics
	LexiconCounts map[string]int
}

// ProcessEntries computes metrics (and lexicon counts when lex is
// non-empty) for every entry.
func ProcessEntries(entries []models.LogEntry, lex Lexicon) ([]Row, error) {
	rows := make([]Row, 0, len(entries))
	for i, e := range entries {
		m, err := AnalyzeText(e.Content)
		if err != nil {
			return nil, fmt.Errorf("analyze entry %d: %w", i, err)
		}
		row := Row{Entry: e, Metrics: m}
		if len(lex) > 0 {
			row.LexiconCounts = lex.Count(e.Content)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// entryColumns is the flat log entry schema in column order, matching
// the JSONL field names.
var entryColumns = []string{
	"experiment_id", "turn_id", "scenario", "speaker_model",
	"responder_model", "timestamp", "latency_ms", "input_tokens",
	"output_tokens", "content", "finish_reason", "is_refusal",
	"system_prompt_snapshot",
}

// metricColumns is the stylometric column order.
var metricColumns = []string{
	"token_count", "sentence_count", "avg_sentence_length",
	"noun_ratio", "verb_ratio", "adj_ratio", "adv_ratio", "pron_ratio",
}

// WriteCSV writes analyzed rows as CSV: the flat entry schema, the
// metric columns, then one column per lexicon category in definition
// order.
func WriteCSV(w io.Writer, rows []Row, lex Lexicon) error {
	cw := csv.NewWriter(w)

	header := append([]string{}, entryColumns...)
	header = append(header, metricColumns...)
	header = append(header, lex.Names()...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i, row := range rows {
		record := entryRecord(row.Entry)
		record = append(record,
			strconv.Itoa(row.Metrics.TokenCount),
			strconv.Itoa(row.Metrics.SentenceCount),
			formatFloat(row.Metrics.AvgSentenceLength),
			formatFloat(row.Metrics.NounRatio),
			formatFloat(row.Metrics.VerbRatio),
			formatFloat(row.Metrics.AdjRatio),
			formatFloat(row.Metrics.AdvRatio),
			formatFloat(row.Metrics.PronRatio),
		)
		for _, name := range lex.Names() {
			record = append(record, strconv.Itoa(row.LexiconCounts[name]))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteEntriesCSV writes raw log entries as a flat CSV with no analysis
// columns.
func WriteEntriesCSV(w io.Writer, entries []models.LogEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(entryColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, e := range entries {
		if err := cw.Write(entryRecord(e)); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func entryRecord(e models.LogEntry) []string {
	return []string{
		e.ExperimentID,
		strconv.Itoa(e.TurnID),
		e.Scenario,
		e.SpeakerModel,
		e.ResponderModel,
		e.Timestamp,
		formatFloat(e.LatencyMS),
		strconv.FormatInt(e.InputTokens, 10),
		strconv.FormatInt(e.OutputTokens, 10),
		e.Content,
		e.FinishReason,
		strconv.FormatBool(e.IsRefusal),
		e.SystemPromptSnapshot,
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// SpeakerSummary aggregates rows for one speaker model.
type SpeakerSummary struct {
	SpeakerModel    string
	Entries         int
	AvgLatencyMS    float64
	AvgOutputTokens float64
	AvgNounRatio    float64
	AvgVerbRatio    float64
	AvgAdjRatio     float64
	AvgAdvRatio     float64
	AvgPronRatio    float64
	// AvgLexicon holds mean per-entry counts by category name.
	AvgLexicon map[string]float64
}

// Summarize groups analyzed rows by speaker_model and averages the
// numeric columns, sorted by model id for stable output.
func Summarize(rows []Row, lex Lexicon) []SpeakerSummary {
	byModel := make(map[string][]Row)
	for _, r := range rows {
		byModel[r.Entry.SpeakerModel] = append(byModel[r.Entry.SpeakerModel], r)
	}

	names := make([]string, 0, len(byModel))
	for name := range byModel {
		names = append(names, name)
	}
	sort.Strings(names)

	summaries := make([]SpeakerSummary, 0, len(names))
	for _, name := range names {
		group := byModel[name]
		s := SpeakerSummary{
			SpeakerModel: name,
			Entries:      len(group),
			AvgLexicon:   make(map[string]float64, len(lex)),
		}
		n := float64(len(group))
		for _, r := range group {
			s.AvgLatencyMS += r.Entry.LatencyMS / n
			s.AvgOutputTokens += float64(r.Entry.OutputTokens) / n
			s.AvgNounRatio += r.Metrics.NounRatio / n
			s.AvgVerbRatio += r.Metrics.VerbRatio / n
			s.AvgAdjRatio += r.Metrics.AdjRatio / n
			s.AvgAdvRatio += r.Metrics.AdvRatio / n
			s.AvgPronRatio += r.Metrics.PronRatio / n
			for _, cat := range lex.Names() {
				s.AvgLexicon[cat] += float64(r.LexiconCounts[cat]) / n
			}
		}
		summaries = append(summaries, s)
	}
	return summaries
}
