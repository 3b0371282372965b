package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/duetsim/duet/internal/analysis"
	"github.com/duetsim/duet/internal/config"
	"github.com/duetsim/duet/internal/orchestrator"
)

var (
	analyzeLexicon string
	analyzeOut     string
	analyzeSummary bool
	analyzeWatch   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [log.jsonl]",
	Short: "Compute linguistic metrics from an experiment log",
	Long: `Analyze a JSONL experiment log.

Every entry is tagged for part of speech and scored: token and sentence
counts, average sentence length, and noun/verb/adjective/adverb/pronoun
ratios. A custom lexicon file ("Category: word1, word2" per line) adds
per-category word counts.

The default output is a per-turn CSV combining the log fields with the
computed metrics. --summary prints per-model averages instead, and
--watch keeps running, re-analyzing whenever the log file changes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeLexicon, "lexicon", "", "Path to a custom lexicon file")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "CSV output path (default: stdout)")
	analyzeCmd.Flags().BoolVar(&analyzeSummary, "summary", false, "Print per-model averages instead of per-turn CSV")
	analyzeCmd.Flags().BoolVar(&analyzeWatch, "watch", false, "Re-run the analysis whenever the log changes")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logPath := cfg.LogPath()
	if len(args) == 1 {
		logPath = args[0]
	}

	var lex analysis.Lexicon
	if analyzeLexicon != "" {
		data, err := os.ReadFile(analyzeLexicon)
		if err != nil {
			return fmt.Errorf("read lexicon: %w", err)
		}
		lex = analysis.ParseLexicon(string(data))
		if err := lex.Validate(); err != nil {
			return fmt.Errorf("invalid lexicon: %w", err)
		}
	}

	if err := analyzeOnce(logPath, lex); err != nil {
		return err
	}
	if !analyzeWatch {
		return nil
	}
	return watchAndAnalyze(logPath, lex)
}

// analyzeOnce reads the log, computes metrics, and emits either the
// per-turn CSV or the per-model summary.
func analyzeOnce(logPath string, lex analysis.Lexicon) error {
	entries, err := orchestrator.ReadEntries(logPath)
	if err != nil {
		return fmt.Errorf("read log: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintf(os.Stderr, "no entries in %s\n", logPath)
		return nil
	}

	rows, err := analysis.ProcessEntries(entries, lex)
	if err != nil {
		return fmt.Errorf("analyze entries: %w", err)
	}

	if analyzeSummary {
		printSummaries(analysis.Summarize(rows, lex), lex)
		return nil
	}

	out := os.Stdout
	if analyzeOut != "" {
		f, err := os.Create(analyzeOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := analysis.WriteCSV(out, rows, lex); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if analyzeOut != "" {
		fmt.Printf("%s %d rows written to %s\n", color.GreenString("✓"), len(rows), analyzeOut)
	}
	return nil
}

func printSummaries(summaries []analysis.SpeakerSummary, lex analysis.Lexicon) {
	for _, s := range summaries {
		color.New(color.Bold).Printf("%s (%d entries)\n", s.SpeakerModel, s.Entries)
		fmt.Printf("  avg latency:       %.1f ms\n", s.AvgLatencyMS)
		fmt.Printf("  avg output tokens: %.1f\n", s.AvgOutputTokens)
		fmt.Printf("  noun ratio:        %.3f\n", s.AvgNounRatio)
		fmt.Printf("  verb ratio:        %.3f\n", s.AvgVerbRatio)
		fmt.Printf("  adj ratio:         %.3f\n", s.AvgAdjRatio)
		fmt.Printf("  adv ratio:         %.3f\n", s.AvgAdvRatio)
		fmt.Printf("  pron ratio:        %.3f\n", s.AvgPronRatio)
		for _, cat := range lex.Names() {
			fmt.Printf("  %s: %.2f\n", cat, s.AvgLexicon[cat])
		}
		fmt.Println()
	}
}

// watchAndAnalyze blocks, re-running the analysis each time the log
// file is written. Watching the parent directory survives the
// create-rename dance some writers do.
func watchAndAnalyze(logPath string, lex analysis.Lexicon) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(logPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	fmt.Fprintf(os.Stderr, "watching %s (ctrl-c to stop)\n", logPath)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != logPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := analyzeOnce(logPath, lex); err != nil {
				fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		}
	}
}
