package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jward/depparse"
	"github.com/jward/depparse/internal/runtime"
	"github.com/jward/depparse/scripts"
	"github.com/spf13/cobra"
)

var (
	flagScript      string
	flagScriptsDir  string
	flagTransitions string
	flagBatchSize   int
	flagWorkers     int
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse sentences and store their dependency arcs",
	Long: `Reads one sentence per line (whitespace-separated tokens, # starts a comment)
from file or stdin, parses them with the selected oracle and stores the results.

Oracles:
  --transitions FILE   replay one line of S/LA/RA names per sentence
  --script FILE        run a Risor script per configuration
  (neither)            run the embedded baseline script`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVar(&flagScript, "script", "", "Risor oracle script")
	parseCmd.Flags().StringVar(&flagScriptsDir, "scripts-dir", "", "directory for script imports and relative script paths")
	parseCmd.Flags().StringVar(&flagTransitions, "transitions", "", "file with one transition sequence per sentence")
	parseCmd.Flags().IntVar(&flagBatchSize, "batch-size", depparse.DefaultBatchSize, "configurations per oracle call")
	parseCmd.Flags().IntVar(&flagWorkers, "workers", 1, "goroutines applying each round's transitions")
}

// applyParseFlags copies explicitly set parse flags into settings.
func applyParseFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("script") {
		settings.Script = flagScript
		settings.Transitions = ""
	}
	if flags.Changed("scripts-dir") {
		settings.ScriptsDir = flagScriptsDir
	}
	if flags.Changed("transitions") {
		settings.Transitions = flagTransitions
		if !flags.Changed("script") {
			settings.Script = ""
		}
	}
	if flags.Changed("batch-size") {
		settings.BatchSize = flagBatchSize
	}
	if flags.Changed("workers") {
		settings.Workers = flagWorkers
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	start := time.Now()

	in := io.Reader(os.Stdin)
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return outputError("parse", fmt.Errorf("opening input: %w", err))
		}
		defer f.Close()
		in = f
	}
	sentences, err := readSentences(in)
	if err != nil {
		return outputError("parse", err)
	}

	oracle, err := buildOracle(len(sentences))
	if err != nil {
		return outputError("parse", err)
	}

	dbPath, err := resolveDBPath()
	if err != nil {
		return outputError("parse", err)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return outputError("parse", fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err))
	}

	engine, err := depparse.New(dbPath,
		depparse.WithEngineLogger(slog.Default()),
		depparse.WithParseOptions(
			depparse.WithBatchSize(settings.BatchSize),
			depparse.WithWorkers(settings.Workers),
		),
	)
	if err != nil {
		return outputError("parse", fmt.Errorf("creating engine: %w", err))
	}
	defer engine.Close()

	ids, err := engine.ParseSentences(context.Background(), oracle, sentences)
	if err != nil {
		return outputError("parse", err)
	}

	q := engine.Query()
	parses := make([]CLIParse, 0, len(ids))
	for _, id := range ids {
		ps, err := q.Sentence(id)
		if err != nil {
			return outputError("parse", fmt.Errorf("reading sentence %d: %w", id, err))
		}
		parses = append(parses, toCLIParse(ps))
	}

	fmt.Fprintf(os.Stderr, "Parsed %d sentence(s) in %s\n", len(sentences), time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)

	count := len(parses)
	return outputResult(CLIResult{Command: "parse", Results: parses, TotalCount: &count})
}

// buildOracle selects the oracle from settings. n is the number of
// sentences, which a transitions file must match.
func buildOracle(n int) (depparse.Oracle, error) {
	logger := slog.Default()
	switch {
	case settings.Transitions != "":
		f, err := os.Open(settings.Transitions)
		if err != nil {
			return nil, fmt.Errorf("opening transitions: %w", err)
		}
		defer f.Close()
		seqs, err := readTransitions(f)
		if err != nil {
			return nil, err
		}
		if len(seqs) != n {
			return nil, fmt.Errorf("transitions file has %d sequence(s) for %d sentence(s)", len(seqs), n)
		}
		return depparse.NewScriptedOracle(seqs...), nil
	case settings.Script != "":
		return depparse.NewScriptOracle(settings.Script,
			depparse.WithScriptsDir(settings.ScriptsDir),
			depparse.WithScriptLogger(logger),
		), nil
	default:
		return depparse.NewScriptOracle(runtime.OracleScriptPath("baseline"),
			depparse.WithScriptsFS(scripts.FS),
			depparse.WithScriptLogger(logger),
		), nil
	}
}

// readSentences reads one whitespace-tokenized sentence per line. Blank
// lines and lines starting with # are skipped.
func readSentences(r io.Reader) ([][]depparse.Token, error) {
	var out [][]depparse.Token
	err := scanLines(r, func(line string) error {
		fields := strings.Fields(line)
		sentence := make([]depparse.Token, len(fields))
		for i, f := range fields {
			sentence[i] = depparse.Token(f)
		}
		out = append(out, sentence)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading sentences: %w", err)
	}
	return out, nil
}

// readTransitions reads one transition sequence per line, skipping blank
// and comment lines like readSentences so line counts match.
func readTransitions(r io.Reader) ([][]depparse.Transition, error) {
	var out [][]depparse.Transition
	err := scanLines(r, func(line string) error {
		seq, err := depparse.ParseTransitions(line)
		if err != nil {
			return fmt.Errorf("sequence %d: %w", len(out), err)
		}
		out = append(out, seq)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading transitions: %w", err)
	}
	return out, nil
}

func scanLines(r io.Reader, fn func(line string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return sc.Err()
}
