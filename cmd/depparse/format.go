package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// formatParsesText writes each parse as a header line followed by its arcs.
func formatParsesText(w io.Writer, parses []CLIParse) {
	for i, p := range parses {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "#%d [%s] %s\n", p.ID, p.Oracle, strings.Join(p.Tokens, " "))
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  HEAD\tDEPENDENT")
		for _, a := range p.Arcs {
			fmt.Fprintf(tw, "  %s (%d)\t%s (%d)\n", a.Head, a.HeadPos, a.Dependent, a.DependentPos)
		}
		tw.Flush()
	}
}

// formatSentencesText formats CLISentence rows as aligned columns.
func formatSentencesText(w io.Writer, rows []CLISentence) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTOKENS\tORACLE\tPARSED")
	for _, s := range rows {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", s.ID, s.TokenCount, s.Oracle, s.ParsedAt.Format("2006-01-02 15:04:05"))
	}
	tw.Flush()
}

// outputResultText dispatches to the text formatter for the result type.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case []CLIParse:
		formatParsesText(w, v)
	case CLIParse:
		formatParsesText(w, []CLIParse{v})
	case []CLISentence:
		formatSentencesText(w, v)
	case CLIDeleted:
		fmt.Fprintf(w, "deleted sentence %d\n", v.ID)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// outputResult writes result to stdout in the selected format.
func outputResult(result CLIResult) error {
	return writeResult(os.Stdout, result)
}

func writeResult(w io.Writer, result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(w, result)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(CLIResult{Command: command, Error: err.Error()})
	return err
}
