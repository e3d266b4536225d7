package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jward/depparse"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a stored parse",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return outputError("show", fmt.Errorf("invalid sentence id %q", args[0]))
		}
		engine, err := openExisting()
		if err != nil {
			return outputError("show", err)
		}
		defer engine.Close()

		ps, err := engine.Query().Sentence(id)
		if err != nil {
			return outputError("show", err)
		}
		if ps == nil {
			return outputError("show", fmt.Errorf("sentence %d not found", id))
		}
		return outputResult(CLIResult{Command: "show", Results: toCLIParse(ps)})
	},
}

var sentencesCmd = &cobra.Command{
	Use:   "sentences",
	Short: "List stored sentences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openExisting()
		if err != nil {
			return outputError("sentences", err)
		}
		defer engine.Close()

		records, err := engine.Query().Sentences()
		if err != nil {
			return outputError("sentences", err)
		}
		rows := make([]CLISentence, len(records))
		for i, r := range records {
			rows[i] = toCLISentence(r)
		}
		count := len(rows)
		return outputResult(CLIResult{Command: "sentences", Results: rows, TotalCount: &count})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored parse",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return outputError("delete", fmt.Errorf("invalid sentence id %q", args[0]))
		}
		engine, err := openExisting()
		if err != nil {
			return outputError("delete", err)
		}
		defer engine.Close()

		ok, err := engine.DeleteSentence(id)
		if err != nil {
			return outputError("delete", err)
		}
		if !ok {
			return outputError("delete", fmt.Errorf("sentence %d not found", id))
		}
		return outputResult(CLIResult{Command: "delete", Results: CLIDeleted{ID: id}})
	},
}

// openExisting opens the treebank without creating it.
func openExisting() (*depparse.Engine, error) {
	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("no treebank at %s (run 'depparse parse' first)", dbPath)
	}
	return depparse.New(dbPath)
}
