package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quillworks/quill/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived tutoring sessions",
	Long: `List finished sessions from the local archive, newest first.

Use the session ID with 'quill export' to dump a full transcript.`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	db, err := history.Open(history.DefaultPath())
	if err != nil {
		return fmt.Errorf("opening history archive: %w", err)
	}
	defer db.Close()

	records, err := db.ListSessions()
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("no archived sessions yet - run 'quill run <topic>' first")
		return nil
	}

	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTOPIC\tDIFFICULTY\tOUTCOME\tTURNS\tARCHIVED")
	for _, rec := range records {
		outcome := rec.Outcome
		if outcome == "approved" {
			outcome = green(outcome)
		} else {
			outcome = yellow(outcome)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%s\n",
			rec.ID, rec.Topic, rec.Difficulty, outcome,
			rec.TurnCount, rec.MaxTurns,
			rec.ArchivedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
