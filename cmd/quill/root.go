package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "AI tutoring session orchestrator",
	Long: `Quill runs a human-in-the-loop tutoring session: a fixed pipeline of
specialized agents plans a lesson, explains it, quizzes you, grades your
answers, cheers you on, and reviews its own work.

You take part twice: as the student answering the quiz, and - when the
quality reviewer rejects a session - as the supervisor providing guidance
before the review runs again.

Core capabilities:
- Sequences the agent pipeline one turn at a time with a hard turn cap
- Suspends for human input exactly where the session needs it
- Keeps an append-only activity log for the whole session
- Archives finished transcripts for later browsing and export`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
