package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/quillworks/quill/internal/history"
	"github.com/quillworks/quill/pkg/models"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export an archived session transcript as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")
}

// transcript is the YAML document produced by export.
type transcript struct {
	Session transcriptSession `yaml:"session"`
	Entries []transcriptEntry `yaml:"entries"`
}

type transcriptSession struct {
	ID         string `yaml:"id"`
	Topic      string `yaml:"topic"`
	Difficulty string `yaml:"difficulty"`
	Outcome    string `yaml:"outcome"`
	TurnCount  int    `yaml:"turn_count"`
	MaxTurns   int    `yaml:"max_turns"`
	ArchivedAt string `yaml:"archived_at"`
}

type transcriptEntry struct {
	Timestamp string `yaml:"timestamp"`
	Agent     string `yaml:"agent"`
	Category  string `yaml:"category"`
	Content   string `yaml:"content"`
	Rationale string `yaml:"rationale,omitempty"`
}

func runExport(cmd *cobra.Command, args []string) error {
	sessionID := args[0]

	db, err := history.Open(history.DefaultPath())
	if err != nil {
		return fmt.Errorf("opening history archive: %w", err)
	}
	defer db.Close()

	records, err := db.ListSessions()
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	var record *history.SessionRecord
	for i := range records {
		if records[i].ID == sessionID {
			record = &records[i]
			break
		}
	}
	if record == nil {
		return fmt.Errorf("no archived session %s", sessionID)
	}

	entries, err := db.GetTranscript(sessionID)
	if err != nil {
		return fmt.Errorf("loading transcript: %w", err)
	}

	doc := transcript{
		Session: transcriptSession{
			ID:         record.ID,
			Topic:      record.Topic,
			Difficulty: string(record.Difficulty),
			Outcome:    record.Outcome,
			TurnCount:  record.TurnCount,
			MaxTurns:   record.MaxTurns,
			ArchivedAt: record.ArchivedAt.UTC().Format(time.RFC3339),
		},
	}
	for _, entry := range entries {
		doc.Entries = append(doc.Entries, transcriptEntryFrom(entry))
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("marshaling transcript: %w", err)
	}

	if exportOutput == "" {
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	}
	if err := os.WriteFile(exportOutput, out, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", exportOutput, err)
	}
	fmt.Printf("wrote transcript to %s\n", exportOutput)
	return nil
}

func transcriptEntryFrom(entry models.LogEntry) transcriptEntry {
	return transcriptEntry{
		Timestamp: entry.Timestamp.UTC().Format(time.RFC3339),
		Agent:     string(entry.Agent),
		Category:  string(entry.Category),
		Content:   entry.Content,
		Rationale: entry.Rationale,
	}
}
