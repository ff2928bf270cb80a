package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/quillworks/quill/internal/config"
	"github.com/quillworks/quill/internal/engine"
	"github.com/quillworks/quill/internal/history"
	"github.com/quillworks/quill/internal/invoker"
	"github.com/quillworks/quill/internal/tui"
	"github.com/quillworks/quill/pkg/models"
)

var (
	runDifficulty string
	runMaxTurns   int
	runDryRun     bool
	runPlain      bool
	runNoArchive  bool
)

var runCmd = &cobra.Command{
	Use:   "run <topic>",
	Short: "Start a tutoring session",
	Long: `Start a tutoring session on the given topic.

The session runs the agent pipeline automatically and suspends when your
input is needed. With --plain the session runs in the terminal without the
TUI, reading your answers from stdin.

Examples:
  quill run "Photosynthesis"
  quill run "Pointers in Go" --difficulty Advanced --max-turns 10
  quill run "Fractions" --dry-run --plain`,
	Args: cobra.ExactArgs(1),
	RunE: runSession,
}

func init() {
	runCmd.Flags().StringVar(&runDifficulty, "difficulty", "", "Difficulty level (Toddler, Beginner, Intermediate, Advanced, Expert)")
	runCmd.Flags().IntVar(&runMaxTurns, "max-turns", 0, "Hard cap on agent turns (default from config)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Use canned agent outputs instead of the inference service")
	runCmd.Flags().BoolVar(&runPlain, "plain", false, "Run without the TUI, reading input from stdin")
	runCmd.Flags().BoolVar(&runNoArchive, "no-archive", false, "Skip archiving the finished transcript")
}

func runSession(cmd *cobra.Command, args []string) error {
	topic := strings.TrimSpace(args[0])

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	difficultyName := runDifficulty
	if difficultyName == "" {
		difficultyName = cfg.Defaults.Difficulty
	}
	difficulty := models.Difficulty(difficultyName)
	if !difficulty.Valid() {
		return fmt.Errorf("unknown difficulty %q (valid: %v)", difficultyName, models.Difficulties)
	}

	maxTurns := runMaxTurns
	if maxTurns <= 0 {
		maxTurns = cfg.Defaults.MaxTurns
	}
	if maxTurns <= 0 {
		maxTurns = engine.DefaultMaxTurns
	}

	inv, err := buildInvoker(cfg)
	if err != nil {
		return err
	}

	logger := engine.NewDebugLoggerForData()
	defer logger.Close()

	opts := []engine.Option{
		engine.WithTurnDelay(cfg.Engine.TurnDelay),
		engine.WithDebugLogger(logger),
	}

	if !runNoArchive {
		db, err := history.Open(history.DefaultPath())
		if err != nil {
			return fmt.Errorf("opening history archive: %w", err)
		}
		defer db.Close()
		opts = append(opts, engine.WithArchiver(db))
	}

	eng, err := engine.New(topic, difficulty, maxTurns, inv, opts...)
	if err != nil {
		return err
	}

	// Pacing is a live knob: editing the user config adjusts the delay of
	// an already-running session.
	if err := config.Watch(func(c *config.Config) {
		eng.SetTurnDelay(c.Engine.TurnDelay)
	}); err != nil {
		logger.Log("config watch unavailable: %v", err)
	}

	if runPlain {
		return runPlainSession(eng)
	}

	runErr := make(chan error, 1)
	go func() { runErr <- eng.Run(context.Background()) }()

	p := tea.NewProgram(tui.New(eng), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	select {
	case err := <-runErr:
		return err
	default:
		// TUI quit mid-session; the process exits and the session with it.
		return nil
	}
}

// buildInvoker picks the agent invoker: canned outputs for --dry-run,
// otherwise the Anthropic API (or Bedrock, per config).
func buildInvoker(cfg *config.Config) (invoker.Invoker, error) {
	if runDryRun {
		return invoker.NewDryRunInvoker(), nil
	}

	inv, err := invoker.NewAnthropicInvoker(invoker.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, fmt.Errorf("creating invoker: %w", err)
	}
	return inv, nil
}
