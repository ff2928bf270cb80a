package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quillworks/quill/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	label := color.New(color.FgCyan).SprintFunc()
	muted := color.New(color.Faint).SprintFunc()

	fmt.Printf("%s %s\n", label("user config:"), config.GetUserConfigPath())
	if project := config.GetProjectConfigPath(); project != "" {
		fmt.Printf("%s %s\n", label("project config:"), project)
	} else {
		fmt.Printf("%s %s\n", label("project config:"), muted("(none)"))
	}
	fmt.Println()

	apiKey := muted("(unset)")
	if cfg.Anthropic.APIKey != "" {
		apiKey = "set"
	}
	model := cfg.Anthropic.Model
	if model == "" {
		model = muted("(sdk default)")
	}

	fmt.Printf("%s %s\n", label("anthropic.api_key:"), apiKey)
	fmt.Printf("%s %s\n", label("anthropic.model:"), model)
	fmt.Printf("%s %v\n", label("anthropic.use_aws_bedrock:"), cfg.Anthropic.UseAWSBedrock)
	fmt.Printf("%s %s\n", label("defaults.difficulty:"), cfg.Defaults.Difficulty)
	fmt.Printf("%s %d\n", label("defaults.max_turns:"), cfg.Defaults.MaxTurns)
	fmt.Printf("%s %s\n", label("engine.turn_delay:"), cfg.Engine.TurnDelay)

	return nil
}
