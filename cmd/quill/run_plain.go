package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/quillworks/quill/internal/engine"
	"github.com/quillworks/quill/pkg/models"
)

// runPlainSession drives a session without the TUI: events print to
// stdout and human input is read line by line from stdin.
func runPlainSession(eng *engine.Engine) error {
	agentName := color.New(color.FgCyan, color.Bold).SprintFunc()
	promptText := color.New(color.FgYellow, color.Bold).SprintFunc()
	errText := color.New(color.FgRed).SprintFunc()
	doneText := color.New(color.FgGreen).SprintFunc()

	errCh := make(chan error, 1)
	go func() { errCh <- eng.Run(context.Background()) }()

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		reader := bufio.NewReader(os.Stdin)

		for ev := range eng.Events() {
			switch ev.Type {
			case engine.EventTurnStarted:
				fmt.Printf("%s ...\n", agentName(ev.Agent.DisplayName()))

			case engine.EventTurnCompleted:
				fmt.Println(latestOutput(eng))
				fmt.Println()

			case engine.EventTurnFailed:
				fmt.Printf("%s %v\n", errText("error:"), ev.Err)

			case engine.EventAwaitingHuman:
				fmt.Printf("%s\n> ", promptText(ev.Message))
				for {
					line, err := reader.ReadString('\n')
					if err != nil {
						return
					}
					if submitErr := eng.SubmitHumanInput(strings.TrimSpace(line)); submitErr == nil {
						break
					}
					fmt.Print("input must not be empty\n> ")
				}

			case engine.EventSessionDone:
				fmt.Printf("%s session complete (%s) after %d turns\n", doneText("●"), ev.Message, ev.TurnCount)
			}
		}
	}()

	err := <-errCh
	if err == nil {
		<-printed
	}
	return err
}

// latestOutput returns the content of the most recent output log entry.
func latestOutput(eng *engine.Engine) string {
	entries := eng.Log()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Category == models.LogOutput {
			return entries[i].Content
		}
	}
	return ""
}
