// Package tui provides the terminal user interface for Quill. It is a
// read-only observer of the engine plus the input box for the human gate;
// session state and the activity log stay owned by the engine.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quillworks/quill/internal/engine"
	"github.com/quillworks/quill/pkg/models"
)

// EngineEventMsg wraps an engine event for the TUI.
type EngineEventMsg struct {
	Event engine.Event
}

// EngineClosedMsg signals that the engine's event channel closed.
type EngineClosedMsg struct{}

// Model is the bubbletea model for a running tutoring session.
type Model struct {
	eng *engine.Engine

	spin  spinner.Model
	input textinput.Model
	feed  viewport.Model

	width  int
	height int
	ready  bool

	lines       []string
	pending     bool
	hint        string
	activeAgent models.AgentID
	inFlight    bool
	done        bool
	outcome     string
	lastErr     error

	styles Styles
}

// New creates the TUI model observing the given engine.
func New(eng *engine.Engine) *Model {
	styles := DefaultStyles()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	ti := textinput.New()
	ti.Placeholder = "Type your answer and press Enter..."
	ti.CharLimit = 2000
	ti.Width = 60

	return &Model{
		eng:    eng,
		spin:   sp,
		input:  ti,
		styles: styles,
	}
}

// waitForEvent blocks on the engine's event channel.
func waitForEvent(eng *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-eng.Events()
		if !ok {
			return EngineClosedMsg{}
		}
		return EngineEventMsg{Event: ev}
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, waitForEvent(m.eng))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		feedHeight := msg.Height - 8
		if feedHeight < 3 {
			feedHeight = 3
		}
		if !m.ready {
			m.feed = viewport.New(msg.Width-2, feedHeight)
			m.ready = true
		} else {
			m.feed.Width = msg.Width - 2
			m.feed.Height = feedHeight
		}
		m.input.Width = msg.Width - 6
		m.refreshFeed()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if !m.pending || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		case "enter":
			if m.pending {
				text := strings.TrimSpace(m.input.Value())
				if text != "" {
					if err := m.eng.SubmitHumanInput(text); err == nil {
						m.pending = false
						m.input.SetValue("")
						m.input.Blur()
					}
				}
				return m, nil
			}
			if m.done {
				return m, tea.Quit
			}
		}

	case EngineEventMsg:
		m.applyEvent(msg.Event)
		cmds = append(cmds, waitForEvent(m.eng))

	case EngineClosedMsg:
		// Terminal decision reached; leave the transcript on screen.
		m.inFlight = false

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.pending {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	var cmd tea.Cmd
	m.feed, cmd = m.feed.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// applyEvent folds one engine event into the display state.
func (m *Model) applyEvent(ev engine.Event) {
	switch ev.Type {
	case engine.EventTurnStarted:
		m.activeAgent = ev.Agent
		m.inFlight = true
		m.appendLine(m.styles.Status.Render(fmt.Sprintf("▸ %s is working...", ev.Agent.DisplayName())))

	case engine.EventTurnCompleted:
		m.inFlight = false
		m.appendLine(m.styles.AgentName.Render(ev.Agent.DisplayName()))
		m.appendContent(ev.Agent)

	case engine.EventTurnFailed:
		m.inFlight = false
		m.lastErr = ev.Err
		m.appendLine(m.styles.Error.Render(fmt.Sprintf("✗ %s failed: %v", ev.Agent.DisplayName(), ev.Err)))
		m.appendLine(m.styles.Status.Render("automatic progression halted - restart to retry"))

	case engine.EventAwaitingHuman:
		m.inFlight = false
		m.pending = true
		m.hint = ev.Message
		m.input.Focus()
		m.appendLine(m.styles.Prompt.Render("⏸ " + ev.Message))

	case engine.EventHumanInput:
		m.appendLine(m.styles.Human.Render("you: ") + ev.Message)

	case engine.EventSessionDone:
		m.done = true
		m.inFlight = false
		m.outcome = ev.Message
		m.appendLine(m.styles.Done.Render(fmt.Sprintf("● session complete (%s) after %d turns", ev.Message, ev.TurnCount)))
	}
}

// appendContent renders the agent's freshly produced artifact from the
// state snapshot, so the feed shows folded content rather than raw events.
func (m *Model) appendContent(agent models.AgentID) {
	s := m.eng.Snapshot()

	var content string
	switch agent {
	case models.AgentCurriculumPlanner:
		content = s.LessonPlan
	case models.AgentConceptExplainer:
		content = s.Explanation
	case models.AgentQuizGenerator:
		content = s.Quiz
	case models.AgentFeedbackAnalyzer:
		content = s.Feedback
	case models.AgentMotivator:
		content = s.MotivatorMessage
	case models.AgentQualityReviewer:
		verdict := "rejected"
		if approved, ok := s.Approved(); ok && approved {
			verdict = "approved"
		}
		content = fmt.Sprintf("%s (confidence %.2f)\n%s", verdict, s.Confidence, s.ReviewerComments)
	}

	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		m.appendLine("  " + line)
	}
	m.appendLine("")
}

func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line)
	m.refreshFeed()
}

func (m *Model) refreshFeed() {
	if !m.ready {
		return
	}
	m.feed.SetContent(strings.Join(m.lines, "\n"))
	m.feed.GotoBottom()
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "starting..."
	}

	s := m.eng.Snapshot()

	header := m.styles.Header.Render(fmt.Sprintf(" quill — %s (%s) ", s.Topic, s.Difficulty))
	progress := m.styles.Status.Render(fmt.Sprintf(" turn %d/%d  %s", s.TurnCount, s.MaxTurns, m.artifactChecklist(s)))

	var footer string
	switch {
	case m.pending:
		footer = m.styles.Prompt.Render(m.hint) + "\n" + m.input.View()
	case m.done:
		footer = m.styles.Done.Render(fmt.Sprintf("done: %s — press q to exit", m.outcome))
	case m.lastErr != nil:
		footer = m.styles.Error.Render("stopped on error — press q to exit")
	case m.inFlight:
		footer = fmt.Sprintf("%s %s", m.spin.View(), m.styles.Status.Render(m.activeAgent.DisplayName()+" thinking..."))
	default:
		footer = m.styles.Status.Render("scheduling next turn...")
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", header, progress, m.feed.View(), footer)
}

// artifactChecklist renders one marker per pipeline artifact.
func (m *Model) artifactChecklist(s models.SessionState) string {
	mark := func(set bool, label string) string {
		if set {
			return m.styles.Done.Render("●" + label)
		}
		return m.styles.Muted.Render("○" + label)
	}

	_, reviewed := s.Approved()
	parts := []string{
		mark(s.LessonPlan != "", "plan"),
		mark(s.Explanation != "", "explain"),
		mark(s.Quiz != "", "quiz"),
		mark(s.StudentAnswers != "", "answers"),
		mark(s.Feedback != "", "feedback"),
		mark(s.MotivatorMessage != "", "motivate"),
		mark(reviewed, "review"),
	}
	return strings.Join(parts, " ")
}
