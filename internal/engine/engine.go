// Package engine drives a tutoring session from start to a terminal
// decision, one agent turn at a time, suspending for human input when the
// selector demands it. The engine owns the session state and the activity
// log exclusively; collaborators return values that the loop folds in.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quillworks/quill/internal/invoker"
	"github.com/quillworks/quill/internal/selector"
	"github.com/quillworks/quill/pkg/models"
)

// DefaultMaxTurns is the turn cap used when the caller does not set one.
const DefaultMaxTurns = 15

// defaultTurnDelay paces automatic turns. Cosmetic, not a correctness
// mechanism; safe to set to zero.
const defaultTurnDelay = 1 * time.Second

// Archiver persists a finished session's transcript. Archiving is
// observability only; live sessions are never restored from an archive.
type Archiver interface {
	SaveSession(state models.SessionState, entries []models.LogEntry, outcome string) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithTurnDelay sets the pacing delay between automatic turns.
func WithTurnDelay(d time.Duration) Option {
	return func(e *Engine) { e.turnDelay = d }
}

// WithEventBuffer sets the observer event channel buffer size.
func WithEventBuffer(n int) Option {
	return func(e *Engine) { e.eventBuffer = n }
}

// WithDebugLogger sets the diagnostics logger.
func WithDebugLogger(l *DebugLogger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithArchiver sets the transcript archiver invoked on termination.
func WithArchiver(a Archiver) Option {
	return func(e *Engine) { e.archiver = a }
}

// Engine is the handle for one tutoring session. Create one per session;
// concurrent sessions are independent engines with no shared state.
type Engine struct {
	// mu protects state, entries, and the flags below.
	mu      sync.RWMutex
	state   *models.SessionState
	entries []models.LogEntry

	inv      invoker.Invoker
	gate     *humanGate
	emitter  *EventEmitter
	logger   *DebugLogger
	archiver Archiver

	turnDelay   time.Duration
	eventBuffer int

	activeAgent models.AgentID
	running     bool
	terminated  bool
	outcome     string
}

// New creates an engine with a fresh session state: all artifacts unset and
// the turn count at zero. Empty topics, unknown difficulties, and a
// non-positive turn cap are rejected with InvalidInputError.
func New(topic string, difficulty models.Difficulty, maxTurns int, inv invoker.Invoker, opts ...Option) (*Engine, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, &InvalidInputError{Reason: "topic must not be empty"}
	}
	if !difficulty.Valid() {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("unknown difficulty %q", difficulty)}
	}
	if maxTurns <= 0 {
		return nil, &InvalidInputError{Reason: "maxTurns must be positive"}
	}
	if inv == nil {
		return nil, fmt.Errorf("invoker is required")
	}

	e := &Engine{
		state:       models.NewSessionState(uuid.NewString(), topic, difficulty, maxTurns),
		inv:         inv,
		gate:        newHumanGate(),
		logger:      NopLogger(),
		turnDelay:   defaultTurnDelay,
		eventBuffer: 64,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.emitter = NewEventEmitter(e.eventBuffer)

	return e, nil
}

// Run drives the session until a terminal decision, an invocation failure,
// or context cancellation. A failed turn leaves the state untouched, so
// calling Run again recomputes the same decision and retries it manually.
// Returns nil once the session has terminated.
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return fmt.Errorf("session already running")
	}
	if e.terminated {
		e.mu.Unlock()
		return nil
	}
	e.running = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		decision := selector.SelectNext(e.Snapshot())
		e.logger.Log("selector: kind=%s agent=%s reason=%s", decision.Kind, decision.Agent, decision.Reason)

		switch decision.Kind {
		case selector.KindTerminate:
			e.finish(decision.Reason)
			return nil

		case selector.KindAwaitHuman:
			text, err := e.awaitHuman(ctx, decision.Role)
			if err != nil {
				return err
			}
			e.foldHumanInput(decision.Role, text)

		case selector.KindRunAgent:
			if err := e.pace(ctx); err != nil {
				return err
			}
			if err := e.runTurn(ctx, decision.Agent); err != nil {
				return err
			}

		default:
			return fmt.Errorf("unknown decision kind %q", decision.Kind)
		}
	}
}

// pace sleeps the configured delay before an automatic turn. The very
// first turn of a session starts immediately.
func (e *Engine) pace(ctx context.Context) error {
	e.mu.RLock()
	delay := e.turnDelay
	first := e.state.TurnCount == 0
	e.mu.RUnlock()

	if first || delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// SetTurnDelay updates the pacing delay. Safe to call while running; the
// new value applies from the next scheduled turn.
func (e *Engine) SetTurnDelay(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.turnDelay = d
}

// runTurn is the atomic unit of work: announce the agent, invoke it, fold
// its output into the state, and record the turn. On failure nothing is
// mutated and the turn count does not advance.
func (e *Engine) runTurn(ctx context.Context, agent models.AgentID) error {
	e.appendEntry(agent, fmt.Sprintf("%s starting", agent.DisplayName()), models.LogStatus, "")
	e.setActiveAgent(agent)
	defer e.setActiveAgent("")

	e.emitter.Emit(Event{Type: EventTurnStarted, Agent: agent, Timestamp: time.Now()})

	output, err := e.inv.Invoke(ctx, agent, e.Snapshot())
	if err != nil {
		e.appendEntry(agent, err.Error(), models.LogError, "invocation failed; state unchanged")
		e.emitter.Emit(Event{Type: EventTurnFailed, Agent: agent, Err: err, Timestamp: time.Now()})
		e.logger.Log("turn failed: agent=%s err=%v", agent, err)
		return err
	}

	e.mu.Lock()
	if err := applyOutput(e.state, agent, output); err != nil {
		e.mu.Unlock()
		e.appendEntry(agent, err.Error(), models.LogError, "output rejected; state unchanged")
		e.emitter.Emit(Event{Type: EventTurnFailed, Agent: agent, Err: err, Timestamp: time.Now()})
		e.logger.Log("apply failed: agent=%s err=%v", agent, err)
		return err
	}
	e.state.TurnCount++
	turn := e.state.TurnCount
	e.mu.Unlock()

	e.appendEntry(agent, output, models.LogOutput, "")
	e.emitter.Emit(Event{Type: EventTurnCompleted, Agent: agent, TurnCount: turn, Timestamp: time.Now()})
	e.logger.Log("turn %d complete: agent=%s", turn, agent)

	return nil
}

// awaitHuman suspends the loop until the human submits input. There is no
// timeout; the session stays suspended until SubmitHumanInput is called.
func (e *Engine) awaitHuman(ctx context.Context, role selector.HumanRole) (string, error) {
	e.appendEntry(models.AgentEngine, role.Hint(), models.LogDecision, "human input required")
	e.gate.Arm(role)
	e.emitter.Emit(Event{Type: EventAwaitingHuman, Message: role.Hint(), Timestamp: time.Now()})
	e.logger.Log("suspended for human input: role=%s", role)

	return e.gate.Wait(ctx)
}

// foldHumanInput merges a submitted string into the session. A student
// answer writes the studentAnswers artifact. Supervisor guidance is logged
// and clears the reviewer verdict so the quality review runs again with the
// guidance on record.
func (e *Engine) foldHumanInput(role selector.HumanRole, text string) {
	e.mu.Lock()
	if role == selector.RoleStudent {
		e.state.StudentAnswers = text
	} else {
		e.state.ReviewerApproved = nil
		e.state.ReviewerComments = ""
		e.state.Confidence = 0
	}
	e.mu.Unlock()

	rationale := "student answer"
	if role == selector.RoleSupervisor {
		rationale = "supervisor guidance; reviewer verdict cleared for re-review"
	}
	e.appendEntry(models.AgentHuman, text, models.LogOutput, rationale)
	e.emitter.Emit(Event{Type: EventHumanInput, Message: text, Timestamp: time.Now()})
	e.logger.Log("human input folded: role=%s", role)
}

// SubmitHumanInput hands the human's text to the suspended loop. It is
// valid only while the session is awaiting input; otherwise it is rejected
// with InvalidInputError and neither state nor log is touched.
func (e *Engine) SubmitHumanInput(text string) error {
	if strings.TrimSpace(text) == "" {
		return &InvalidInputError{Reason: "human input must not be empty"}
	}
	if !e.gate.Submit(text) {
		return &InvalidInputError{Reason: "no human input pending"}
	}
	return nil
}

// finish records the terminal decision and makes the session immutable.
func (e *Engine) finish(reason string) {
	e.appendEntry(models.AgentEngine, "session terminated", models.LogDecision, reason)

	e.mu.Lock()
	e.terminated = true
	e.outcome = reason
	state := e.state.Clone()
	entries := make([]models.LogEntry, len(e.entries))
	copy(entries, e.entries)
	e.mu.Unlock()

	if e.archiver != nil {
		if err := e.archiver.SaveSession(state, entries, reason); err != nil {
			e.logger.Log("archive failed: %v", err)
		}
	}

	e.emitter.Emit(Event{Type: EventSessionDone, Message: reason, TurnCount: state.TurnCount, Timestamp: time.Now()})
	e.emitter.Close()
	e.logger.Log("session done: %s", reason)
}

// appendEntry adds one record to the append-only activity log.
func (e *Engine) appendEntry(agent models.AgentID, content string, category models.LogCategory, rationale string) {
	entry := models.LogEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Agent:     agent,
		Content:   content,
		Category:  category,
		Rationale: rationale,
	}

	e.mu.Lock()
	e.entries = append(e.entries, entry)
	e.mu.Unlock()
}

func (e *Engine) setActiveAgent(agent models.AgentID) {
	e.mu.Lock()
	e.activeAgent = agent
	e.mu.Unlock()
}

// Snapshot returns a read-only copy of the current session state.
func (e *Engine) Snapshot() models.SessionState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone()
}

// Log returns a copy of the activity log in append order.
func (e *Engine) Log() []models.LogEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]models.LogEntry, len(e.entries))
	copy(out, e.entries)
	return out
}

// Pending reports whether the session is suspended for human input and, if
// so, the role and its context hint.
func (e *Engine) Pending() (bool, selector.HumanRole, string) {
	armed, role := e.gate.Armed()
	if !armed {
		return false, "", ""
	}
	return true, role, role.Hint()
}

// ActiveAgent returns the agent whose turn is in flight, if any.
func (e *Engine) ActiveAgent() (models.AgentID, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.activeAgent, e.activeAgent != ""
}

// Terminated reports whether the session reached a terminal decision, and
// the recorded outcome.
func (e *Engine) Terminated() (bool, string) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.terminated, e.outcome
}

// Events returns the observer event channel. It is closed when the session
// terminates.
func (e *Engine) Events() <-chan Event {
	return e.emitter.Events()
}
