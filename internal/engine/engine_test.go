package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/quillworks/quill/internal/invoker"
	"github.com/quillworks/quill/internal/selector"
	"github.com/quillworks/quill/pkg/models"
)

// newTestEngine builds an engine with no pacing delay and a dry-run invoker.
func newTestEngine(t *testing.T, inv invoker.Invoker, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithTurnDelay(0), WithEventBuffer(256)}, opts...)
	e, err := New("Photosynthesis", models.DifficultyBeginner, DefaultMaxTurns, inv, opts...)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return e
}

// answerWhenPending submits the given text once the engine suspends.
func answerWhenPending(t *testing.T, e *Engine, text string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		if pending, _, _ := e.Pending(); pending {
			if err := e.SubmitHumanInput(text); err != nil {
				t.Errorf("submit failed: %v", err)
			}
			return
		}
		select {
		case <-deadline:
			t.Error("engine never suspended for human input")
			return
		case <-time.After(time.Millisecond):
		}
	}
}

func TestNewRejectsInvalidInput(t *testing.T) {
	inv := invoker.NewDryRunInvoker()

	tests := []struct {
		name       string
		topic      string
		difficulty models.Difficulty
		maxTurns   int
	}{
		{"empty topic", "", models.DifficultyBeginner, 15},
		{"whitespace topic", "   ", models.DifficultyBeginner, 15},
		{"unknown difficulty", "Algebra", "Novice", 15},
		{"zero max turns", "Algebra", models.DifficultyBeginner, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.topic, tt.difficulty, tt.maxTurns, inv)
			var invalid *InvalidInputError
			if !errors.As(err, &invalid) {
				t.Errorf("expected InvalidInputError, got %v", err)
			}
		})
	}
}

func TestFullSessionHappyPath(t *testing.T) {
	inv := invoker.NewDryRunInvoker()
	e := newTestEngine(t, inv)

	go answerWhenPending(t, e, "B, A, C")

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	done, outcome := e.Terminated()
	if !done {
		t.Fatal("expected session terminated")
	}
	if outcome != "approved" {
		t.Errorf("expected outcome %q, got %q", "approved", outcome)
	}

	s := e.Snapshot()
	if s.TurnCount != 6 {
		t.Errorf("expected 6 completed turns, got %d", s.TurnCount)
	}
	if s.StudentAnswers != "B, A, C" {
		t.Errorf("student answers not folded, got %q", s.StudentAnswers)
	}
	if s.LessonPlan == "" || s.Explanation == "" || s.Quiz == "" || s.Feedback == "" || s.MotivatorMessage == "" {
		t.Error("expected every artifact set after a full session")
	}
	if approved, ok := s.Approved(); !ok || !approved {
		t.Error("expected an approving verdict")
	}

	// One inference call per roster agent, in pipeline order.
	if inv.CallCount() != len(models.Roster) {
		t.Errorf("expected %d invocations, got %d", len(models.Roster), inv.CallCount())
	}
	for i, want := range models.Roster {
		if inv.Calls[i] != want {
			t.Errorf("call %d: expected %s, got %s", i, want, inv.Calls[i])
		}
	}
}

func TestTurnCountMonotonic(t *testing.T) {
	inv := invoker.NewDryRunInvoker()
	e := newTestEngine(t, inv)

	counts := make(chan int, 64)
	go func() {
		for ev := range e.Events() {
			if ev.Type == EventTurnCompleted {
				counts <- ev.TurnCount
			}
		}
		close(counts)
	}()

	go answerWhenPending(t, e, "answers")
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	prev := 0
	for c := range counts {
		if c != prev+1 {
			t.Errorf("turn count jumped from %d to %d", prev, c)
		}
		prev = c
	}
	if prev > e.Snapshot().MaxTurns {
		t.Errorf("turn count %d exceeded maxTurns", prev)
	}
}

func TestInvocationFailureLeavesStateUntouched(t *testing.T) {
	inv := invoker.NewDryRunInvoker()
	inv.Errs[models.AgentConceptExplainer] = fmt.Errorf("transport failure")
	e := newTestEngine(t, inv)

	err := e.Run(context.Background())
	var invErr *invoker.InvocationError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected InvocationError, got %v", err)
	}

	s := e.Snapshot()
	if s.Explanation != "" {
		t.Error("failed turn must not set its artifact")
	}
	if s.TurnCount != 1 {
		t.Errorf("only the planner turn should have completed, got %d", s.TurnCount)
	}

	// The failed decision is recomputed: the same agent is still next.
	d := selector.SelectNext(s)
	if d.Agent != models.AgentConceptExplainer {
		t.Errorf("expected explainer to still be next, got %s", d.Agent)
	}

	// An error entry was appended.
	var sawError bool
	for _, entry := range e.Log() {
		if entry.Category == models.LogError && entry.Agent == models.AgentConceptExplainer {
			sawError = true
		}
	}
	if !sawError {
		t.Error("expected an error log entry for the failed turn")
	}
}

func TestRunResumesAfterFailure(t *testing.T) {
	inv := invoker.NewDryRunInvoker()
	inv.Errs[models.AgentConceptExplainer] = fmt.Errorf("transport failure")
	e := newTestEngine(t, inv)

	if err := e.Run(context.Background()); err == nil {
		t.Fatal("expected first run to fail")
	}

	// Clear the fault and retrigger the loop; the session picks up where
	// the failed decision left off.
	delete(inv.Errs, models.AgentConceptExplainer)
	go answerWhenPending(t, e, "answers")

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("retriggered run failed: %v", err)
	}
	if done, _ := e.Terminated(); !done {
		t.Error("expected session to terminate after retry")
	}
}

func TestSubmitWhileNotSuspendedIsRejected(t *testing.T) {
	e := newTestEngine(t, invoker.NewDryRunInvoker())

	logBefore := len(e.Log())
	stateBefore := e.Snapshot()

	err := e.SubmitHumanInput("unsolicited")
	var invalid *InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInputError, got %v", err)
	}

	if len(e.Log()) != logBefore {
		t.Error("rejected input must not append to the log")
	}
	if e.Snapshot().StudentAnswers != stateBefore.StudentAnswers {
		t.Error("rejected input must not mutate state")
	}
}

func TestSubmitEmptyInputRejected(t *testing.T) {
	e := newTestEngine(t, invoker.NewDryRunInvoker())

	for _, text := range []string{"", "   ", "\n"} {
		err := e.SubmitHumanInput(text)
		var invalid *InvalidInputError
		if !errors.As(err, &invalid) {
			t.Errorf("input %q: expected InvalidInputError, got %v", text, err)
		}
	}
}

func TestStudentContextHint(t *testing.T) {
	inv := invoker.NewDryRunInvoker()
	e := newTestEngine(t, inv)

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	// Wait until the quiz is generated and the engine suspends.
	deadline := time.After(5 * time.Second)
	for {
		if pending, role, hint := e.Pending(); pending {
			if role != selector.RoleStudent {
				t.Errorf("expected student role, got %s", role)
			}
			if hint != "acting as student — answer the quiz" {
				t.Errorf("unexpected hint %q", hint)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("engine never suspended")
		case <-time.After(time.Millisecond):
		}
	}

	if err := e.SubmitHumanInput("B, A, C"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("run failed: %v", err)
	}
}

func TestSupervisorOverrideClearsVerdict(t *testing.T) {
	// First review rejects; after supervisor guidance the verdict is
	// cleared and the reviewer runs again, this time approving.
	inv := invoker.NewDryRunInvoker()
	inv.Outputs[models.AgentQualityReviewer] = `{"approved": false, "comments": "quiz too easy", "confidence": 0.9}`

	e := newTestEngine(t, inv)

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	// Student answer first.
	answerWhenPending(t, e, "B, A, C")

	// Then the rejected review suspends for the supervisor.
	deadline := time.After(5 * time.Second)
	for {
		if pending, role, _ := e.Pending(); pending && role == selector.RoleSupervisor {
			break
		}
		select {
		case <-deadline:
			t.Fatal("engine never suspended for supervisor")
		case <-time.After(time.Millisecond):
		}
	}

	// Flip the scripted reviewer to approve, then submit guidance.
	inv.Outputs[models.AgentQualityReviewer] = `{"approved": true, "comments": "better", "confidence": 0.95}`
	if err := e.SubmitHumanInput("make the quiz harder next time"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("run failed: %v", err)
	}

	s := e.Snapshot()
	if approved, ok := s.Approved(); !ok || !approved {
		t.Error("expected the re-review to approve")
	}
	if s.ReviewerComments != "better" {
		t.Errorf("expected re-review comments, got %q", s.ReviewerComments)
	}
	// Planner..motivator once each, reviewer twice.
	if inv.CallCount() != len(models.Roster)+1 {
		t.Errorf("expected %d invocations, got %d", len(models.Roster)+1, inv.CallCount())
	}
}

func TestReviewerParseFailureIsInvocationError(t *testing.T) {
	inv := invoker.NewDryRunInvoker()
	inv.Outputs[models.AgentQualityReviewer] = "definitely not json"
	e := newTestEngine(t, inv)

	go answerWhenPending(t, e, "answers")

	err := e.Run(context.Background())
	var invErr *invoker.InvocationError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected InvocationError, got %v", err)
	}

	s := e.Snapshot()
	if s.ReviewerApproved != nil {
		t.Error("parse failure must not set the verdict")
	}
	if s.TurnCount != 5 {
		t.Errorf("reviewer turn must not count, got %d turns", s.TurnCount)
	}
}

func TestLowConfidenceApprovalTerminates(t *testing.T) {
	inv := invoker.NewDryRunInvoker()
	inv.Outputs[models.AgentQualityReviewer] = `{"approved": true, "comments": "meh", "confidence": 0.5}`
	e := newTestEngine(t, inv)

	go answerWhenPending(t, e, "answers")
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	done, outcome := e.Terminated()
	if !done {
		t.Fatal("expected termination")
	}
	if outcome != "approved with low confidence" {
		t.Errorf("unexpected outcome %q", outcome)
	}
}

func TestTurnLimitTerminates(t *testing.T) {
	inv := invoker.NewDryRunInvoker()
	e, err := New("Algebra", models.DifficultyIntermediate, 2, inv, WithTurnDelay(0))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	done, outcome := e.Terminated()
	if !done || outcome != "turn limit reached" {
		t.Errorf("expected turn limit termination, got done=%v outcome=%q", done, outcome)
	}
	if s := e.Snapshot(); s.TurnCount != 2 {
		t.Errorf("expected exactly 2 turns, got %d", s.TurnCount)
	}
}

func TestContextCancellationWhileSuspended(t *testing.T) {
	inv := invoker.NewDryRunInvoker()
	e := newTestEngine(t, inv)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	deadline := time.After(5 * time.Second)
	for {
		if pending, _, _ := e.Pending(); pending {
			break
		}
		select {
		case <-deadline:
			t.Fatal("engine never suspended")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestArchiverCalledOnTermination(t *testing.T) {
	inv := invoker.NewDryRunInvoker()
	arch := &recordingArchiver{}
	e := newTestEngine(t, inv, WithArchiver(arch))

	go answerWhenPending(t, e, "answers")
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if arch.calls != 1 {
		t.Fatalf("expected one archive call, got %d", arch.calls)
	}
	if arch.outcome != "approved" {
		t.Errorf("unexpected archived outcome %q", arch.outcome)
	}
	if len(arch.entries) == 0 {
		t.Error("expected archived log entries")
	}
}

// recordingArchiver captures the archived session for assertions.
type recordingArchiver struct {
	calls   int
	state   models.SessionState
	entries []models.LogEntry
	outcome string
}

func (r *recordingArchiver) SaveSession(state models.SessionState, entries []models.LogEntry, outcome string) error {
	r.calls++
	r.state = state
	r.entries = entries
	r.outcome = outcome
	return nil
}
