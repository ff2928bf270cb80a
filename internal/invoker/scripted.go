package invoker

import (
	"context"
	"fmt"
	"sync"

	"github.com/quillworks/quill/pkg/models"
)

// ScriptedInvoker returns canned outputs per agent. It backs tests and the
// --dry-run mode, where no inference service is reachable.
type ScriptedInvoker struct {
	mu sync.Mutex
	// Outputs maps each agent to its canned response.
	Outputs map[models.AgentID]string
	// Errs maps agents to forced failures; an entry here wins over Outputs.
	Errs map[models.AgentID]error
	// Calls records the invocation order.
	Calls []models.AgentID
}

// NewScriptedInvoker creates a ScriptedInvoker with the given outputs.
func NewScriptedInvoker(outputs map[models.AgentID]string) *ScriptedInvoker {
	return &ScriptedInvoker{
		Outputs: outputs,
		Errs:    make(map[models.AgentID]error),
	}
}

// NewDryRunInvoker returns a ScriptedInvoker with plausible placeholder
// content for every agent, including a passing reviewer verdict.
func NewDryRunInvoker() *ScriptedInvoker {
	return NewScriptedInvoker(map[models.AgentID]string{
		models.AgentCurriculumPlanner: "1. Introduce the topic\n2. Core concepts\n3. Worked example\n4. Recap",
		models.AgentConceptExplainer:  "Here is a level-appropriate explanation of the topic.",
		models.AgentQuizGenerator:     "Q1. ...?\n  A) ...  B) ...  C) ...\nQ2. ...?\n  A) ...  B) ...  C) ...",
		models.AgentFeedbackAnalyzer:  "Q1 correct. Q2 incorrect: the right choice was B because ...",
		models.AgentMotivator:         "Nice work today. One wrong answer is how learning happens - keep going!",
		models.AgentQualityReviewer:   `{"approved": true, "comments": "coherent and level-appropriate", "confidence": 0.9}`,
	})
}

// Invoke returns the scripted output or error for the agent.
func (s *ScriptedInvoker) Invoke(_ context.Context, agent models.AgentID, _ models.SessionState) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Calls = append(s.Calls, agent)

	if err, ok := s.Errs[agent]; ok && err != nil {
		return "", &InvocationError{Agent: agent, Err: err}
	}
	out, ok := s.Outputs[agent]
	if !ok {
		return "", &InvocationError{Agent: agent, Err: fmt.Errorf("no scripted output")}
	}
	return out, nil
}

// CallCount returns how many invocations have been recorded.
func (s *ScriptedInvoker) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}
