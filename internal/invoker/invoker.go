// Package invoker provides the boundary to the external inference service.
// An Invoker turns (agent, state snapshot) into that agent's raw output;
// everything behind the interface is a collaborator concern.
package invoker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quillworks/quill/pkg/models"
)

// Invoker produces one agent's output from the current session state.
// Implementations must be safe for sequential reuse across turns; the
// engine never issues concurrent calls for a session.
type Invoker interface {
	Invoke(ctx context.Context, agent models.AgentID, state models.SessionState) (string, error)
}

// InvocationError reports a failed agent invocation: a transport/service
// failure, or reviewer output that could not be parsed as a verdict.
type InvocationError struct {
	// Agent is the agent whose invocation failed.
	Agent models.AgentID
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *InvocationError) Error() string {
	return fmt.Sprintf("invoking %s: %v", e.Agent, e.Err)
}

// Unwrap returns the underlying cause.
func (e *InvocationError) Unwrap() error {
	return e.Err
}

// ParseReviewerVerdict parses the quality reviewer's raw output into a
// structured verdict. The reviewer is instructed to answer with a bare JSON
// object; a leading/trailing markdown fence is tolerated since models add
// one despite instructions. Anything else is an invocation failure.
func ParseReviewerVerdict(raw string) (models.ReviewerVerdict, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var verdict models.ReviewerVerdict
	if err := json.Unmarshal([]byte(cleaned), &verdict); err != nil {
		return models.ReviewerVerdict{}, &InvocationError{
			Agent: models.AgentQualityReviewer,
			Err:   fmt.Errorf("parse verdict: %w", err),
		}
	}
	if !verdict.Valid() {
		return models.ReviewerVerdict{}, &InvocationError{
			Agent: models.AgentQualityReviewer,
			Err:   fmt.Errorf("verdict confidence %v out of range [0,1]", verdict.Confidence),
		}
	}
	return verdict, nil
}
