// Package selector decides the next step of a tutoring session. The
// decision function is pure: it reads a state snapshot and returns exactly
// one decision, with no side effects, so it can be tested in isolation.
package selector

import "github.com/quillworks/quill/pkg/models"

// ApprovalConfidenceThreshold is the minimum reviewer confidence for an
// approved session to terminate as a success.
const ApprovalConfidenceThreshold = 0.8

// Kind is the category of a routing decision.
type Kind string

const (
	// KindRunAgent schedules a specific agent for the next turn.
	KindRunAgent Kind = "run_agent"
	// KindAwaitHuman suspends the loop until the human supplies input.
	KindAwaitHuman Kind = "await_human"
	// KindTerminate stops the session permanently.
	KindTerminate Kind = "terminate"
)

// HumanRole is the capacity in which the human is asked to act while the
// session is suspended.
type HumanRole string

const (
	// RoleStudent means the human answers the quiz.
	RoleStudent HumanRole = "student"
	// RoleSupervisor means the human provides guidance or an override.
	RoleSupervisor HumanRole = "supervisor"
)

// Hint returns the prompt shown next to the pending-input indicator.
func (r HumanRole) Hint() string {
	if r == RoleStudent {
		return "acting as student — answer the quiz"
	}
	return "acting as supervisor — provide guidance/override"
}

// Decision is the selector's verdict for a given state.
type Decision struct {
	// Kind is the decision category.
	Kind Kind
	// Agent is the agent to invoke when Kind is KindRunAgent.
	Agent models.AgentID
	// Role is the human's role when Kind is KindAwaitHuman.
	Role HumanRole
	// Reason is a short explanation used for logging.
	Reason string
}

// SelectNext maps a session state to the next decision. Rules are evaluated
// in order and the first match wins; the function is total over valid states.
func SelectNext(s models.SessionState) Decision {
	if s.TurnCount >= s.MaxTurns {
		return Decision{Kind: KindTerminate, Reason: "turn limit reached"}
	}
	if s.LessonPlan == "" {
		return Decision{Kind: KindRunAgent, Agent: models.AgentCurriculumPlanner, Reason: "lesson plan missing"}
	}
	if s.Explanation == "" {
		return Decision{Kind: KindRunAgent, Agent: models.AgentConceptExplainer, Reason: "explanation missing"}
	}
	if s.Quiz == "" {
		return Decision{Kind: KindRunAgent, Agent: models.AgentQuizGenerator, Reason: "quiz missing"}
	}
	if s.StudentAnswers == "" {
		return Decision{Kind: KindAwaitHuman, Role: RoleStudent, Reason: "quiz awaiting student answers"}
	}
	if s.Feedback == "" {
		return Decision{Kind: KindRunAgent, Agent: models.AgentFeedbackAnalyzer, Reason: "answers ungraded"}
	}
	if s.MotivatorMessage == "" {
		return Decision{Kind: KindRunAgent, Agent: models.AgentMotivator, Reason: "motivation missing"}
	}

	approved, decided := s.Approved()
	if !decided {
		return Decision{Kind: KindRunAgent, Agent: models.AgentQualityReviewer, Reason: "review pending"}
	}
	if approved && s.Confidence >= ApprovalConfidenceThreshold {
		return Decision{Kind: KindTerminate, Reason: "approved"}
	}
	if !approved {
		return Decision{Kind: KindAwaitHuman, Role: RoleSupervisor, Reason: "review rejected"}
	}

	// Approved but below the confidence threshold. There is no remediation
	// path for this arm; looping back to review would re-run the reviewer on
	// identical state, so the session terminates with a distinct outcome.
	return Decision{Kind: KindTerminate, Reason: "approved with low confidence"}
}

// HumanRoleFor returns the role the human plays for the current state. The
// routing condition is the same one SelectNext uses to pick the prompt: the
// human is a student exactly when the quiz is set and unanswered.
func HumanRoleFor(s models.SessionState) HumanRole {
	if s.Quiz != "" && s.StudentAnswers == "" {
		return RoleStudent
	}
	return RoleSupervisor
}
