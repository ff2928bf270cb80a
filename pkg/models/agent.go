package models

// AgentID identifies one named step of the tutoring pipeline. The roster is
// closed: each agent is backed by a single inference call and produces or
// evaluates exactly one artifact.
type AgentID string

const (
	// AgentCurriculumPlanner produces the lesson plan.
	AgentCurriculumPlanner AgentID = "curriculum_planner"
	// AgentConceptExplainer produces the explanation.
	AgentConceptExplainer AgentID = "concept_explainer"
	// AgentQuizGenerator produces the quiz.
	AgentQuizGenerator AgentID = "quiz_generator"
	// AgentFeedbackAnalyzer grades the student's answers.
	AgentFeedbackAnalyzer AgentID = "feedback_analyzer"
	// AgentMotivator produces the motivational message.
	AgentMotivator AgentID = "motivator"
	// AgentQualityReviewer judges the session and emits a structured verdict.
	AgentQualityReviewer AgentID = "quality_reviewer"
	// AgentHuman marks log entries that originate from the human, not an
	// inference call. It is never selected for invocation.
	AgentHuman AgentID = "human"
	// AgentEngine marks log entries emitted by the engine itself.
	AgentEngine AgentID = "engine"
)

// Roster lists the invocable agents in pipeline order.
var Roster = []AgentID{
	AgentCurriculumPlanner,
	AgentConceptExplainer,
	AgentQuizGenerator,
	AgentFeedbackAnalyzer,
	AgentMotivator,
	AgentQualityReviewer,
}

// Valid returns true if the agent is an invocable roster member.
func (a AgentID) Valid() bool {
	for _, known := range Roster {
		if a == known {
			return true
		}
	}
	return false
}

// DisplayName returns a human-readable name for the agent.
func (a AgentID) DisplayName() string {
	switch a {
	case AgentCurriculumPlanner:
		return "Curriculum Planner"
	case AgentConceptExplainer:
		return "Concept Explainer"
	case AgentQuizGenerator:
		return "Quiz Generator"
	case AgentFeedbackAnalyzer:
		return "Feedback Analyzer"
	case AgentMotivator:
		return "Motivator"
	case AgentQualityReviewer:
		return "Quality Reviewer"
	case AgentHuman:
		return "Human"
	case AgentEngine:
		return "Engine"
	default:
		return string(a)
	}
}

// ReviewerVerdict is the structured judgment returned by the quality
// reviewer. It is parsed from the agent's raw JSON output and applied to
// the session state atomically.
type ReviewerVerdict struct {
	// Approved is the quality gate decision.
	Approved bool `json:"approved"`
	// Comments is the reviewer's rationale.
	Comments string `json:"comments"`
	// Confidence is the reviewer's confidence in [0,1].
	Confidence float64 `json:"confidence"`
}

// Valid returns true if the confidence score is in range.
func (v ReviewerVerdict) Valid() bool {
	return v.Confidence >= 0 && v.Confidence <= 1
}
