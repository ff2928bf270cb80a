package models

// Difficulty is the target level for a tutoring session.
type Difficulty string

const (
	// DifficultyToddler targets very young learners.
	DifficultyToddler Difficulty = "Toddler"
	// DifficultyBeginner targets learners new to the topic.
	DifficultyBeginner Difficulty = "Beginner"
	// DifficultyIntermediate targets learners with some background.
	DifficultyIntermediate Difficulty = "Intermediate"
	// DifficultyAdvanced targets experienced learners.
	DifficultyAdvanced Difficulty = "Advanced"
	// DifficultyExpert targets domain experts.
	DifficultyExpert Difficulty = "Expert"
)

// Difficulties lists all valid difficulty levels, lowest first.
var Difficulties = []Difficulty{
	DifficultyToddler,
	DifficultyBeginner,
	DifficultyIntermediate,
	DifficultyAdvanced,
	DifficultyExpert,
}

// Valid returns true if the difficulty is a known level.
func (d Difficulty) Valid() bool {
	for _, known := range Difficulties {
		if d == known {
			return true
		}
	}
	return false
}

// SessionState is the single source of truth for one tutoring session.
// Artifact fields start unset (empty string / nil) and are written exactly
// once by their designated agent; the engine owns all mutation.
type SessionState struct {
	// ID is the unique identifier for this session.
	ID string `json:"id"`
	// Topic is the subject of the session, set once at start.
	Topic string `json:"topic"`
	// Difficulty is the target level for generated content.
	Difficulty Difficulty `json:"difficulty"`
	// LessonPlan is the curriculum planner's output.
	LessonPlan string `json:"lesson_plan,omitempty"`
	// Explanation is the concept explainer's output.
	Explanation string `json:"explanation,omitempty"`
	// Quiz is the quiz generator's output.
	Quiz string `json:"quiz,omitempty"`
	// StudentAnswers is the human-supplied answer text.
	StudentAnswers string `json:"student_answers,omitempty"`
	// Feedback is the feedback analyzer's output.
	Feedback string `json:"feedback,omitempty"`
	// MotivatorMessage is the motivator's output.
	MotivatorMessage string `json:"motivator_message,omitempty"`
	// ReviewerApproved is the quality gate verdict. Tri-state: nil means
	// the reviewer has not run; false is a real rejection.
	ReviewerApproved *bool `json:"reviewer_approved,omitempty"`
	// ReviewerComments is the reviewer's rationale.
	ReviewerComments string `json:"reviewer_comments,omitempty"`
	// Confidence is the reviewer's confidence score in [0,1].
	Confidence float64 `json:"confidence"`
	// TurnCount is the number of completed agent invocations.
	TurnCount int `json:"turn_count"`
	// MaxTurns is the hard cap on TurnCount.
	MaxTurns int `json:"max_turns"`
}

// NewSessionState creates a fresh state with all artifacts unset.
func NewSessionState(id, topic string, difficulty Difficulty, maxTurns int) *SessionState {
	return &SessionState{
		ID:         id,
		Topic:      topic,
		Difficulty: difficulty,
		MaxTurns:   maxTurns,
	}
}

// Approved reports the reviewer verdict. The second return is false while
// the reviewer has not produced a verdict.
func (s *SessionState) Approved() (bool, bool) {
	if s.ReviewerApproved == nil {
		return false, false
	}
	return *s.ReviewerApproved, true
}

// Clone returns a copy of the state safe to hand to observers and agents.
func (s *SessionState) Clone() SessionState {
	out := *s
	if s.ReviewerApproved != nil {
		v := *s.ReviewerApproved
		out.ReviewerApproved = &v
	}
	return out
}
