package engine

import (
	"fmt"

	"github.com/quillworks/quill/internal/invoker"
	"github.com/quillworks/quill/pkg/models"
)

// applyFuncs maps each roster agent to the pure update it performs on the
// session state. Every agent writes exactly one designated field, except
// the quality reviewer which parses its structured judgment and writes the
// verdict, comments, and confidence together.
var applyFuncs = map[models.AgentID]func(*models.SessionState, string) error{
	models.AgentCurriculumPlanner: func(s *models.SessionState, out string) error {
		s.LessonPlan = out
		return nil
	},
	models.AgentConceptExplainer: func(s *models.SessionState, out string) error {
		s.Explanation = out
		return nil
	},
	models.AgentQuizGenerator: func(s *models.SessionState, out string) error {
		s.Quiz = out
		return nil
	},
	models.AgentFeedbackAnalyzer: func(s *models.SessionState, out string) error {
		s.Feedback = out
		return nil
	},
	models.AgentMotivator: func(s *models.SessionState, out string) error {
		s.MotivatorMessage = out
		return nil
	},
	models.AgentQualityReviewer: func(s *models.SessionState, out string) error {
		verdict, err := invoker.ParseReviewerVerdict(out)
		if err != nil {
			return err
		}
		approved := verdict.Approved
		s.ReviewerApproved = &approved
		s.ReviewerComments = verdict.Comments
		s.Confidence = verdict.Confidence
		return nil
	},
}

// applyOutput folds an agent's raw output into the state. A parse failure
// leaves the state untouched.
func applyOutput(s *models.SessionState, agent models.AgentID, out string) error {
	apply, ok := applyFuncs[agent]
	if !ok {
		return fmt.Errorf("no apply function for agent %s", agent)
	}
	return apply(s, out)
}
