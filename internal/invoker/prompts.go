package invoker

import (
	"fmt"
	"strings"

	"github.com/quillworks/quill/pkg/models"
)

// systemPrompt returns the per-agent system prompt. Each agent is a single
// specialized inference call and owns exactly one artifact.
func systemPrompt(agent models.AgentID) string {
	switch agent {
	case models.AgentCurriculumPlanner:
		return "You are a curriculum planner. Produce a short, ordered lesson plan " +
			"for the given topic at the given difficulty. Plain text, numbered steps."
	case models.AgentConceptExplainer:
		return "You are a patient teacher. Explain the topic following the lesson plan, " +
			"pitched exactly at the stated difficulty level."
	case models.AgentQuizGenerator:
		return "You are a quiz writer. Write a short multiple-choice quiz (3-5 questions) " +
			"covering the explanation. Do not include the answers."
	case models.AgentFeedbackAnalyzer:
		return "You are a grader. Compare the student's answers against the quiz and " +
			"explanation. Point out what was right, what was wrong, and why."
	case models.AgentMotivator:
		return "You are an encouraging coach. Write a brief motivational message " +
			"reflecting the student's feedback. Two or three sentences."
	case models.AgentQualityReviewer:
		return "You are a quality reviewer for a tutoring session. Judge whether the " +
			"session content is accurate, level-appropriate, and coherent. Respond with " +
			`a single JSON object and nothing else: {"approved": bool, "comments": string, ` +
			`"confidence": number between 0 and 1}.`
	default:
		return ""
	}
}

// userPrompt renders the session state into the agent's user message. Only
// the artifacts an agent needs are included.
func userPrompt(agent models.AgentID, s models.SessionState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\nDifficulty: %s\n", s.Topic, s.Difficulty)

	section := func(name, body string) {
		if body != "" {
			fmt.Fprintf(&b, "\n## %s\n%s\n", name, body)
		}
	}

	switch agent {
	case models.AgentCurriculumPlanner:
		// Topic and difficulty are all the planner gets.
	case models.AgentConceptExplainer:
		section("Lesson plan", s.LessonPlan)
	case models.AgentQuizGenerator:
		section("Lesson plan", s.LessonPlan)
		section("Explanation", s.Explanation)
	case models.AgentFeedbackAnalyzer:
		section("Explanation", s.Explanation)
		section("Quiz", s.Quiz)
		section("Student answers", s.StudentAnswers)
	case models.AgentMotivator:
		section("Feedback", s.Feedback)
	case models.AgentQualityReviewer:
		section("Lesson plan", s.LessonPlan)
		section("Explanation", s.Explanation)
		section("Quiz", s.Quiz)
		section("Student answers", s.StudentAnswers)
		section("Feedback", s.Feedback)
		section("Motivational message", s.MotivatorMessage)
	}

	return b.String()
}
