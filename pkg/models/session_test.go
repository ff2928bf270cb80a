package models

import "testing"

func TestDifficultyValid(t *testing.T) {
	for _, d := range Difficulties {
		if !d.Valid() {
			t.Errorf("expected %q to be valid", d)
		}
	}

	if Difficulty("Novice").Valid() {
		t.Error("expected unknown difficulty to be invalid")
	}
	if Difficulty("").Valid() {
		t.Error("expected empty difficulty to be invalid")
	}
}

func TestAgentIDValid(t *testing.T) {
	for _, a := range Roster {
		if !a.Valid() {
			t.Errorf("expected %q to be valid", a)
		}
	}

	// Human and engine are log originators, not invocable agents.
	if AgentHuman.Valid() {
		t.Error("human must not be an invocable agent")
	}
	if AgentEngine.Valid() {
		t.Error("engine must not be an invocable agent")
	}
}

func TestNewSessionStateFresh(t *testing.T) {
	s := NewSessionState("sess-1", "Photosynthesis", DifficultyBeginner, 15)

	if s.TurnCount != 0 {
		t.Errorf("expected turnCount 0, got %d", s.TurnCount)
	}
	if s.MaxTurns != 15 {
		t.Errorf("expected maxTurns 15, got %d", s.MaxTurns)
	}
	if s.LessonPlan != "" || s.Explanation != "" || s.Quiz != "" {
		t.Error("expected all artifacts unset on a fresh state")
	}
	if _, ok := s.Approved(); ok {
		t.Error("expected reviewer verdict unset on a fresh state")
	}
}

func TestSessionStateClone(t *testing.T) {
	approved := true
	s := NewSessionState("sess-1", "Algebra", DifficultyAdvanced, 10)
	s.ReviewerApproved = &approved

	clone := s.Clone()
	*clone.ReviewerApproved = false

	if got, _ := s.Approved(); !got {
		t.Error("mutating a clone's verdict must not affect the original")
	}
}

func TestReviewerVerdictValid(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		want       bool
	}{
		{"zero", 0, true},
		{"mid", 0.8, true},
		{"one", 1, true},
		{"negative", -0.1, false},
		{"above one", 1.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ReviewerVerdict{Confidence: tt.confidence}
			if v.Valid() != tt.want {
				t.Errorf("Valid() with confidence %v = %v, want %v", tt.confidence, v.Valid(), tt.want)
			}
		})
	}
}
