package models

import "time"

// LogCategory classifies an activity log entry.
type LogCategory string

const (
	// LogStatus announces an agent starting or the engine changing phase.
	LogStatus LogCategory = "status"
	// LogOutput carries the raw content an agent returned.
	LogOutput LogCategory = "output"
	// LogDecision records a routing decision, such as suspending for a human.
	LogDecision LogCategory = "decision"
	// LogError records a failed invocation.
	LogError LogCategory = "error"
)

// LogEntry is one record in a session's append-only activity log. The log
// is observability only; routing decisions never read it back.
type LogEntry struct {
	// ID is the unique identifier for this entry.
	ID string `json:"id"`
	// Timestamp is when the entry was appended.
	Timestamp time.Time `json:"timestamp"`
	// Agent is the originating agent.
	Agent AgentID `json:"agent"`
	// Content is the free-text body of the entry.
	Content string `json:"content"`
	// Category classifies the entry.
	Category LogCategory `json:"category"`
	// Rationale optionally explains why the entry was recorded.
	Rationale string `json:"rationale,omitempty"`
}
