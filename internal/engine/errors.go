package engine

import "fmt"

// InvalidInputError reports input rejected synchronously at the call site:
// an empty topic, empty human input, or a human submission while the
// session is not suspended. It never reaches the activity log.
type InvalidInputError struct {
	// Reason describes what was wrong with the input.
	Reason string
}

// Error implements the error interface.
func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}
