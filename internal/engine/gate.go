package engine

import (
	"context"
	"sync"

	"github.com/quillworks/quill/internal/selector"
)

// humanGate is the suspension point where automatic progression stops
// pending a human-supplied string. The loop arms the gate and blocks in
// Wait; Submit hands over exactly one input and clears the pending state.
type humanGate struct {
	// mu protects all fields.
	mu sync.Mutex
	// cond signals Wait when input arrives or the context is cancelled.
	cond *sync.Cond
	// armed indicates the loop is suspended and input is expected.
	armed bool
	// role is the capacity the human acts in while armed.
	role selector.HumanRole
	// input holds the submitted text until the loop consumes it.
	input string
	// hasInput indicates input is ready for consumption.
	hasInput bool
}

func newHumanGate() *humanGate {
	g := &humanGate{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Arm marks the gate as pending input for the given role.
func (g *humanGate) Arm(role selector.HumanRole) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.armed = true
	g.role = role
}

// Armed reports whether input is pending and, if so, for which role.
func (g *humanGate) Armed() (bool, selector.HumanRole) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.armed, g.role
}

// Submit hands one input string to the waiting loop and clears the
// pending indicator. Returns false if the gate is not armed.
func (g *humanGate) Submit(text string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.armed {
		return false
	}
	g.armed = false
	g.input = text
	g.hasInput = true
	g.cond.Broadcast()
	return true
}

// Wait blocks until input is submitted or the context is cancelled.
// There is no timeout: the session stays suspended indefinitely.
func (g *humanGate) Wait(ctx context.Context) (string, error) {
	g.mu.Lock()

	if !g.hasInput {
		// One goroutine wakes the cond if the context is cancelled.
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				g.mu.Lock()
				g.cond.Broadcast()
				g.mu.Unlock()
			case <-done:
			}
		}()

		for !g.hasInput {
			g.cond.Wait()
			if ctx.Err() != nil {
				close(done)
				g.mu.Unlock()
				return "", ctx.Err()
			}
		}
		close(done)
	}

	text := g.input
	g.input = ""
	g.hasInput = false
	g.mu.Unlock()
	return text, nil
}
