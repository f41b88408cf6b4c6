package service

import (
	"sync"
	"time"
)

// State labels the orchestrator's position in the draw lifecycle.
type State string

const (
	StateIdle      State = "idle"
	StateDrawing   State = "drawing"
	StateSettling  State = "settling"
	StateNotifying State = "notifying"
	StateAborted   State = "aborted"
)

// drawGuard is the in-process re-entrancy latch around one draw run. It only
// saves a redundant provider call; the unique index on draws is the
// authoritative guard across processes.
type drawGuard struct {
	mu    sync.Mutex
	held  bool
	state State
}

func newDrawGuard() *drawGuard {
	return &drawGuard{state: StateIdle}
}

// tryAcquire takes the latch; false means a run is in flight or cooling down.
func (g *drawGuard) tryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held {
		return false
	}
	g.held = true
	return true
}

func (g *drawGuard) release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.held = false
}

// releaseAfter keeps the latch held for a cooldown window so a still-running
// timer cannot immediately re-trigger a draw. A non-positive cooldown
// releases synchronously.
func (g *drawGuard) releaseAfter(cooldown time.Duration) {
	if cooldown <= 0 {
		g.release()
		return
	}
	time.AfterFunc(cooldown, g.release)
}

func (g *drawGuard) setState(s State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = s
}

func (g *drawGuard) currentState() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}
