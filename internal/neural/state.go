// Package neural wraps a pre-trained object-detection model behind the
// shared detection contract, with a lifecycle state machine governing when
// inference may run.
package neural

import (
	"fmt"
	"log"
	"sync"
)

// State enumerates the detector lifecycle states.
type State int

const (
	// StateOff means no load has been attempted or the model was unloaded.
	StateOff State = iota
	// StateLoading means a model load is in progress.
	StateLoading
	// StateReady means the model is loaded but detection is not running.
	StateReady
	// StateActive means detection is running.
	StateActive
	// StateError means loading or an unrecoverable failure occurred.
	// The state stays ERROR until a fresh load attempt re-enters LOADING.
	StateError
)

func (s State) String() string {
	switch s {
	case StateOff:
		return "off"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateActive:
		return "active"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// StateCell is a mutex-guarded (state, message) pair. One writer at a time;
// the pair is always read and written together so a reader never observes a
// stale message next to a new state.
type StateCell struct {
	mu      sync.Mutex
	state   State
	message string
}

// NewStateCell returns a cell in the OFF state.
func NewStateCell() *StateCell {
	return &StateCell{state: StateOff}
}

// Get returns the current state and error message atomically.
// The message is empty unless the state is ERROR.
func (c *StateCell) Get() (State, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.message
}

// BeginLoad transitions to LOADING from any state, clearing any previous
// error. This is the only way out of ERROR.
func (c *StateCell) BeginLoad() {
	c.set(StateLoading, "")
}

// SetReady transitions to READY after a successful load.
func (c *StateCell) SetReady() {
	c.set(StateReady, "")
}

// SetError transitions to ERROR with a human-readable message.
func (c *StateCell) SetError(message string) {
	c.set(StateError, message)
}

// SetOff transitions to OFF after an unload.
func (c *StateCell) SetOff() {
	c.set(StateOff, "")
}

// Enable transitions READY to ACTIVE. Enabling an already-active detector is
// a no-op so repeated toggling accumulates no side state.
func (c *StateCell) Enable() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateActive:
		return nil
	case StateReady:
		log.Printf("neural: state %s -> %s", c.state, StateActive)
		c.state = StateActive
		c.message = ""
		return nil
	default:
		return fmt.Errorf("cannot enable detection in state %s", c.state)
	}
}

// Disable transitions ACTIVE back to READY. A no-op in any other state.
func (c *StateCell) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateActive {
		log.Printf("neural: state %s -> %s", c.state, StateReady)
		c.state = StateReady
	}
}

// IsActive reports whether inference is currently enabled. Callers must
// check this before invoking Infer; Infer does not gate itself on state.
func (c *StateCell) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateActive
}

// IsReady reports whether the model is loaded and detection is available.
func (c *StateCell) IsReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateReady
}

func (c *StateCell) set(state State, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != state {
		log.Printf("neural: state %s -> %s", c.state, state)
	}
	c.state = state
	c.message = message
	if message != "" {
		log.Printf("neural: %s", message)
	}
}
