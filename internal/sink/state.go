package sink

import (
	"fmt"
	"log/slog"
)

// State is a step of a file export.
type State string

const (
	StateIdle      State = "idle"
	StateCapturing State = "capturing"
	StateSaving    State = "saving"
	StateDone      State = "done"
	StateNotifying State = "notifying"
)

var transitions = map[State][]State{
	StateIdle:      {StateCapturing},
	StateCapturing: {StateSaving, StateNotifying},
	StateSaving:    {StateDone, StateNotifying},
	StateNotifying: {StateIdle},
}

// TransitionFunc observes export state changes.
type TransitionFunc func(from, to State)

// machine tracks one export attempt. It never returns to capturing on its own.
type machine struct {
	state   State
	observe TransitionFunc
	logger  *slog.Logger
}

func newMachine(observe TransitionFunc, logger *slog.Logger) *machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &machine{state: StateIdle, observe: observe, logger: logger}
}

// advance moves to next and logs an illegal transition instead of failing the export.
func (m *machine) advance(next State) {
	if err := m.to(next); err != nil {
		m.logger.Warn("export state", slog.Any("error", err))
	}
}

func (m *machine) to(next State) error {
	for _, allowed := range transitions[m.state] {
		if allowed == next {
			prev := m.state
			m.state = next
			if m.observe != nil {
				m.observe(prev, next)
			}
			return nil
		}
	}
	return fmt.Errorf("sink: illegal transition %s -> %s", m.state, next)
}
