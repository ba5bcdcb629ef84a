package app

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when an exchange is moved to a phase that
// does not follow its current one.
var ErrInvalidTransition = errors.New("app: invalid exchange transition")

// Phase is the lifecycle position of one exchange.
type Phase int

const (
	PhaseCreated Phase = iota
	PhaseRunning
	PhaseCompleted
	PhaseFailed
	PhaseWritten
)

func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "created"
	case PhaseRunning:
		return "running"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	case PhaseWritten:
		return "written"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// exchange tracks one request/response cycle through
//
//	created -> running -> completed | failed -> written
//
// Written is terminal, so a second write attempt is always rejected.
type exchange struct {
	phase   Phase
	observe func(Phase)
}

func newExchange(observe func(Phase)) *exchange {
	return &exchange{phase: PhaseCreated, observe: observe}
}

func (e *exchange) transition(to Phase) error {
	if !allowed(e.phase, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, e.phase, to)
	}
	e.phase = to
	if e.observe != nil {
		e.observe(to)
	}
	return nil
}

func allowed(from, to Phase) bool {
	switch from {
	case PhaseCreated:
		return to == PhaseRunning
	case PhaseRunning:
		return to == PhaseCompleted || to == PhaseFailed
	case PhaseCompleted, PhaseFailed:
		return to == PhaseWritten
	default:
		return false
	}
}
