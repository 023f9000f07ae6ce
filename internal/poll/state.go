package poll

import (
	"errors"
	"fmt"
)

// State identifies a step of the poll-creation dialog. The wire form is the
// numeric tag persisted in the states table.
type State string

const (
	// StateElse marks sessions outside any creation flow.
	StateElse State = "-1"
	// StateStart is the resting state; also the default for absent records.
	StateStart State = "0"
	// StateEnterTitle expects the poll title as the next message.
	StateEnterTitle State = "1"
	// StateEnterOption accumulates options until /stop.
	StateEnterOption State = "2"
	// StateEnterShowOption waits for the show/anon/publish chooser click.
	StateEnterShowOption State = "3"
)

// ErrCorruptState reports a stored session state outside the closed set.
// It is fatal to the event being processed, never silently defaulted.
var ErrCorruptState = errors.New("poll: corrupt session state")

// ParseState maps a stored tag back to its state. An absent record reads as
// StateStart.
func ParseState(raw string) (State, error) {
	switch State(raw) {
	case StateElse, StateStart, StateEnterTitle, StateEnterOption, StateEnterShowOption:
		return State(raw), nil
	case State(""):
		return StateStart, nil
	}
	return StateStart, fmt.Errorf("%w: %q", ErrCorruptState, raw)
}
