package chat

import (
	"time"

	apierrors "github.com/diogo/geminichat/internal/errors"
)

// State tells whether a request is in flight
type State int

const (
	Idle State = iota
	Sending
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sending:
		return "sending"
	default:
		return "unknown"
	}
}

// Outcome is how an exchange ended
type Outcome int

const (
	// Resolved means the placeholder now holds the response text
	Resolved Outcome = iota + 1
	// Failed means the placeholder now holds the failure text
	Failed
	// Discarded means the controller was closed first and the transcript was left alone
	Discarded
)

func (o Outcome) String() string {
	switch o {
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	case Discarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Result describes one finished exchange
type Result struct {
	ExchangeID string
	Outcome    Outcome
	// Text is what replaced the placeholder: the response or the failure text
	Text     string
	Err      error
	Kind     apierrors.Kind
	Duration time.Duration
}
