package chat

import (
	"sync"

	"github.com/diogo/geminichat/internal/models"
)

// Observer receives a snapshot of the transcript after every change.
// Observers must not mutate the transcript they observe.
type Observer func(turns []models.Turn)

// Transcript is the ordered list of turns shown to the user.
// It only grows by Append and only changes in place through ReplaceLast.
type Transcript struct {
	mu    sync.RWMutex
	turns []models.Turn

	// notifyMu keeps observer calls in mutation order
	notifyMu  sync.Mutex
	observers []Observer
}

// NewTranscript returns a transcript seeded with turns
func NewTranscript(turns ...models.Turn) *Transcript {
	t := &Transcript{}
	t.turns = append(t.turns, turns...)
	return t
}

// WithObserver registers fn and returns the transcript
func (t *Transcript) WithObserver(fn Observer) *Transcript {
	if fn == nil {
		return t
	}
	t.notifyMu.Lock()
	t.observers = append(t.observers, fn)
	t.notifyMu.Unlock()
	return t
}

// Append adds turn at the end
func (t *Transcript) Append(turn models.Turn) {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	t.mu.Lock()
	t.turns = append(t.turns, turn)
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(snapshot)
}

// ReplaceLast overwrites the final turn
func (t *Transcript) ReplaceLast(turn models.Turn) error {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	t.mu.Lock()
	if len(t.turns) == 0 {
		t.mu.Unlock()
		return ErrEmptyTranscript
	}
	t.turns[len(t.turns)-1] = turn
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(snapshot)
	return nil
}

// Turns returns a copy of all turns
func (t *Transcript) Turns() []models.Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked()
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}

// Last returns the final turn, if any
func (t *Transcript) Last() (models.Turn, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.turns) == 0 {
		return models.Turn{}, false
	}
	return t.turns[len(t.turns)-1], true
}

// PendingCount returns how many placeholder turns the transcript holds
func (t *Transcript) PendingCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, turn := range t.turns {
		if turn.IsPending() {
			n++
		}
	}
	return n
}

func (t *Transcript) snapshotLocked() []models.Turn {
	out := make([]models.Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

func (t *Transcript) notify(snapshot []models.Turn) {
	for _, fn := range t.observers {
		fn(snapshot)
	}
}
