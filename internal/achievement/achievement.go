// Package achievement defines the notification sink the economy fires
// milestone events into. Display and persistence of unlocked achievements
// belong to the host.
package achievement

import "sync"

// ID names a milestone.
type ID string

const (
	FirstWorker ID = "first_worker"
	FiveWorkers ID = "five_workers"
	AllUpgrades ID = "all_upgrades"
)

// Sink receives fire-and-forget milestone notifications.
type Sink interface {
	Notify(id ID)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Notify(ID) {}

// OrNop returns s, or a Nop sink when s is nil.
func OrNop(s Sink) Sink {
	if s == nil {
		return Nop{}
	}
	return s
}

// Recorder keeps unlocked milestones in first-seen order. Repeated
// notifications for the same id are ignored.
type Recorder struct {
	mu       sync.Mutex
	seen     map[ID]bool
	unlocked []ID
}

func NewRecorder() *Recorder {
	return &Recorder{seen: make(map[ID]bool)}
}

func (r *Recorder) Notify(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seen[id] {
		return
	}
	r.seen[id] = true
	r.unlocked = append(r.unlocked, id)
}

// Unlocked returns a copy of the unlocked ids.
func (r *Recorder) Unlocked() []ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ID(nil), r.unlocked...)
}

// Has reports whether id was unlocked.
func (r *Recorder) Has(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seen[id]
}
