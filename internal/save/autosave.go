package save

import (
	"bytes"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Source provides consistent snapshots. Implementations must copy their
// state; the autosaver runs on its own goroutine.
type Source interface {
	Snapshot() Snapshot
}

// Autosaver periodically writes a Source to a Store. Unchanged snapshots
// are not rewritten.
type Autosaver struct {
	store    *Store
	src      Source
	interval time.Duration
	log      *slog.Logger

	mu   sync.Mutex
	last []byte

	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewAutosaver creates an autosaver for the given store, source and interval.
func NewAutosaver(store *Store, src Source, interval time.Duration, log *slog.Logger) *Autosaver {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Autosaver{
		store:    store,
		src:      src,
		interval: interval,
		log:      log,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins saving in a goroutine. Later calls are no-ops. A
// non-positive interval leaves only the final save done by Stop.
func (a *Autosaver) Start() {
	a.startOnce.Do(a.run)
}

func (a *Autosaver) run() {
	if a.interval <= 0 {
		a.log.Warn("autosave loop disabled", "interval", a.interval)
		return
	}
	a.started.Store(true)
	ticker := time.NewTicker(a.interval)
	go func() {
		defer close(a.doneCh)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := a.SaveNow(); err != nil {
					a.log.Error("autosave failed", "path", a.store.Path(), "err", err)
				}
			case <-a.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the loop and writes a final save.
func (a *Autosaver) Stop() error {
	a.stopOnce.Do(func() { close(a.stopCh) })
	if a.started.Load() {
		<-a.doneCh
	}
	_, err := a.SaveNow()
	return err
}

// SaveNow writes the current snapshot if it differs from the last one
// written. It reports whether a write happened.
func (a *Autosaver) SaveNow() (bool, error) {
	snap := a.src.Snapshot()

	// saved_at changes on every call and says nothing about progress
	probe := snap
	probe.SavedAt = time.Time{}
	key, err := Encode(probe)
	if err != nil {
		return false, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if bytes.Equal(key, a.last) {
		return false, nil
	}
	if err := a.store.Save(snap); err != nil {
		return false, err
	}
	a.last = key
	a.log.Info("autosaved", "path", a.store.Path(), "score", snap.Score, "workers", len(snap.Workers))
	return true, nil
}
