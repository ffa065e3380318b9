package config

import (
	"os"
	"sync"
	"time"
)

// Watcher polls the default and profile files and reloads the balance when
// either modification time moves forward.
type Watcher struct {
	loader   *Loader
	profile  string
	interval time.Duration
	onReload func(Balance, error)

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
	mtimes   map[string]time.Time
	primed   bool
}

// NewWatcher builds a watcher; onReload receives the fresh balance, or the
// error that kept it from loading.
func NewWatcher(l *Loader, profile string, interval time.Duration, onReload func(Balance, error)) *Watcher {
	return &Watcher{
		loader:   l,
		profile:  profile,
		interval: interval,
		onReload: onReload,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		mtimes:   make(map[string]time.Time),
	}
}

func (w *Watcher) paths() []string {
	ps := []string{w.loader.paths.DefaultPath()}
	if w.profile != "" {
		ps = append(ps, w.loader.paths.ProfilePath(w.profile))
	}
	return ps
}

// Start begins polling in a goroutine.
func (w *Watcher) Start() {
	w.scan()
	go func() {
		defer close(w.doneCh)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if w.scan() {
					w.reload()
				}
			case <-w.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the watcher and waits for the poll loop to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
	})
}

// scan records mtimes and reports whether any file changed or appeared
// since the previous scan. The first scan only primes the cache.
func (w *Watcher) scan() bool {
	changed := false
	for _, p := range w.paths() {
		fi, err := os.Stat(p)
		if err != nil {
			continue
		}
		mt := fi.ModTime()
		last, seen := w.mtimes[p]
		if !seen || mt.After(last) {
			w.mtimes[p] = mt
			changed = changed || w.primed
		}
	}
	w.primed = true
	return changed
}

func (w *Watcher) reload() {
	w.loader.Invalidate()
	b, err := w.loader.Load(w.profile)
	if w.onReload != nil {
		w.onReload(b, err)
	}
}
