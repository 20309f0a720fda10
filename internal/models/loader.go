package models

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// Backend loads a set of bundles. It must either load all of them or fail.
type Backend interface {
	LoadBundles(ctx context.Context, dir string, bundles []Bundle) error
}

// State of a Loader.
type State string

const (
	StatePending State = "pending"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateFailed  State = "failed"
)

// Status is a snapshot of the loader for status endpoints and the CLI.
type Status struct {
	State    State    `json:"state"`
	Dir      string   `json:"dir"`
	Bundles  []Bundle `json:"bundles"`
	Error    string   `json:"error,omitempty"`
	Duration string   `json:"duration,omitempty"`
}

// Loader loads the model bundles exactly once.
type Loader struct {
	backend  Backend
	dir      string
	manifest Manifest

	once sync.Once
	done chan struct{}

	mu       sync.RWMutex
	state    State
	err      error
	duration time.Duration
}

// NewLoader creates a loader for the bundles in manifest stored in dir.
func NewLoader(backend Backend, dir string, manifest Manifest) *Loader {
	return &Loader{
		backend:  backend,
		dir:      dir,
		manifest: manifest,
		done:     make(chan struct{}),
		state:    StatePending,
	}
}

// Start begins loading in the background. Later calls are no-ops.
func (l *Loader) Start(ctx context.Context) {
	l.once.Do(func() {
		l.setState(StateLoading, nil, 0)
		go l.run(ctx)
	})
}

// Load starts loading if needed and waits for it to finish.
func (l *Loader) Load(ctx context.Context) error {
	l.Start(ctx)
	return l.Wait(ctx)
}

// Wait blocks until loading finished or ctx is done.
func (l *Loader) Wait(ctx context.Context) error {
	select {
	case <-l.done:
		return l.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loader) run(ctx context.Context) {
	defer close(l.done)

	start := time.Now()
	err := l.backend.LoadBundles(ctx, l.dir, l.manifest.Bundles)
	elapsed := time.Since(start)

	if err != nil {
		log.Printf("Models: failed to load from %s: %v", l.dir, err)
		l.setState(StateFailed, fmt.Errorf("load models: %w", err), elapsed)
		return
	}

	log.Printf("Models: loaded %d bundles from %s in %s", len(l.manifest.Bundles), l.dir, elapsed.Round(time.Millisecond))
	l.setState(StateLoaded, nil, elapsed)
}

func (l *Loader) setState(s State, err error, d time.Duration) {
	l.mu.Lock()
	l.state = s
	l.err = err
	l.duration = d
	l.mu.Unlock()
}

// Loaded reports whether every bundle loaded successfully.
func (l *Loader) Loaded() bool {
	return l.State() == StateLoaded
}

// State returns the current state.
func (l *Loader) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Err returns the load failure, if any.
func (l *Loader) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.state == StatePending || l.state == StateLoading {
		return errors.New("models still loading")
	}
	return l.err
}

// Status returns a snapshot of the loader.
func (l *Loader) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()

	st := Status{
		State:   l.state,
		Dir:     l.dir,
		Bundles: l.manifest.Bundles,
	}
	if l.err != nil {
		st.Error = l.err.Error()
	}
	if l.duration > 0 {
		st.Duration = l.duration.Round(time.Millisecond).String()
	}
	return st
}
