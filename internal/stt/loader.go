package stt

import "sync"

// Loader hands out a single shared engine instance, loading the model on
// first use. Model loads are heavy; concurrent callers block on one load
// instead of each loading their own copy.
type Loader struct {
	mu     sync.Mutex
	engine Engine
	newFn  func() Engine
}

// NewLoader creates a loader that builds engines with newFn.
func NewLoader(newFn func() Engine) *Loader {
	return &Loader{newFn: newFn}
}

// Get returns the shared engine, initializing it with cfg on first call.
// Later calls return the same engine and ignore cfg.
func (l *Loader) Get(cfg Config) (Engine, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.engine != nil {
		return l.engine, nil
	}

	engine := l.newFn()
	if err := engine.Initialize(cfg); err != nil {
		return nil, err
	}
	l.engine = engine
	return engine, nil
}

// Close tears down the shared engine, if loaded.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.engine == nil {
		return nil
	}
	err := l.engine.Close()
	l.engine = nil
	return err
}

// DefaultLoader is the process-wide Vosk engine loader.
var DefaultLoader = NewLoader(func() Engine { return NewVoskEngine() })
