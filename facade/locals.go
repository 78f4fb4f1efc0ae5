// File: facade/locals.go
// Unified facade layer for the hioload-local library.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// This file defines the Locals struct, which aggregates the library's
// components behind a single facade: the context-carrying executor, the
// root execution context, the dynamic config store, and the metrics
// registry. The facade exposes methods to spawn contexts, submit plain and
// context-carrying tasks, publish metrics, and shut down.

package facade

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/rsms/go-log"
	"gopkg.in/yaml.v3"

	"github.com/momentics/hioload-local/api"
	"github.com/momentics/hioload-local/control"
	"github.com/momentics/hioload-local/exec"
	"github.com/momentics/hioload-local/internal/concurrency"
	"github.com/momentics/hioload-local/local"
)

// Config holds parameters immutable per run.
type Config struct {
	NumWorkers    int  `yaml:"num_workers"`    // Number of executor worker goroutines
	PinWorkers    bool `yaml:"pin_workers"`    // Whether to pin worker threads to CPUs
	EnableMetrics bool `yaml:"enable_metrics"` // Whether to publish metrics snapshots
}

// DefaultConfig returns default configuration values.
func DefaultConfig() *Config {
	return &Config{
		NumWorkers:    runtime.NumCPU(),
		PinWorkers:    false,
		EnableMetrics: true,
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config yaml unmarshal: %w", err)
	}
	return cfg, nil
}

// Locals is the main facade type. It owns the worker pool and the root
// execution context; contexts spawned from the facade inherit the root's
// inheritable values.
type Locals struct {
	Logger *log.Logger // optional; nil means silent

	executor *concurrency.Executor
	confstor *control.ConfigStore
	metrics  *control.MetricsRegistry
	root     *exec.Context
	config   *Config

	mu     sync.RWMutex // protects closed flag
	closed bool
}

// New constructs Locals with the given configuration. A nil cfg selects
// defaults.
func New(cfg *Config) (*Locals, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.NumWorkers < 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "negative worker count").
			WithContext("num_workers", cfg.NumWorkers)
	}
	l := &Locals{
		executor: concurrency.NewExecutor(cfg.NumWorkers, cfg.PinWorkers),
		confstor: control.NewConfigStore(),
		metrics:  control.NewMetricsRegistry(),
		root:     exec.NewContext(),
		config:   cfg,
	}
	l.confstor.SetConfig(map[string]any{
		"num_workers":    l.executor.NumWorkers(),
		"pin_workers":    cfg.PinWorkers,
		"enable_metrics": cfg.EnableMetrics,
	})
	return l, nil
}

// Root returns the facade's root execution context. Values set on its
// inheritable tokens flow into every context spawned via NewContext.
func (l *Locals) Root() *exec.Context {
	return l.root
}

// NewContext spawns a child of the root context with the root's inheritable
// values propagated.
func (l *Locals) NewContext() *exec.Context {
	return l.root.Spawn()
}

// Executor returns the underlying executor contract.
func (l *Locals) Executor() api.Executor {
	return l.executor
}

// Control returns the dynamic config store.
func (l *Locals) Control() *control.ConfigStore {
	return l.confstor
}

// Submit schedules a task on some worker's context.
func (l *Locals) Submit(task api.TaskFunc) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return api.ErrExecutorClosed
	}
	return l.executor.Submit(task)
}

// SubmitFrom schedules a task carrying from's inheritable values into the
// executing worker's context, restored after the task on every exit path.
func (l *Locals) SubmitFrom(from *exec.Context, task api.TaskFunc) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return api.ErrExecutorClosed
	}
	return l.executor.SubmitFrom(from, task)
}

// Metrics publishes the current counters into the registry and returns a
// snapshot: executor stats plus library-wide token and context counts.
func (l *Locals) Metrics() map[string]any {
	if l.config.EnableMetrics {
		batch := make(map[string]any)
		for k, v := range l.executor.Stats() {
			batch["executor_"+k] = v
		}
		batch["tokens_created"] = local.TokensCreated()
		batch["contexts_spawned"] = exec.ContextsSpawned()
		l.metrics.SetAll(batch)
	}
	return l.metrics.GetSnapshot()
}

// Close shuts down the executor. Contexts and their stores are reclaimed by
// normal ownership release; no per-entry teardown is required.
func (l *Locals) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	l.executor.Close()
	l.root.Cancel()
	if l.Logger != nil {
		l.Logger.Info("hioload-local runtime closed")
	}
	return nil
}
