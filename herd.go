// Package herd supervises long-running AI coding agents as detached OS
// processes: spawn with a generated prompt, track in a durable registry,
// report liveness, stream output, terminate on request.
package herd

import (
	"context"
	"io"
	"log/slog"

	"github.com/herdctl/herd/internal/agent"
	"github.com/herdctl/herd/internal/backend"
	"github.com/herdctl/herd/internal/config"
	"github.com/herdctl/herd/internal/history"
	"github.com/herdctl/herd/internal/registry"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Config = config.Config

type Record = registry.Record

type SpawnOptions = agent.SpawnOptions

type StopResult = agent.StopResult

type StopAllResult = agent.StopAllResult

type CleanResult = agent.CleanResult

type BatchResult = agent.BatchResult

type BatchItem = agent.BatchItem

type HistorySink = history.Sink

// Registry status values.
const (
	StatusRunning = registry.StatusRunning
	StatusStopped = registry.StatusStopped
)

// Sentinel errors surfaced by lifecycle operations.
var (
	ErrInvalidName        = agent.ErrInvalidName
	ErrDuplicateAgent     = agent.ErrDuplicateAgent
	ErrAgentNotFound      = agent.ErrAgentNotFound
	ErrInvalidCount       = agent.ErrInvalidCount
	ErrAgentBinaryMissing = agent.ErrAgentBinaryMissing
	ErrSignalFailure      = agent.ErrSignalFailure
	ErrCorruptRegistry    = registry.ErrCorruptRegistry
)

// EnvBaseDir is the environment variable overriding the state directory.
const EnvBaseDir = config.EnvBaseDir

// LoadConfig resolves the state directory and reads the optional config file.
func LoadConfig(baseDir string) (*Config, error) { return config.Load(baseDir) }

// Manager is a thin facade over internal/agent.Manager.
// It provides a stable public API for embedding.
type Manager struct{ inner *agent.Manager }

func New(cfg *Config) *Manager { return &Manager{inner: agent.New(cfg)} }

func (m *Manager) SetLogger(l *slog.Logger)     { m.inner.SetLogger(l) }
func (m *Manager) SetHistorySink(s HistorySink) { m.inner.SetHistorySink(s) }
func (m *Manager) SetBackend(b backend.Backend) { m.inner.SetBackend(b) }

func (m *Manager) Spawn(name, task string, opts SpawnOptions) (Record, error) {
	return m.inner.Spawn(name, task, opts)
}

func (m *Manager) SpawnMany(count int, prefix, taskTemplate string, opts SpawnOptions) (BatchResult, error) {
	return m.inner.SpawnMany(count, prefix, taskTemplate, opts)
}

func (m *Manager) Stop(name string) (StopResult, error) { return m.inner.Stop(name) }

func (m *Manager) StopAll() (StopAllResult, error) { return m.inner.StopAll() }

func (m *Manager) List() ([]Record, error) { return m.inner.List() }

func (m *Manager) Clean() (CleanResult, error) { return m.inner.Clean() }

func (m *Manager) Logs(name string, w io.Writer) error { return m.inner.Logs(name, w) }

func (m *Manager) Attach(ctx context.Context, name string, w io.Writer) error {
	return m.inner.Attach(ctx, name, w)
}
