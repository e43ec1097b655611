// Package agent orchestrates the lifecycle of tracked agent processes: spawn,
// stop, liveness reconciliation, and cleanup. It is the only writer of the
// registry document.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/herdctl/herd/internal/backend"
	"github.com/herdctl/herd/internal/config"
	"github.com/herdctl/herd/internal/env"
	"github.com/herdctl/herd/internal/history"
	"github.com/herdctl/herd/internal/registry"
)

// SpawnOptions carries the optional knobs of a spawn.
type SpawnOptions struct {
	Type    string // agent type, resolved through config; empty means default
	WorkDir string // working directory for the agent process
}

// Manager orchestrates spawn, stop, and cleanup against the registry store
// and the process backend. One Manager per command invocation; it holds no
// cross-invocation state.
type Manager struct {
	cfg     *config.Config
	store   *registry.Store
	backend backend.Backend
	sink    history.Sink
	log     *slog.Logger
}

func New(cfg *config.Config) *Manager {
	return &Manager{
		cfg:     cfg,
		store:   registry.NewStore(cfg.RegistryPath()),
		backend: backend.New(),
		log:     slog.Default(),
	}
}

func (m *Manager) SetLogger(l *slog.Logger)      { m.log = l }
func (m *Manager) SetBackend(b backend.Backend)  { m.backend = b }
func (m *Manager) SetStore(s *registry.Store)    { m.store = s }
func (m *Manager) SetHistorySink(s history.Sink) { m.sink = s }

// Spawn validates the name, launches the agent detached with a generated
// prompt on stdin and its log file as combined output, and records it in the
// registry. On a duplicate or invalid name nothing is written and no process
// is started.
//
// If the registry save fails after the process has launched, the process is
// orphaned: running but unrecorded. No compensating kill is attempted (it
// could destroy useful work); the condition is reported loudly instead.
func (m *Manager) Spawn(name, task string, opts SpawnOptions) (registry.Record, error) {
	if !ValidName(name) {
		return registry.Record{}, fmt.Errorf("%w: %q (allowed: letters, digits, '_', '-')", ErrInvalidName, name)
	}
	argv := m.cfg.CommandFor(opts.Type)
	if _, err := exec.LookPath(argv[0]); err != nil {
		return registry.Record{}, fmt.Errorf("%w: %q is not on PATH", ErrAgentBinaryMissing, argv[0])
	}
	if err := m.cfg.EnsureDirs(); err != nil {
		return registry.Record{}, err
	}

	promptPath := m.cfg.PromptPath(name)
	logPath := m.cfg.LogPath(name)

	var rec registry.Record
	launchedPID := 0
	err := m.store.Update(func(reg *registry.Registry) (bool, error) {
		if _, ok := reg.Find(name); ok {
			return false, fmt.Errorf("%w: %q", ErrDuplicateAgent, name)
		}
		if err := os.WriteFile(promptPath, []byte(BuildPrompt(name, task)), 0o600); err != nil {
			return false, fmt.Errorf("write prompt: %w", err)
		}
		stdin, err := os.Open(promptPath)
		if err != nil {
			_ = os.Remove(promptPath)
			return false, fmt.Errorf("open prompt: %w", err)
		}
		defer func() { _ = stdin.Close() }()
		out, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			_ = os.Remove(promptPath)
			return false, fmt.Errorf("open log: %w", err)
		}
		defer func() { _ = out.Close() }()

		pid, err := m.backend.StartDetached(backend.StartSpec{
			Command: argv,
			Dir:     opts.WorkDir,
			Env:     env.Merge(m.cfg.Env),
			Stdin:   stdin,
			Output:  out,
		})
		if err != nil {
			_ = os.Remove(promptPath)
			return false, fmt.Errorf("launch agent: %w", err)
		}
		launchedPID = pid
		rec = registry.Record{
			Name:       name,
			PID:        pid,
			LogPath:    logPath,
			PromptPath: promptPath,
			Status:     registry.StatusRunning,
			StartedAt:  time.Now().UTC(),
		}
		return true, reg.Add(rec)
	})
	if err != nil {
		if launchedPID != 0 {
			m.log.Error("agent process launched but could not be recorded; it is running untracked",
				"name", name, "pid", launchedPID, "log", logPath, "error", err)
		}
		return registry.Record{}, err
	}

	m.record(history.EventSpawned, name, launchedPID)
	m.log.Info("spawned agent", "name", name, "pid", launchedPID, "log", logPath)
	return rec, nil
}

// StopResult reports the outcome of stopping one agent.
type StopResult struct {
	Name           string
	PID            int
	AlreadyStopped bool // process was already gone; marking stopped is idempotent
}

// Stop terminates the named agent. Stopping an agent whose process already
// exited is not an error: the record is corrected to stopped and reported as
// such.
func (m *Manager) Stop(name string) (StopResult, error) {
	res := StopResult{Name: name}
	err := m.store.Update(func(reg *registry.Registry) (bool, error) {
		rec, ok := reg.Find(name)
		if !ok {
			return false, fmt.Errorf("%w: %q", ErrAgentNotFound, name)
		}
		res.PID = rec.PID
		if rec.Status == registry.StatusStopped || !m.backend.Alive(rec.PID) {
			res.AlreadyStopped = true
			return reg.SetStatus(name, registry.StatusStopped), nil
		}
		if err := m.backend.Terminate(rec.PID); err != nil {
			return false, fmt.Errorf("%w: pid %d: %v", ErrSignalFailure, rec.PID, err)
		}
		return reg.SetStatus(name, registry.StatusStopped), nil
	})
	if err != nil {
		return res, err
	}
	if !res.AlreadyStopped {
		m.record(history.EventStopped, name, res.PID)
		m.log.Info("stopped agent", "name", name, "pid", res.PID)
	}
	return res, nil
}

// StopAllResult reports the outcome of a stop --all sweep.
type StopAllResult struct {
	Stopped []string         // agents transitioned to stopped this invocation
	Failed  map[string]error // per-agent failures; never aborts the sweep
}

// StopAll terminates every agent currently believed running. Each agent is
// attempted independently: one unstoppable agent never blocks the rest. A
// second sweep is a no-op reporting zero newly-stopped agents.
func (m *Manager) StopAll() (StopAllResult, error) {
	res := StopAllResult{Failed: map[string]error{}}
	stoppedPIDs := map[string]int{}
	err := m.store.Update(func(reg *registry.Registry) (bool, error) {
		changed := false
		for i := range reg.Agents {
			rec := reg.Agents[i]
			if rec.Status != registry.StatusRunning {
				continue
			}
			if m.backend.Alive(rec.PID) {
				if err := m.backend.Terminate(rec.PID); err != nil {
					res.Failed[rec.Name] = fmt.Errorf("%w: pid %d: %v", ErrSignalFailure, rec.PID, err)
					continue
				}
			}
			reg.Agents[i].Status = registry.StatusStopped
			res.Stopped = append(res.Stopped, rec.Name)
			stoppedPIDs[rec.Name] = rec.PID
			changed = true
		}
		return changed, nil
	})
	if err != nil {
		return res, err
	}
	for _, name := range res.Stopped {
		m.record(history.EventStopped, name, stoppedPIDs[name])
	}
	if len(res.Stopped) > 0 || len(res.Failed) > 0 {
		m.log.Info("stop sweep finished", "stopped", len(res.Stopped), "failed", len(res.Failed))
	}
	return res, nil
}

// List returns all records, re-validating liveness first. A record claiming
// running whose process is gone is corrected to stopped and the correction is
// persisted before returning, so the registry never permanently lies about
// agents that exited without an explicit stop.
func (m *Manager) List() ([]registry.Record, error) {
	var out []registry.Record
	err := m.store.Update(func(reg *registry.Registry) (bool, error) {
		changed := false
		for i := range reg.Agents {
			if reg.Agents[i].Status == registry.StatusRunning && !m.backend.Alive(reg.Agents[i].PID) {
				reg.Agents[i].Status = registry.StatusStopped
				changed = true
			}
		}
		out = append(out[:0], reg.Agents...)
		return changed, nil
	})
	return out, err
}

// CleanResult reports what a clean pass removed.
type CleanResult struct {
	Removed []string
}

// Clean removes registry records whose process is confirmed not running (or
// already marked stopped) and deletes their prompt files. Log files are never
// deleted: they are inspectable history. Running agents are untouched.
func (m *Manager) Clean() (CleanResult, error) {
	var res CleanResult
	removedPIDs := map[string]int{}
	err := m.store.Update(func(reg *registry.Registry) (bool, error) {
		keep := make([]registry.Record, 0, len(reg.Agents))
		for _, rec := range reg.Agents {
			if rec.Status == registry.StatusRunning && m.backend.Alive(rec.PID) {
				keep = append(keep, rec)
				continue
			}
			// The prompt path is derived from the name, not read from the
			// record, so cleanup survives a partially corrupted entry.
			_ = os.Remove(m.cfg.PromptPath(rec.Name))
			res.Removed = append(res.Removed, rec.Name)
			removedPIDs[rec.Name] = rec.PID
		}
		if len(keep) == len(reg.Agents) {
			return false, nil
		}
		reg.Agents = keep
		return true, nil
	})
	if err != nil {
		return res, err
	}
	for _, name := range res.Removed {
		m.record(history.EventCleaned, name, removedPIDs[name])
	}
	if len(res.Removed) > 0 {
		m.log.Info("cleaned agents", "removed", len(res.Removed))
	}
	return res, nil
}

// find loads the registry and resolves one record by exact name.
func (m *Manager) find(name string) (registry.Record, error) {
	reg, err := m.store.Load()
	if err != nil {
		return registry.Record{}, err
	}
	rec, ok := reg.Find(name)
	if !ok {
		return registry.Record{}, fmt.Errorf("%w: %q", ErrAgentNotFound, name)
	}
	return rec, nil
}

func (m *Manager) record(t history.EventType, name string, pid int) {
	if m.sink == nil {
		return
	}
	e := history.Event{Type: t, OccurredAt: time.Now().UTC(), Name: name, PID: pid}
	if err := m.sink.Send(context.Background(), e); err != nil {
		m.log.Warn("history sink write failed", "event", string(t), "name", name, "error", err)
	}
}
