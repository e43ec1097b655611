package herd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herdctl/herd/internal/backend"
)

type stubBackend struct {
	pid   int
	alive map[int]bool
}

func (s *stubBackend) StartDetached(spec backend.StartSpec) (int, error) {
	s.pid++
	s.alive[s.pid] = true
	return s.pid, nil
}
func (s *stubBackend) Alive(pid int) bool      { return s.alive[pid] }
func (s *stubBackend) Terminate(pid int) error { s.alive[pid] = false; return nil }

func TestFacadeLifecycle(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	cfg.Types["claude"] = "sleep 60"

	mgr := New(cfg)
	mgr.SetBackend(&stubBackend{pid: 500, alive: map[int]bool{}})

	rec, err := mgr.Spawn("w1", "smoke test", SpawnOptions{})
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, rec.Status)

	recs, err := mgr.List()
	require.NoError(t, err)
	require.Len(t, recs, 1)

	stop, err := mgr.Stop("w1")
	require.NoError(t, err)
	assert.False(t, stop.AlreadyStopped)

	cleaned, err := mgr.Clean()
	require.NoError(t, err)
	assert.Equal(t, []string{"w1"}, cleaned.Removed)

	recs, err = mgr.List()
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestFacadeErrorsAreExported(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	cfg.Types["claude"] = "sleep 60"
	mgr := New(cfg)
	mgr.SetBackend(&stubBackend{alive: map[int]bool{}})

	_, err = mgr.Spawn("bad name", "", SpawnOptions{})
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = mgr.SpawnMany(0, "w", "", SpawnOptions{})
	assert.ErrorIs(t, err, ErrInvalidCount)

	_, err = mgr.Stop("ghost")
	assert.ErrorIs(t, err, ErrAgentNotFound)
}
