package agent

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnManyCreatesAll(t *testing.T) {
	m, fb, cfg := newTestManager(t)

	res, err := m.SpawnMany(3, "worker", "Process module {n}", SpawnOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Succeeded)
	assert.Equal(t, 0, res.Failed)
	require.Len(t, res.Items, 3)
	assert.Equal(t, 3, fb.startCount())

	for i := 1; i <= 3; i++ {
		name := fmt.Sprintf("worker-%d", i)
		prompt, err := os.ReadFile(cfg.PromptPath(name))
		require.NoError(t, err, "prompt for %s", name)
		assert.Contains(t, string(prompt), fmt.Sprintf("Process module %d", i))
	}

	recs, err := m.List()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "worker-1", recs[0].Name)
	assert.Equal(t, "worker-2", recs[1].Name)
	assert.Equal(t, "worker-3", recs[2].Name)
}

func TestSpawnManyPartialFailure(t *testing.T) {
	m, _, _ := newTestManager(t)

	_, err := m.Spawn("worker-2", "pre-existing", SpawnOptions{})
	require.NoError(t, err)

	res, err := m.SpawnMany(3, "worker", "task {n}", SpawnOptions{})
	require.NoError(t, err, "partial batch success is not an error")
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 3, res.Succeeded+res.Failed, "counts must sum to count")

	var failed []string
	for _, item := range res.Items {
		if item.Err != nil {
			failed = append(failed, item.Name)
			assert.ErrorIs(t, item.Err, ErrDuplicateAgent)
		}
	}
	assert.Equal(t, []string{"worker-2"}, failed)
}

func TestSpawnManyInvalidCount(t *testing.T) {
	m, fb, _ := newTestManager(t)

	for _, count := range []int{0, -1, -100} {
		_, err := m.SpawnMany(count, "worker", "task", SpawnOptions{})
		require.ErrorIs(t, err, ErrInvalidCount, "count %d", count)
	}
	assert.Equal(t, 0, fb.startCount(), "no agent may be created on invalid count")
}

func TestSpawnManyNoDoubleSubstitution(t *testing.T) {
	m, _, cfg := newTestManager(t)

	res, err := m.SpawnMany(1, "w", "outer {{n}} inner {n}", SpawnOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Succeeded)

	prompt, err := os.ReadFile(cfg.PromptPath("w-1"))
	require.NoError(t, err)
	assert.Contains(t, string(prompt), "outer {1} inner 1", "expansion must be single-pass")
}
