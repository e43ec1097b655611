package agent

import "fmt"

// BatchItem is the per-item outcome of a batch spawn.
type BatchItem struct {
	Name string
	Err  error
}

// BatchResult summarizes a batch spawn. Succeeded+Failed always equals the
// requested count.
type BatchResult struct {
	Items     []BatchItem
	Succeeded int
	Failed    int
}

// SpawnMany spawns count agents named "<prefix>-1" .. "<prefix>-<count>",
// expanding {n}/{N} in taskTemplate with the 1-based index before each spawn.
// A failing item (for example a name collision) is recorded and iteration
// continues: partial batch success is the designed behavior.
func (m *Manager) SpawnMany(count int, prefix, taskTemplate string, opts SpawnOptions) (BatchResult, error) {
	var res BatchResult
	if count <= 0 {
		return res, fmt.Errorf("%w: must be a positive integer, got %d", ErrInvalidCount, count)
	}
	for i := 1; i <= count; i++ {
		name := fmt.Sprintf("%s-%d", prefix, i)
		_, err := m.Spawn(name, ExpandTemplate(taskTemplate, i), opts)
		res.Items = append(res.Items, BatchItem{Name: name, Err: err})
		if err != nil {
			res.Failed++
		} else {
			res.Succeeded++
		}
	}
	return res, nil
}
