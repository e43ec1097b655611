package registry

import (
	"fmt"
	"time"
)

// Agent status values persisted in the registry. "running" is a hint that is
// re-validated against the OS process on every read.
const (
	StatusRunning = "running"
	StatusStopped = "stopped"
)

// Record is the persisted state for one tracked agent.
type Record struct {
	Name       string    `json:"name"`
	PID        int       `json:"pid"`
	LogPath    string    `json:"log"`
	PromptPath string    `json:"prompt"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started"`
}

// Registry is the whole persisted document. Agents preserves insertion order
// and holds no duplicate names.
type Registry struct {
	Agents []Record `json:"agents"`
}

// Find returns the record with the given name. Lookup is exact-match only;
// substring matching would surprise an operator who named one agent "api" and
// another "api-v2".
func (r *Registry) Find(name string) (Record, bool) {
	for _, rec := range r.Agents {
		if rec.Name == name {
			return rec, true
		}
	}
	return Record{}, false
}

// Add appends a record, enforcing name uniqueness within the document.
func (r *Registry) Add(rec Record) error {
	if _, ok := r.Find(rec.Name); ok {
		return fmt.Errorf("record %q already present", rec.Name)
	}
	r.Agents = append(r.Agents, rec)
	return nil
}

// Remove deletes the record with the given name, preserving the order of the
// remaining records. It reports whether a record was removed.
func (r *Registry) Remove(name string) bool {
	for i, rec := range r.Agents {
		if rec.Name == name {
			r.Agents = append(r.Agents[:i], r.Agents[i+1:]...)
			return true
		}
	}
	return false
}

// SetStatus updates the status of the named record in place. It reports
// whether the record existed and the status actually changed.
func (r *Registry) SetStatus(name, status string) bool {
	for i := range r.Agents {
		if r.Agents[i].Name == name {
			if r.Agents[i].Status == status {
				return false
			}
			r.Agents[i].Status = status
			return true
		}
	}
	return false
}
