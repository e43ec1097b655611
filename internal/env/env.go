// Package env composes the environment handed to spawned agents.
package env

import (
	"os"
	"strings"
)

// Merge layers extra "K=V" entries on top of the current process environment.
// Later entries win, so config-supplied variables override inherited ones and
// duplicate keys within extra resolve to the last value.
func Merge(extra []string) []string {
	merged := make(map[string]string)
	order := make([]string, 0, len(os.Environ())+len(extra))

	put := func(kv string) {
		i := strings.IndexByte(kv, '=')
		if i <= 0 {
			return
		}
		k, v := kv[:i], kv[i+1:]
		if _, seen := merged[k]; !seen {
			order = append(order, k)
		}
		merged[k] = v
	}
	for _, kv := range os.Environ() {
		put(kv)
	}
	for _, kv := range extra {
		put(kv)
	}

	out := make([]string, 0, len(order))
	for _, k := range order {
		out = append(out, k+"="+merged[k])
	}
	return out
}
