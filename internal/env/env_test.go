package env

import (
	"strings"
	"testing"
)

func lookup(envs []string, key string) (string, bool) {
	for _, kv := range envs {
		if v, ok := strings.CutPrefix(kv, key+"="); ok {
			return v, true
		}
	}
	return "", false
}

func TestMergeInheritsOSEnv(t *testing.T) {
	t.Setenv("HERD_ENV_TEST_BASE", "from-os")
	got, ok := lookup(Merge(nil), "HERD_ENV_TEST_BASE")
	if !ok || got != "from-os" {
		t.Fatalf("OS env not inherited: %q %v", got, ok)
	}
}

func TestMergeExtraOverridesOS(t *testing.T) {
	t.Setenv("HERD_ENV_TEST_OVR", "from-os")
	got, ok := lookup(Merge([]string{"HERD_ENV_TEST_OVR=from-config"}), "HERD_ENV_TEST_OVR")
	if !ok || got != "from-config" {
		t.Fatalf("extra entry must win: %q %v", got, ok)
	}
}

func TestMergeLastDuplicateWins(t *testing.T) {
	got, _ := lookup(Merge([]string{"K=1", "K=2"}), "K")
	if got != "2" {
		t.Fatalf("want last duplicate, got %q", got)
	}
}

func TestMergeSkipsMalformedEntries(t *testing.T) {
	envs := Merge([]string{"NOEQUALS", "=novalue", "OK=1"})
	if _, ok := lookup(envs, "NOEQUALS"); ok {
		t.Fatalf("malformed entry leaked through")
	}
	if v, ok := lookup(envs, "OK"); !ok || v != "1" {
		t.Fatalf("valid entry dropped")
	}
}
