package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/herdctl/herd/internal/history"
)

func TestSendAndQuery(t *testing.T) {
	sink, err := New(":memory:")
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	defer func() { _ = sink.Close() }()

	occurred := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []history.Event{
		{Type: history.EventSpawned, OccurredAt: occurred, Name: "w1", PID: 100},
		{Type: history.EventStopped, OccurredAt: occurred.Add(time.Minute), Name: "w1", PID: 100},
		{Type: history.EventCleaned, OccurredAt: occurred.Add(2 * time.Minute), Name: "w1", PID: 100},
	}
	for _, e := range events {
		if err := sink.Send(context.Background(), e); err != nil {
			t.Fatalf("send %s: %v", e.Type, err)
		}
	}

	rows, err := sink.db.Query(`SELECT event, name, pid FROM agent_history ORDER BY timestamp`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer func() { _ = rows.Close() }()
	var got []string
	for rows.Next() {
		var event, name string
		var pid int
		if err := rows.Scan(&event, &name, &pid); err != nil {
			t.Fatalf("scan: %v", err)
		}
		if name != "w1" || pid != 100 {
			t.Fatalf("row fields wrong: %s %s %d", event, name, pid)
		}
		got = append(got, event)
	}
	if len(got) != 3 || got[0] != "spawned" || got[1] != "stopped" || got[2] != "cleaned" {
		t.Fatalf("events = %v", got)
	}
}

func TestNewFileDSN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	sink, err := New("sqlite://" + path)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	if err := sink.Send(context.Background(), history.Event{Type: history.EventSpawned, OccurredAt: time.Now(), Name: "a", PID: 1}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNewEmptyDSNFails(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}
