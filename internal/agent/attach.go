package agent

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

const followInterval = 500 * time.Millisecond

// Logs dumps the agent's log file content to w. An agent that has not
// produced output yet yields nothing.
func (m *Manager) Logs(name string, w io.Writer) error {
	rec, err := m.find(name)
	if err != nil {
		return err
	}
	f, err := os.Open(rec.LogPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = f.Close() }()
	_, err = io.Copy(w, f)
	return err
}

// Attach dumps the existing log content and then follows the file while the
// agent process is alive. If the process is not alive, Attach degrades to a
// one-shot dump instead of waiting for output that will never arrive.
// Cancelling the context ends the tail only: the agent process and the
// registry are untouched.
func (m *Manager) Attach(ctx context.Context, name string, w io.Writer) error {
	rec, err := m.find(name)
	if err != nil {
		return err
	}
	f, err := os.Open(rec.LogPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("open log: %w", err)
		}
		f = nil
	}
	if f != nil {
		defer func() { _ = f.Close() }()
		if _, err := io.Copy(w, f); err != nil {
			return err
		}
	}
	if !m.backend.Alive(rec.PID) {
		return nil
	}

	ticker := time.NewTicker(followInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if f == nil {
			nf, err := os.Open(rec.LogPath)
			if err != nil {
				if os.IsNotExist(err) {
					if !m.backend.Alive(rec.PID) {
						return nil
					}
					continue
				}
				return fmt.Errorf("open log: %w", err)
			}
			f = nf
			defer func() { _ = f.Close() }()
		}
		n, err := io.Copy(w, f)
		if err != nil {
			return err
		}
		// Drain one final read after the process dies so buffered output is
		// not lost, then stop following.
		if n == 0 && !m.backend.Alive(rec.PID) {
			return nil
		}
	}
}
