package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/herdctl/herd"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	stoppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// renderAgentTable formats registry records for the terminal. Styling is
// applied after padding so ANSI codes don't break column widths.
func renderAgentTable(recs []herd.Record) string {
	nameW, statusW := len("NAME"), len("STATUS")
	for _, r := range recs {
		if len(r.Name) > nameW {
			nameW = len(r.Name)
		}
		if len(r.Status) > statusW {
			statusW = len(r.Status)
		}
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s  %7s  %-*s  %8s  %s",
		nameW, "NAME", "PID", statusW, "STATUS", "UPTIME", "LOG")))
	b.WriteString("\n")
	for _, r := range recs {
		status := fmt.Sprintf("%-*s", statusW, r.Status)
		if r.Status == herd.StatusRunning {
			status = runningStyle.Render(status)
		} else {
			status = stoppedStyle.Render(status)
		}
		uptime := "-"
		if r.Status == herd.StatusRunning {
			uptime = formatUptime(time.Since(r.StartedAt))
		}
		b.WriteString(fmt.Sprintf("%-*s  %7d  %s  %8s  %s\n",
			nameW, r.Name, r.PID, status, uptime, r.LogPath))
	}
	return b.String()
}

// formatUptime renders a duration in the largest two useful units.
func formatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	default:
		return fmt.Sprintf("%dd%dh", int(d.Hours())/24, int(d.Hours())%24)
	}
}
