package agent

import (
	"regexp"
	"strconv"
	"strings"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidName reports whether name is usable as an agent identifier. Names
// become file names and registry keys, so the character set is strict.
func ValidName(name string) bool { return namePattern.MatchString(name) }

// DefaultTask is used when spawn is invoked without a task.
const DefaultTask = "Review the current working directory and continue the most recently active work."

// BuildPrompt renders the instructions fed to the agent on stdin. The task
// text is embedded verbatim: it is opaque payload to the spawning step, never
// interpreted as shell syntax or further templating.
func BuildPrompt(name, task string) string {
	if strings.TrimSpace(task) == "" {
		task = DefaultTask
	}
	var b strings.Builder
	b.WriteString("# Instructions for agent ")
	b.WriteString(strconv.Quote(name))
	b.WriteString("\n\n")
	b.WriteString("You are running unattended. Work autonomously: do not wait for user\n")
	b.WriteString("input, and report progress on stdout as you go.\n\n")
	b.WriteString("## Task\n\n")
	b.WriteString(task)
	b.WriteString("\n")
	return b.String()
}

// ExpandTemplate substitutes the literal tokens {n} and {N} with the decimal
// value of i. Substitution is a single pass over the input; the result is
// never re-scanned, so a task that expands to text containing more brace
// tokens keeps them as-is.
func ExpandTemplate(template string, i int) string {
	n := strconv.Itoa(i)
	return strings.NewReplacer("{n}", n, "{N}", n).Replace(template)
}
