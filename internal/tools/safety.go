package tools

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSafetyRejected marks a command that matched the safety denylist.
// Rejected commands are never executed.
var ErrSafetyRejected = errors.New("command rejected by safety check")

// defaultDenylist covers destructive commands that are blocked regardless
// of context: recursive force-deletes, privilege escalation, world-writable
// permission changes, disk formatting and raw disk writes, fork bombs.
var defaultDenylist = []string{
	"rm -rf",
	"rm -fr",
	"sudo",
	"chmod 777",
	"chmod -r 777",
	"mkfs",
	"dd if=",
	"> /dev/sd",
	":(){",
	"format c:",
	"del /f",
	"shutdown",
	"reboot",
}

// SafetyChecker matches command-like inputs against a denylist of
// dangerous patterns. Matching is case-insensitive substring search,
// the same policy the agent is documented with.
type SafetyChecker struct {
	patterns []string
}

// NewSafetyChecker creates a checker with the default denylist plus any
// extra configured patterns.
func NewSafetyChecker(extra ...string) *SafetyChecker {
	patterns := make([]string, 0, len(defaultDenylist)+len(extra))
	patterns = append(patterns, defaultDenylist...)
	for _, p := range extra {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return &SafetyChecker{patterns: patterns}
}

// Check returns an error wrapping ErrSafetyRejected when the input matches
// a denylisted pattern, and nil otherwise.
func (s *SafetyChecker) Check(input string) error {
	lowered := strings.ToLower(input)
	for _, pattern := range s.patterns {
		if strings.Contains(lowered, strings.ToLower(pattern)) {
			return fmt.Errorf("%w: dangerous pattern %q detected", ErrSafetyRejected, pattern)
		}
	}
	return nil
}

// Patterns returns a copy of the active denylist.
func (s *SafetyChecker) Patterns() []string {
	patterns := make([]string, len(s.patterns))
	copy(patterns, s.patterns)
	return patterns
}
