package session

import (
	"regexp"
	"strings"
	"time"

	"github.com/patrick-goecommerce/terminal-mcp/internal/apperr"
	"github.com/patrick-goecommerce/terminal-mcp/internal/detect"
)

// ConditionKind selects which WaitCondition field is populated.
type ConditionKind int

const (
	ConditionText ConditionKind = iota
	ConditionRegex
	ConditionElement
	ConditionIdle
	// ConditionActivity is supplemented beyond spec.md §4.5's four
	// variants: it lets a caller block until the session reaches a
	// specific Activity classification (idle/active/done/needs_input),
	// reusing the same structural classifier snapshot() exposes.
	ConditionActivity
)

// WaitCondition is the tagged union wait_for accepts (spec.md §4.5):
// Text(substring), Regex(pattern), Element(type, text_substring),
// Idle(quiet_ms), plus the supplemented Activity(state).
type WaitCondition struct {
	Kind ConditionKind

	Text string

	Regex *regexp.Regexp

	ElementType    detect.ElementType
	ElementSubtext string

	QuietFor time.Duration

	Activity Activity
}

// NewTextCondition builds a Text(substring) condition.
func NewTextCondition(substr string) WaitCondition {
	return WaitCondition{Kind: ConditionText, Text: substr}
}

// NewRegexCondition compiles pattern into a Regex(pattern) condition.
func NewRegexCondition(pattern string) (WaitCondition, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return WaitCondition{}, apperr.Wrap(apperr.InvalidArgument, "malformed regex", err)
	}
	return WaitCondition{Kind: ConditionRegex, Regex: re}, nil
}

// NewElementCondition builds an Element(type, text_substring) condition.
func NewElementCondition(elemType detect.ElementType, textSubstr string) WaitCondition {
	return WaitCondition{Kind: ConditionElement, ElementType: elemType, ElementSubtext: textSubstr}
}

// NewIdleCondition builds an Idle(quiet_ms) condition.
func NewIdleCondition(quiet time.Duration) WaitCondition {
	return WaitCondition{Kind: ConditionIdle, QuietFor: quiet}
}

// NewActivityCondition builds the supplemented Activity(state) condition.
func NewActivityCondition(state string) (WaitCondition, error) {
	a, ok := parseActivity(state)
	if !ok {
		return WaitCondition{}, apperr.New(apperr.InvalidArgument, "unknown activity state "+state)
	}
	return WaitCondition{Kind: ConditionActivity, Activity: a}, nil
}

// Outcome is what wait_for returns: exactly one of Matched (with the
// snapshot that satisfied the condition), Timeout, or SessionClosed.
type Outcome struct {
	Status   string // "matched", "timeout", "session_closed"
	Snapshot *TerminalStateTree
}

const pollInterval = 20 * time.Millisecond

// WaitFor polls cond at pollInterval (spec.md §4.5 default) or reacts to
// pump notifications, up to timeout, and returns the first outcome among
// Matched/Timeout/SessionClosed — whichever occurs first (spec.md §5).
func (m *Manager) WaitFor(id SessionID, cond WaitCondition, timeout time.Duration) (Outcome, error) {
	s, err := m.get(id)
	if err != nil {
		return Outcome{}, err
	}
	if timeout <= 0 || timeout > m.cfg.WaitForMaxTimeout {
		timeout = m.cfg.WaitForMaxTimeout
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if s.isClosed() {
			return Outcome{Status: "session_closed"}, nil
		}
		matched, tree := evaluateCondition(s, cond)
		if matched {
			return Outcome{Status: "matched", Snapshot: &tree}, nil
		}
		select {
		case <-s.notify:
			continue
		case <-ticker.C:
			continue
		case <-deadline.C:
			return Outcome{Status: "timeout"}, nil
		}
	}
}

// evaluateCondition checks cond against the session's current state
// without waiting for a settle deadline — wait_for polls continuously,
// unlike the one-shot settle window snapshot() uses.
func evaluateCondition(s *Session, cond WaitCondition) (bool, TerminalStateTree) {
	var (
		tree    TerminalStateTree
		matched bool
	)
	s.withGrid(func() {
		dims := s.grid.Dimensions()
		tree = TerminalStateTree{
			SessionID:  s.id,
			Dimensions: dims,
			Cursor:     s.grid.Cursor(),
			Activity:   s.currentActivityLocked(),
		}
		switch cond.Kind {
		case ConditionText:
			matched = strings.Contains(s.grid.PlainText(), cond.Text)
		case ConditionRegex:
			matched = cond.Regex.MatchString(s.grid.PlainText())
		case ConditionElement:
			tree.Elements = s.engine.Detect(s.grid)
			for _, e := range tree.Elements {
				if e.Type == cond.ElementType && (cond.ElementSubtext == "" || strings.Contains(e.Text, cond.ElementSubtext)) {
					matched = true
					break
				}
			}
		case ConditionIdle:
			since := s.lastOutputAt
			if since.IsZero() {
				since = s.createdAt
			}
			matched = time.Since(since) >= cond.QuietFor
		case ConditionActivity:
			matched = tree.Activity == cond.Activity
		}
		if matched && tree.Elements == nil {
			tree.Elements = s.engine.Detect(s.grid)
		}
	})
	return matched, tree
}
