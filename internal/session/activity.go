package session

import (
	"regexp"
	"strings"
	"time"

	"github.com/patrick-goecommerce/terminal-mcp/internal/vt"
)

// Activity classifies what a session's child process appears to be doing,
// generalizing the teacher's Claude-Code-specific Session.DetectActivity /
// classifyScreenState from internal/terminal/activity.go into a structural
// classifier usable against any PTY-backed program, exposed as the
// supplemented Activity wait_for condition variant.
type Activity int

const (
	ActivityIdle Activity = iota
	ActivityActive
	ActivityDone
	ActivityNeedsInput
)

func (a Activity) String() string {
	switch a {
	case ActivityActive:
		return "active"
	case ActivityDone:
		return "done"
	case ActivityNeedsInput:
		return "needs_input"
	default:
		return "idle"
	}
}

func parseActivity(s string) (Activity, bool) {
	switch strings.ToLower(s) {
	case "idle":
		return ActivityIdle, true
	case "active":
		return ActivityActive, true
	case "done":
		return ActivityDone, true
	case "needs_input":
		return ActivityNeedsInput, true
	}
	return 0, false
}

var (
	needsInputPattern = regexp.MustCompile(`(?i)` +
		`\[Y/n\]|\[y/N\]|\(y/n\)|` +
		`(?:proceed|continue|confirm|approve|allow)\s*\?|` +
		`permission|do you want to|would you like to|` +
		`press enter to|waiting for`)

	promptPattern = regexp.MustCompile(
		`[❯›»]\s*$|` +
			`[>$%#]\s*$|` +
			`^[A-Za-z]:\\[^>]*>\s*$`)
)

// classifyActivity inspects the grid's trailing non-blank rows for a
// needs-input or returned-prompt pattern, the way the teacher's
// classifyScreenState walks the screen's last few rows.
func classifyActivity(g *vt.Grid) Activity {
	dims := g.Dimensions()
	scanFrom := dims.Rows - 15
	if scanFrom < 0 {
		scanFrom = 0
	}
	for r := dims.Rows - 1; r >= scanFrom; r-- {
		line := g.PlainTextRow(r)
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if needsInputPattern.MatchString(trimmed) {
			return ActivityNeedsInput
		}
		if promptPattern.MatchString(trimmed) {
			return ActivityDone
		}
	}
	return ActivityIdle
}

// activityQuietPeriod is how long output must be silent before the grid is
// reclassified from Active to its structural state, matching the teacher's
// 1.5s quiet window before it recomputes classifyScreenState.
const activityQuietPeriod = 1500 * time.Millisecond
