package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patrick-goecommerce/terminal-mcp/internal/vt"
)

func feedText(t *testing.T, grid *vt.Grid, text string) {
	t.Helper()
	h := vt.NewBasicHandler(grid, nil)
	p := vt.NewParser(h)
	p.Advance([]byte(text))
}

func TestClassifyActivity_NeedsInputOnYesNoPrompt(t *testing.T) {
	g := vt.NewGrid(5, 40)
	feedText(t, g, "Do you want to proceed? [y/N] ")
	assert.Equal(t, ActivityNeedsInput, classifyActivity(g))
}

func TestClassifyActivity_DoneOnReturnedPrompt(t *testing.T) {
	g := vt.NewGrid(5, 40)
	feedText(t, g, "user@host:~/project$ ")
	assert.Equal(t, ActivityDone, classifyActivity(g))
}

func TestClassifyActivity_IdleWhenNoPatternMatches(t *testing.T) {
	g := vt.NewGrid(5, 40)
	feedText(t, g, "building project, please wait")
	assert.Equal(t, ActivityIdle, classifyActivity(g))
}

func TestParseActivity_RoundTripsStrings(t *testing.T) {
	for _, s := range []string{"idle", "active", "done", "needs_input"} {
		a, ok := parseActivity(s)
		assert.True(t, ok, s)
		assert.Equal(t, s, a.String(), s)
	}
}

func TestParseActivity_UnknownRejected(t *testing.T) {
	_, ok := parseActivity("bogus")
	assert.False(t, ok)
}
