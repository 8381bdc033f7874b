package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrick-goecommerce/terminal-mcp/internal/apperr"
)

func TestSession_TypeOnClosedSessionFailsWithSessionClosed(t *testing.T) {
	m := newTestManager(t, 16)
	id, err := m.Create(CreateConfig{Command: []string{"/bin/sh", "-c", "sleep 1"}, Rows: 24, Cols: 80})
	require.NoError(t, err)

	s, err := m.get(id)
	require.NoError(t, err)
	require.NoError(t, s.Close(context.Background()))

	err = s.Type("hi")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.SessionClosed))
}

func TestSession_SnapshotIncludesRawWhenRequested(t *testing.T) {
	m := newTestManager(t, 16)
	id, err := m.Create(CreateConfig{Command: []string{"/bin/cat"}, Rows: 24, Cols: 80})
	require.NoError(t, err)
	defer m.Close(context.Background(), id)

	require.NoError(t, m.Type(id, "raw-check\n"))
	_, err = m.WaitFor(id, NewTextCondition("raw-check"), time.Second)
	require.NoError(t, err)

	tree, err := m.Snapshot(id, SnapshotOptions{IncludeRaw: true})
	require.NoError(t, err)
	assert.Contains(t, tree.Raw, "raw-check")
}

func TestSession_SnapshotDetectsMenu(t *testing.T) {
	m := newTestManager(t, 16)
	id, err := m.Create(CreateConfig{Command: []string{"/bin/cat"}, Rows: 24, Cols: 80})
	require.NoError(t, err)
	defer m.Close(context.Background(), id)

	require.NoError(t, m.Type(id, "> Start\r\n  Stop\r\n  Restart\r\n"))
	_, err = m.WaitFor(id, NewTextCondition("Restart"), time.Second)
	require.NoError(t, err)

	tree, err := m.Snapshot(id, SnapshotOptions{})
	require.NoError(t, err)

	found := false
	for _, e := range tree.Elements {
		if string(e.Type) == "Menu" {
			found = true
		}
	}
	assert.True(t, found, "expected a Menu element, got %+v", tree.Elements)
}
