package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrick-goecommerce/terminal-mcp/internal/apperr"
)

func newTestManager(t *testing.T, maxSessions int) *Manager {
	t.Helper()
	return NewManager(ManagerConfig{MaxSessions: maxSessions, RingCapacity: 1 << 16, WaitForMaxTimeout: 5 * time.Second})
}

func TestManager_CreateAndList(t *testing.T) {
	m := newTestManager(t, 16)
	id, err := m.Create(CreateConfig{Command: []string{"/bin/sh", "-c", "sleep 2"}, Rows: 24, Cols: 80})
	require.NoError(t, err)
	defer m.Close(context.Background(), id)

	list := m.List()
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.True(t, list[0].Alive)
	assert.Equal(t, 24, list[0].Rows)
	assert.Equal(t, 80, list[0].Cols)
}

func TestManager_CloseIsIdempotentWithNotFoundOnSecondCall(t *testing.T) {
	m := newTestManager(t, 16)
	id, err := m.Create(CreateConfig{Command: []string{"/bin/sh", "-c", "sleep 2"}, Rows: 24, Cols: 80})
	require.NoError(t, err)

	require.NoError(t, m.Close(context.Background(), id))

	err = m.Close(context.Background(), id)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestManager_CloseUnknownSessionFailsWithNotFound(t *testing.T) {
	m := newTestManager(t, 16)
	err := m.Close(context.Background(), SessionID("does-not-exist"))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestManager_MaxSessionsEnforced(t *testing.T) {
	m := newTestManager(t, 1)
	id, err := m.Create(CreateConfig{Command: []string{"/bin/sh", "-c", "sleep 2"}, Rows: 24, Cols: 80})
	require.NoError(t, err)
	defer m.Close(context.Background(), id)

	_, err = m.Create(CreateConfig{Command: []string{"/bin/sh", "-c", "sleep 2"}, Rows: 24, Cols: 80})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ResourceExhausted))
}

func TestManager_TypeAndSnapshotSeesOutput(t *testing.T) {
	m := newTestManager(t, 16)
	id, err := m.Create(CreateConfig{Command: []string{"/bin/cat"}, Rows: 24, Cols: 80})
	require.NoError(t, err)
	defer m.Close(context.Background(), id)

	require.NoError(t, m.Type(id, "hello-session\n"))

	outcome, err := m.WaitFor(id, NewTextCondition("hello-session"), time.Second)
	require.NoError(t, err)
	require.Equal(t, "matched", outcome.Status)
}

func TestManager_PressKeySendsCtrlC(t *testing.T) {
	m := newTestManager(t, 16)
	id, err := m.Create(CreateConfig{Command: []string{"/bin/sh", "-c", "sleep 5"}, Rows: 24, Cols: 80})
	require.NoError(t, err)
	defer m.Close(context.Background(), id)

	require.NoError(t, m.PressKey(id, "Ctrl+C", 1))
}

func TestManager_ReadOutputDrainsRing(t *testing.T) {
	m := newTestManager(t, 16)
	id, err := m.Create(CreateConfig{Command: []string{"/bin/sh", "-c", "echo ring-test"}, Rows: 24, Cols: 80})
	require.NoError(t, err)
	defer m.Close(context.Background(), id)

	_, err = m.WaitFor(id, NewTextCondition("ring-test"), time.Second)
	require.NoError(t, err)

	out, err := m.ReadOutput(id, 0)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "ring-test"))
}

func TestManager_WaitForTimeoutWhenTextNeverAppears(t *testing.T) {
	m := newTestManager(t, 16)
	id, err := m.Create(CreateConfig{Command: []string{"/bin/sh", "-c", "sleep 2"}, Rows: 24, Cols: 80})
	require.NoError(t, err)
	defer m.Close(context.Background(), id)

	outcome, err := m.WaitFor(id, NewTextCondition("will-never-appear-xyz"), 100*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "timeout", outcome.Status)
}

func TestManager_WaitForReturnsSessionClosedWhenChildExitsOnItsOwn(t *testing.T) {
	m := newTestManager(t, 16)
	id, err := m.Create(CreateConfig{Command: []string{"/bin/sh", "-c", "exit 0"}, Rows: 24, Cols: 80})
	require.NoError(t, err)

	outcome, err := m.WaitFor(id, NewTextCondition("will-never-appear-xyz"), 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "session_closed", outcome.Status)
}

func TestManager_ResizeChangesSnapshotDimensions(t *testing.T) {
	m := newTestManager(t, 16)
	id, err := m.Create(CreateConfig{Command: []string{"/bin/sh", "-c", "sleep 2"}, Rows: 24, Cols: 80})
	require.NoError(t, err)
	defer m.Close(context.Background(), id)

	require.NoError(t, m.Resize(id, 10, 40))

	tree, err := m.Snapshot(id, SnapshotOptions{})
	require.NoError(t, err)
	assert.Equal(t, 10, tree.Dimensions.Rows)
	assert.Equal(t, 40, tree.Dimensions.Cols)
	assert.LessOrEqual(t, tree.Cursor.Row, 9)
	assert.LessOrEqual(t, tree.Cursor.Col, 39)
}
