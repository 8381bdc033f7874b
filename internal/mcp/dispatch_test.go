package mcp

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/patrick-goecommerce/terminal-mcp/internal/session"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	mgr := session.NewManager(session.ManagerConfig{MaxSessions: 4})
	return NewDispatcher(mgr)
}

func mustParams(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}
	return data
}

func TestDispatcher_SessionCreateAndList(t *testing.T) {
	d := newTestDispatcher(t)

	result, err := d.Call("terminal_session_create", mustParams(t, sessionCreateParams{
		Command: "/bin/cat",
		Rows:    10,
		Cols:    40,
	}))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	created, ok := result.(sessionCreateResult)
	if !ok {
		t.Fatalf("unexpected result type %T", result)
	}
	if created.SessionID == "" {
		t.Fatal("expected a non-empty session_id")
	}

	listResult, err := d.Call("terminal_session_list", nil)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	list, ok := listResult.(sessionListResult)
	if !ok {
		t.Fatalf("unexpected result type %T", listResult)
	}
	if len(list.Sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(list.Sessions))
	}
	if list.Sessions[0].SessionID != created.SessionID {
		t.Errorf("listed session_id = %q, want %q", list.Sessions[0].SessionID, created.SessionID)
	}

	_, err = d.Call("terminal_session_close", mustParams(t, sessionIDParams{SessionID: created.SessionID}))
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestDispatcher_UnknownMethod(t *testing.T) {
	d := newTestDispatcher(t)
	if _, err := d.Call("terminal_does_not_exist", nil); err == nil {
		t.Fatal("expected an error for an unknown method")
	}
}

func TestDispatcher_MissingCommandIsInvalidArgument(t *testing.T) {
	d := newTestDispatcher(t)
	_, err := d.Call("terminal_session_create", mustParams(t, sessionCreateParams{}))
	if err == nil {
		t.Fatal("expected an error for a missing command")
	}
}

func TestDispatcher_TypeAndSnapshotSeesOutput(t *testing.T) {
	d := newTestDispatcher(t)

	createResult, err := d.Call("terminal_session_create", mustParams(t, sessionCreateParams{
		Command: "/bin/cat",
		Rows:    10,
		Cols:    40,
	}))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	id := createResult.(sessionCreateResult).SessionID

	_, err = d.Call("terminal_type", mustParams(t, typeParams{SessionID: id, Text: "hi\n"}))
	if err != nil {
		t.Fatalf("type failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	snapResult, err := d.Call("terminal_snapshot", mustParams(t, snapshotParams{SessionID: id, IncludeRaw: true}))
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	tree, ok := snapResult.(treeJSON)
	if !ok {
		t.Fatalf("unexpected result type %T", snapResult)
	}
	if tree.SessionID != id {
		t.Errorf("snapshot session_id = %q, want %q", tree.SessionID, id)
	}
}

func TestDispatcher_WaitForRequiresACondition(t *testing.T) {
	d := newTestDispatcher(t)
	createResult, err := d.Call("terminal_session_create", mustParams(t, sessionCreateParams{Command: "/bin/cat"}))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	id := createResult.(sessionCreateResult).SessionID

	_, err = d.Call("terminal_wait_for", mustParams(t, waitForParams{SessionID: id}))
	if err == nil {
		t.Fatal("expected an error when no condition field is set")
	}
}
