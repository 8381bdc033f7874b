package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/patrick-goecommerce/terminal-mcp/internal/apperr"
	"github.com/patrick-goecommerce/terminal-mcp/internal/detect"
	"github.com/patrick-goecommerce/terminal-mcp/internal/session"
	"github.com/patrick-goecommerce/terminal-mcp/internal/vt"
)

// Dispatcher maps the ten terminal_* tool names (spec.md §6) onto
// session.Manager calls, translating JSON params/results at the edge so
// the core package stays free of any RPC concern.
type Dispatcher struct {
	mgr *session.Manager
}

// NewDispatcher wires a Dispatcher to mgr.
func NewDispatcher(mgr *session.Manager) *Dispatcher {
	return &Dispatcher{mgr: mgr}
}

// Call looks up method and invokes it with raw JSON params, returning a
// JSON-marshalable result or an error (an *apperr.Error when it
// originates from the core, so toRPCError can classify it).
func (d *Dispatcher) Call(method string, params json.RawMessage) (any, error) {
	handler, ok := handlers[method]
	if !ok {
		return nil, errMethodNotFound
	}
	return handler(d, params)
}

var handlers = map[string]func(*Dispatcher, json.RawMessage) (any, error){
	"terminal_session_create":  (*Dispatcher).sessionCreate,
	"terminal_session_list":    (*Dispatcher).sessionList,
	"terminal_session_close":   (*Dispatcher).sessionClose,
	"terminal_session_resize":  (*Dispatcher).sessionResize,
	"terminal_snapshot":        (*Dispatcher).snapshot,
	"terminal_type":            (*Dispatcher).typeText,
	"terminal_press_key":       (*Dispatcher).pressKey,
	"terminal_click":           (*Dispatcher).click,
	"terminal_wait_for":        (*Dispatcher).waitFor,
	"terminal_read_output":     (*Dispatcher).readOutput,
}

func unmarshalParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return apperr.New(apperr.InvalidArgument, "missing params")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return apperr.Wrap(apperr.InvalidArgument, "malformed params", err)
	}
	return nil
}

// --- terminal_session_create -------------------------------------------

type sessionCreateParams struct {
	Command          string            `json:"command"`
	Args             []string          `json:"args"`
	Rows             int               `json:"rows"`
	Cols             int               `json:"cols"`
	Visual           bool              `json:"visual"`
	Cwd              string            `json:"cwd"`
	Env              map[string]string `json:"env"`
	TerminalEmulator string            `json:"terminal_emulator"`
	Record           bool              `json:"record"`
}

type sessionCreateResult struct {
	SessionID   string `json:"session_id"`
	VisualMode  bool   `json:"visual_mode"`
	VisualError string `json:"visual_error,omitempty"`
}

func (d *Dispatcher) sessionCreate(raw json.RawMessage) (any, error) {
	var p sessionCreateParams
	if err := unmarshalParams(raw, &p); err != nil {
		return nil, err
	}
	if p.Command == "" {
		return nil, apperr.New(apperr.InvalidArgument, "command is required")
	}
	id, err := d.mgr.Create(session.CreateConfig{
		Command:          append([]string{p.Command}, p.Args...),
		Rows:             p.Rows,
		Cols:             p.Cols,
		Visual:           p.Visual,
		Cwd:              p.Cwd,
		Env:              p.Env,
		TerminalEmulator: p.TerminalEmulator,
		Record:           p.Record,
	})
	if err != nil {
		return nil, err
	}
	info, err := d.infoFor(id)
	if err != nil {
		return nil, err
	}
	return sessionCreateResult{SessionID: string(id), VisualMode: info.VisualMode, VisualError: info.VisualError}, nil
}

func (d *Dispatcher) infoFor(id session.SessionID) (session.Info, error) {
	for _, info := range d.mgr.List() {
		if info.ID == id {
			return info, nil
		}
	}
	return session.Info{}, apperr.New(apperr.NotFound, "unknown session "+string(id))
}

// --- terminal_session_list ----------------------------------------------

type sessionListResult struct {
	Sessions []sessionInfo `json:"sessions"`
}

type sessionInfo struct {
	SessionID string   `json:"session_id"`
	Command   []string `json:"command"`
	Rows      int      `json:"rows"`
	Cols      int      `json:"cols"`
	Alive     bool     `json:"alive"`
	CreatedAt int64    `json:"created_at"`
}

func (d *Dispatcher) sessionList(json.RawMessage) (any, error) {
	infos := d.mgr.List()
	out := make([]sessionInfo, 0, len(infos))
	for _, i := range infos {
		out = append(out, sessionInfo{
			SessionID: string(i.ID),
			Command:   i.Command,
			Rows:      i.Rows,
			Cols:      i.Cols,
			Alive:     i.Alive,
			CreatedAt: i.CreatedAt.Unix(),
		})
	}
	return sessionListResult{Sessions: out}, nil
}

// --- terminal_session_close ---------------------------------------------

type sessionIDParams struct {
	SessionID string `json:"session_id"`
}

func (d *Dispatcher) sessionClose(raw json.RawMessage) (any, error) {
	var p sessionIDParams
	if err := unmarshalParams(raw, &p); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.mgr.Close(ctx, session.SessionID(p.SessionID)); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}

// --- terminal_session_resize ---------------------------------------------

type sessionResizeParams struct {
	SessionID string `json:"session_id"`
	Rows      int    `json:"rows"`
	Cols      int    `json:"cols"`
}

func (d *Dispatcher) sessionResize(raw json.RawMessage) (any, error) {
	var p sessionResizeParams
	if err := unmarshalParams(raw, &p); err != nil {
		return nil, err
	}
	if err := d.mgr.Resize(session.SessionID(p.SessionID), p.Rows, p.Cols); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}

// --- terminal_snapshot ----------------------------------------------------

type snapshotParams struct {
	SessionID  string      `json:"session_id"`
	IncludeRaw bool        `json:"include_raw"`
	Region     *regionJSON `json:"region"`
}

type regionJSON struct {
	Row  int `json:"row"`
	Col  int `json:"col"`
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

func (d *Dispatcher) snapshot(raw json.RawMessage) (any, error) {
	var p snapshotParams
	if err := unmarshalParams(raw, &p); err != nil {
		return nil, err
	}
	opts := session.SnapshotOptions{IncludeRaw: p.IncludeRaw}
	if p.Region != nil {
		r := vt.Region{
			TopLeft:    vt.Position{Row: p.Region.Row, Col: p.Region.Col},
			Dimensions: vt.Dimensions{Rows: p.Region.Rows, Cols: p.Region.Cols},
		}
		opts.Region = &r
	}
	tree, err := d.mgr.Snapshot(session.SessionID(p.SessionID), opts)
	if err != nil {
		return nil, err
	}
	return toTreeJSON(tree), nil
}

type elementJSON struct {
	RefID string         `json:"ref_id"`
	Type  string         `json:"type"`
	Row   int            `json:"row"`
	Col   int            `json:"col"`
	Rows  int            `json:"rows"`
	Cols  int            `json:"cols"`
	Text  string         `json:"text"`
	Attrs map[string]any `json:"attributes,omitempty"`
}

type treeJSON struct {
	SessionID     string        `json:"session_id"`
	Rows          int           `json:"rows"`
	Cols          int           `json:"cols"`
	CursorRow     int           `json:"cursor_row"`
	CursorCol     int           `json:"cursor_col"`
	Elements      []elementJSON `json:"elements"`
	Raw           string        `json:"raw,omitempty"`
	Activity      string        `json:"activity"`
}

func toTreeJSON(tree session.TerminalStateTree) treeJSON {
	elems := make([]elementJSON, 0, len(tree.Elements))
	for _, e := range tree.Elements {
		elems = append(elems, elementJSON{
			RefID: e.RefID,
			Type:  string(e.Type),
			Row:   e.Region.TopLeft.Row,
			Col:   e.Region.TopLeft.Col,
			Rows:  e.Region.Dimensions.Rows,
			Cols:  e.Region.Dimensions.Cols,
			Text:  e.Text,
			Attrs: e.Attributes,
		})
	}
	return treeJSON{
		SessionID: string(tree.SessionID),
		Rows:      tree.Dimensions.Rows,
		Cols:      tree.Dimensions.Cols,
		CursorRow: tree.Cursor.Row,
		CursorCol: tree.Cursor.Col,
		Elements:  elems,
		Raw:       tree.Raw,
		Activity:  tree.Activity.String(),
	}
}

// --- terminal_type ---------------------------------------------------------

type typeParams struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

func (d *Dispatcher) typeText(raw json.RawMessage) (any, error) {
	var p typeParams
	if err := unmarshalParams(raw, &p); err != nil {
		return nil, err
	}
	if err := d.mgr.Type(session.SessionID(p.SessionID), p.Text); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}

// --- terminal_press_key ------------------------------------------------

type pressKeyParams struct {
	SessionID string `json:"session_id"`
	Key       string `json:"key"`
	Count     int    `json:"count"`
}

func (d *Dispatcher) pressKey(raw json.RawMessage) (any, error) {
	var p pressKeyParams
	if err := unmarshalParams(raw, &p); err != nil {
		return nil, err
	}
	count := p.Count
	if count <= 0 {
		count = 1
	}
	if err := d.mgr.PressKey(session.SessionID(p.SessionID), p.Key, count); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}

// --- terminal_click ---------------------------------------------------

type clickParams struct {
	SessionID string `json:"session_id"`
	RefID     string `json:"ref_id"`
}

type clickResult struct {
	Strategy string `json:"strategy"`
	RefID    string `json:"ref_id"`
}

func (d *Dispatcher) click(raw json.RawMessage) (any, error) {
	var p clickParams
	if err := unmarshalParams(raw, &p); err != nil {
		return nil, err
	}
	res, err := d.mgr.Click(session.SessionID(p.SessionID), p.RefID)
	if err != nil {
		return nil, err
	}
	return clickResult{Strategy: res.Strategy, RefID: res.RefID}, nil
}

// --- terminal_wait_for --------------------------------------------------

type waitForParams struct {
	SessionID   string `json:"session_id"`
	Text        string `json:"text"`
	Regex       string `json:"regex"`
	Element     string `json:"element"`
	ElementText string `json:"element_text"`
	IdleMS      int    `json:"idle_ms"`
	Activity    string `json:"activity"`
	TimeoutMS   int    `json:"timeout_ms"`
}

type waitForResult struct {
	Status   string    `json:"status"`
	Snapshot *treeJSON `json:"snapshot,omitempty"`
}

func (d *Dispatcher) waitFor(raw json.RawMessage) (any, error) {
	var p waitForParams
	if err := unmarshalParams(raw, &p); err != nil {
		return nil, err
	}

	cond, err := buildCondition(p)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(p.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = d.mgr.MaxWaitTimeout()
	}

	outcome, err := d.mgr.WaitFor(session.SessionID(p.SessionID), cond, timeout)
	if err != nil {
		return nil, err
	}
	res := waitForResult{Status: outcome.Status}
	if outcome.Snapshot != nil {
		tj := toTreeJSON(*outcome.Snapshot)
		res.Snapshot = &tj
	}
	return res, nil
}

func buildCondition(p waitForParams) (session.WaitCondition, error) {
	switch {
	case p.Text != "":
		return session.NewTextCondition(p.Text), nil
	case p.Regex != "":
		return session.NewRegexCondition(p.Regex)
	case p.Element != "":
		return session.NewElementCondition(detect.ElementType(p.Element), p.ElementText), nil
	case p.Activity != "":
		return session.NewActivityCondition(p.Activity)
	case p.IdleMS > 0:
		return session.NewIdleCondition(time.Duration(p.IdleMS) * time.Millisecond), nil
	default:
		return session.WaitCondition{}, apperr.New(apperr.InvalidArgument, "wait_for requires one of text/regex/element/idle_ms/activity")
	}
}

// --- terminal_read_output ------------------------------------------------

type readOutputParams struct {
	SessionID string `json:"session_id"`
	MaxBytes  int    `json:"max_bytes"`
}

type readOutputResult struct {
	Data string `json:"data"`
}

func (d *Dispatcher) readOutput(raw json.RawMessage) (any, error) {
	var p readOutputParams
	if err := unmarshalParams(raw, &p); err != nil {
		return nil, err
	}
	data, err := d.mgr.ReadOutput(session.SessionID(p.SessionID), p.MaxBytes)
	if err != nil {
		return nil, err
	}
	return readOutputResult{Data: data}, nil
}
