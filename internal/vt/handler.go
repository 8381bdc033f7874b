package vt

import "io"

// BasicHandler is the default Handler: it owns a Grid and writes DA/DSR
// replies to an injected io.Writer (typically the PTY), never to the
// grid itself.
type BasicHandler struct {
	grid   *Grid
	writer io.Writer

	mouseModes map[int]bool
}

// NewBasicHandler wraps grid and routes device-status writebacks to w.
// w may be nil, in which case writebacks are silently dropped.
func NewBasicHandler(grid *Grid, w io.Writer) *BasicHandler {
	return &BasicHandler{grid: grid, writer: w, mouseModes: make(map[int]bool)}
}

// Grid returns the underlying grid.
func (h *BasicHandler) Grid() *Grid { return h.grid }

// WriteBack sends p to the injected writer, if any.
func (h *BasicHandler) WriteBack(p []byte) {
	if h.writer != nil {
		_, _ = h.writer.Write(p)
	}
}

// SetMouseMode records whether the child enabled a given mouse-reporting
// private mode (1000/1002/1003/1006).
func (h *BasicHandler) SetMouseMode(mode int, on bool) {
	h.mouseModes[mode] = on
}

// MouseReportingEnabled reports whether any mouse-tracking mode is on —
// session.Manager.Click consults this to choose its synthesis strategy.
func (h *BasicHandler) MouseReportingEnabled() bool {
	for _, on := range h.mouseModes {
		if on {
			return true
		}
	}
	return false
}

// SetWriter replaces the writeback sink (e.g. once a PTY handle becomes
// available after the handler was constructed).
func (h *BasicHandler) SetWriter(w io.Writer) { h.writer = w }
