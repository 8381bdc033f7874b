// Package mcp implements the external transport spec.md §6 leaves out
// of the core: a line-delimited JSON-RPC 2.0 stream over stdin/stdout
// dispatching the ten terminal_* tools onto a session.Manager.
package mcp

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"

	"github.com/rs/zerolog/log"
)

// Request is one line of the incoming stream: a JSON-RPC 2.0 call.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is one line of the outgoing stream.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC 2.0 error object, with Data carrying the
// terminal-mcp error Kind string (spec.md §7) for programmatic callers.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternal       = -32603
)

// Server reads line-delimited JSON-RPC requests from r, dispatches them
// through a Dispatcher, and writes line-delimited responses to w. stdout
// carries only these frames; callers route w to os.Stdout and keep all
// diagnostics on stderr, per spec.md §6.
type Server struct {
	dispatch *Dispatcher
	in       *bufio.Scanner
	out      io.Writer
}

// NewServer wires a Dispatcher to the given reader/writer pair.
func NewServer(d *Dispatcher, r io.Reader, w io.Writer) *Server {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &Server{dispatch: d, in: scanner, out: w}
}

// Serve processes requests until the input stream is exhausted or
// returns an error. Each line is handled independently; a malformed
// line produces a ParseError response rather than terminating the loop.
func (s *Server) Serve() error {
	for s.in.Scan() {
		line := s.in.Bytes()
		if len(line) == 0 {
			continue
		}
		s.handleLine(append([]byte(nil), line...))
	}
	if err := s.in.Err(); err != nil {
		return err
	}
	return nil
}

func (s *Server) handleLine(line []byte) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		s.writeResponse(Response{
			JSONRPC: "2.0",
			Error:   &RPCError{Code: codeParseError, Message: "parse error: " + err.Error()},
		})
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		s.writeResponse(Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &RPCError{Code: codeInvalidRequest, Message: "invalid request"},
		})
		return
	}

	result, err := s.dispatch.Call(req.Method, req.Params)
	if err != nil {
		s.writeResponse(Response{JSONRPC: "2.0", ID: req.ID, Error: toRPCError(err)})
		return
	}
	s.writeResponse(Response{JSONRPC: "2.0", ID: req.ID, Result: result})
}

func (s *Server) writeResponse(resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal JSON-RPC response")
		return
	}
	data = append(data, '\n')
	if _, err := s.out.Write(data); err != nil {
		log.Error().Err(err).Msg("failed to write JSON-RPC response")
	}
}

var errMethodNotFound = errors.New("method not found")
