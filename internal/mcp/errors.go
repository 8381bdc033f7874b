package mcp

import (
	"errors"

	"github.com/patrick-goecommerce/terminal-mcp/internal/apperr"
)

// toRPCError maps a terminal-mcp apperr.Error onto a JSON-RPC error
// object, carrying the Kind string in Data so callers that understand
// spec.md §7's error taxonomy can dispatch on it without string-matching
// Message.
func toRPCError(err error) *RPCError {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return &RPCError{
			Code:    codeForKind(ae.Kind),
			Message: ae.Error(),
			Data:    map[string]string{"kind": ae.Kind.String()},
		}
	}
	if errors.Is(err, errMethodNotFound) {
		return &RPCError{Code: codeMethodNotFound, Message: err.Error()}
	}
	return &RPCError{Code: codeInternal, Message: err.Error()}
}

func codeForKind(k apperr.Kind) int {
	switch k {
	case apperr.InvalidArgument, apperr.CommandNotAllowed:
		return codeInvalidParams
	case apperr.NotFound:
		return -32001
	case apperr.SpawnFailed:
		return -32002
	case apperr.IoError:
		return -32003
	case apperr.Timeout:
		return -32004
	case apperr.SessionClosed:
		return -32005
	case apperr.ResourceExhausted:
		return -32006
	default:
		return codeInternal
	}
}
