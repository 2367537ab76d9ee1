package rpcapi

import "fmt"

// Error codes returned to JSON-RPC callers. Business failures are not RPC
// errors; they come back as receipts with an exit code.
const (
	CodeInvalidParams = -32602
	CodeUnavailable   = -32000
	CodeRateLimited   = -32005
)

type rpcError struct {
	code int
	msg  string
}

func (e *rpcError) Error() string  { return e.msg }
func (e *rpcError) ErrorCode() int { return e.code }

func invalidParams(format string, args ...interface{}) error {
	return &rpcError{code: CodeInvalidParams, msg: fmt.Sprintf(format, args...)}
}
