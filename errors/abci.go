package errors

import (
	"fmt"
)

const (
	// SuccessABCICode is the response code of a successful call.
	SuccessABCICode = 0

	// Errors without a code are internal. Their message is hidden outside
	// of debug mode.
	internalABCICode uint32 = 1
	internalABCILog         = "internal error"
)

// ABCIInfo returns the response code and log of err. Debug mode formats
// the log with %+v, which includes the stack trace, and reveals the
// message of internal errors.
func ABCIInfo(err error, debug bool) (uint32, string) {
	if isNilErr(err) {
		return SuccessABCICode, ""
	}
	code := abciCode(err)
	switch {
	case debug:
		return code, fmt.Sprintf("%+v", err)
	case code == internalABCICode:
		return code, internalABCILog
	default:
		return code, err.Error()
	}
}

// ABCIError rebuilds an error from a response code and log. A registered
// code maps back to its error, so a client can test the result with Is,
// for example ErrInsufficientAmount.Is(err) after a failed buy.
func ABCIError(code uint32, log string) error {
	if e := registry[code]; e != nil {
		return Wrap(e, log)
	}
	return Wrap(&Error{code: code, desc: "unknown"}, log)
}

type coder interface {
	ABCICode() uint32
}

// abciCode returns the code of the first error in the cause chain that has
// one.
func abciCode(err error) uint32 {
	for !isNilErr(err) {
		if c, ok := err.(coder); ok {
			return c.ABCICode()
		}
		c, ok := err.(causer)
		if !ok {
			return internalABCICode
		}
		err = c.Cause()
	}
	return SuccessABCICode
}
