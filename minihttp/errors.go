package minihttp

import (
	"errors"
	"strconv"
)

var ErrServerClosed = errors.New("minihttp: server closed")

// ParseError classifies why a request line was rejected. It carries no
// payload; the message is derived from the kind.
type ParseError uint8

const (
	InvalidRequest ParseError = iota + 1
	InvalidEncoding
	InvalidProtocol
	InvalidMethod
)

func (e ParseError) Error() string {
	return e.Message()
}

// Message returns the short human-readable reason for e.
func (e ParseError) Message() string {
	switch e {
	case InvalidRequest:
		return "Invalid Request"
	case InvalidEncoding:
		return "Invalid Encoding"
	case InvalidProtocol:
		return "Invalid Protocol"
	case InvalidMethod:
		return "Invalid Method"
	default:
		return "Unknown Parse Error"
	}
}

// MethodError reports a method token outside the supported set.
type MethodError struct {
	Token string
}

func (e *MethodError) Error() string {
	return "minihttp: unsupported method " + strconv.Quote(e.Token)
}

// Is makes errors.Is(err, InvalidMethod) hold for a *MethodError.
func (e *MethodError) Is(target error) bool {
	return target == InvalidMethod
}
