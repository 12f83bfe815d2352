package minihttp

import "strconv"

// StatusCode is a response status. Only the constants declared here are
// valid; a Response carrying any other value is sent as 500 Internal Server
// Error.
type StatusCode int

const (
	StatusOK                  StatusCode = 200
	StatusBadRequest          StatusCode = 400
	StatusNotFound            StatusCode = 404
	StatusMethodNotAllowed    StatusCode = 405
	StatusInternalServerError StatusCode = 500
)

// Code returns the numeric HTTP status.
func (c StatusCode) Code() int { return int(c) }

// ReasonPhrase returns the canonical reason phrase for c.
func (c StatusCode) ReasonPhrase() string {
	switch c {
	case StatusOK:
		return "OK"
	case StatusBadRequest:
		return "Bad Request"
	case StatusNotFound:
		return "Not Found"
	case StatusMethodNotAllowed:
		return "Method Not Allowed"
	case StatusInternalServerError:
		return "Internal Server Error"
	default:
		return ""
	}
}

// Valid reports whether c is one of the declared constants.
func (c StatusCode) Valid() bool { return c.ReasonPhrase() != "" }

// sendable is c, or StatusInternalServerError when c is not Valid.
func (c StatusCode) sendable() StatusCode {
	if c.Valid() {
		return c
	}
	return StatusInternalServerError
}

// String renders c as it appears on the status line, e.g. "404 Not Found".
func (c StatusCode) String() string {
	return strconv.Itoa(int(c)) + " " + c.ReasonPhrase()
}
