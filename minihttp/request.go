package minihttp

import (
	"strings"
	"unicode/utf8"

	"dqx0.com/go/webserver/minihttp/internal/http1"
)

const protocolHTTP11 = "HTTP/1.1"

// Request is a parsed request line.
//
// Path and query are substrings of a single copy of the input buffer made at
// parse time, so a Request stays valid after the buffer is reused. A Request
// is never modified once ParseRequest returns it.
type Request struct {
	method   Method
	path     string
	query    string
	hasQuery bool
}

// NewRequest builds a Request directly, splitting target at its first '?'
// the same way ParseRequest does. Mostly useful for exercising handlers.
func NewRequest(method Method, target string) *Request {
	r := &Request{method: method, path: target}
	if i := strings.IndexByte(target, '?'); i >= 0 {
		r.path, r.query, r.hasQuery = target[:i], target[i+1:], true
	}
	return r
}

func (r *Request) Method() Method { return r.method }

// Path is the request target up to, not including, the first '?'.
func (r *Request) Path() string { return r.path }

// QueryString returns the text after the first '?' of the request target.
// ok is false when the target had no '?'; "/p?" yields ("", true).
func (r *Request) QueryString() (query string, ok bool) {
	return r.query, r.hasQuery
}

func (r *Request) String() string {
	if r.hasQuery {
		return r.method.String() + " " + r.path + "?" + r.query
	}
	return r.method.String() + " " + r.path
}

// ParseRequest parses the request line at the start of buf. Only the method,
// target and protocol are examined; anything after the protocol token is
// ignored. The returned error is always a ParseError.
//
// Words are separated by a space or a bare '\n'. A '\r' is not a separator,
// so "GET / HTTP/1.1\r\n" fails with InvalidProtocol; see Parser.AllowCRLF.
func ParseRequest(buf []byte) (*Request, error) {
	return Parser{}.Parse(buf)
}

// Parser holds request line parsing options. The zero value behaves like
// ParseRequest.
type Parser struct {
	// AllowCRLF drops a '\r' that directly precedes a '\n' separator, so
	// request lines from clients that end lines with CRLF parse. This departs
	// from the plain space-or-newline rule and is off by default.
	AllowCRLF bool
}

// Parse parses the request line at the start of buf like ParseRequest.
func (p Parser) Parse(buf []byte) (*Request, error) {
	if !utf8.Valid(buf) {
		return nil, InvalidEncoding
	}
	text := string(buf)

	next := http1.NextWord
	if p.AllowCRLF {
		next = http1.NextWordCRLF
	}
	method, rest, ok := next(text)
	if !ok {
		return nil, InvalidRequest
	}
	target, rest, ok := next(rest)
	if !ok {
		return nil, InvalidRequest
	}
	protocol, _, ok := next(rest)
	if !ok {
		return nil, InvalidRequest
	}

	if protocol != protocolHTTP11 {
		return nil, InvalidProtocol
	}
	m, err := ParseMethod(method)
	if err != nil {
		return nil, InvalidMethod
	}
	return NewRequest(m, target), nil
}
