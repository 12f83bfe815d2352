package http1

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
)

var (
	ErrLineTooLong     = errors.New("http1: line too long")
	ErrMalformedStatus = errors.New("http1: malformed status line")
	ErrMalformedHeader = errors.New("http1: malformed header line")
)

// ReadOnce performs a single bounded read from r into buf and returns the
// number of bytes read. Anything beyond len(buf) stays unread. io.EOF is not
// reported as an error: a peer that closed without sending yields n == 0.
func ReadOnce(r io.Reader, buf []byte) (int, error) {
	n, err := r.Read(buf)
	if err == io.EOF {
		err = nil
	}
	return n, err
}

// ParsedResponse is a minimal representation of a response read from the wire.
type ParsedResponse struct {
	Proto      string
	StatusCode int
	Reason     string
	Header     map[string][]string
	Body       []byte
}

type Reader struct {
	BR             *bufio.Reader
	MaxHeaderBytes int
}

// ReadResponse reads a status line, headers and the body. The body is bounded
// by Content-Length when present and otherwise runs until EOF, which is how a
// connection-per-request server delimits it.
func (r *Reader) ReadResponse() (*ParsedResponse, error) {
	line, err := r.readLine()
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return nil, ErrMalformedStatus
	}
	proto := parts[0]
	if !strings.HasPrefix(proto, "HTTP/1.") {
		return nil, ErrMalformedStatus
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil || code < 100 || code > 999 {
		return nil, ErrMalformedStatus
	}
	var reason string
	if len(parts) == 3 {
		reason = parts[2]
	}
	hdr, err := r.readHeaders()
	if err != nil {
		return nil, err
	}
	var body []byte
	if v := getHeader(hdr, "Content-Length"); v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil || n < 0 {
			return nil, ErrMalformedHeader
		}
		body = make([]byte, n)
		if _, err := io.ReadFull(r.BR, body); err != nil {
			return nil, err
		}
	} else {
		body, err = io.ReadAll(r.BR)
		if err != nil {
			return nil, err
		}
	}
	return &ParsedResponse{
		Proto:      proto,
		StatusCode: code,
		Reason:     reason,
		Header:     hdr,
		Body:       body,
	}, nil
}

func (r *Reader) readHeaders() (map[string][]string, error) {
	h := make(map[string][]string)
	for {
		line, err := r.readLine()
		if err != nil {
			return nil, err
		}
		if line == "" {
			break
		}
		i := strings.IndexByte(line, ':')
		if i <= 0 {
			return nil, ErrMalformedHeader
		}
		k := strings.TrimSpace(line[:i])
		v := strings.TrimSpace(line[i+1:])
		addHeader(h, k, v)
	}
	return h, nil
}

func (r *Reader) readLine() (string, error) {
	var sb strings.Builder
	for {
		b, err := r.BR.ReadByte()
		if err != nil {
			if err == io.EOF && sb.Len() > 0 {
				return "", io.ErrUnexpectedEOF
			}
			return "", err
		}
		if b == '\n' {
			break
		}
		if b != '\r' {
			sb.WriteByte(b)
		}
		if r.MaxHeaderBytes > 0 && sb.Len() > r.MaxHeaderBytes {
			return "", ErrLineTooLong
		}
	}
	return sb.String(), nil
}

func addHeader(h map[string][]string, k, v string) {
	hk := CanonicalHeaderKey(k)
	h[hk] = append(h[hk], v)
}

func getHeader(h map[string][]string, k string) string {
	hk := CanonicalHeaderKey(k)
	if vv, ok := h[hk]; ok && len(vv) > 0 {
		return vv[0]
	}
	return ""
}

// CanonicalHeaderKey upper-cases the first letter and every letter following
// a hyphen; the rest is lower-cased.
func CanonicalHeaderKey(s string) string {
	b := []byte(strings.ToLower(s))
	upper := true
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			if upper {
				b[i] = byte(c - 'a' + 'A')
			}
			upper = false
			continue
		}
		upper = c == '-'
	}
	return string(b)
}
