package minihttp

import (
	"bufio"
	"bytes"
	"io"

	"dqx0.com/go/webserver/minihttp/internal/http1"
)

// Response is a status code with an optional body. A nil Body means the
// response has no body; the status line and headers are still written.
//
// Every response is framed with Content-Length and "Connection: close",
// since each connection carries exactly one request.
type Response struct {
	StatusCode StatusCode
	Header     Header
	Body       []byte
}

func NewResponse(code StatusCode, body []byte) *Response {
	return &Response{StatusCode: code, Body: body}
}

func NewTextResponse(code StatusCode, body string) *Response {
	return &Response{StatusCode: code, Body: []byte(body)}
}

func NewEmptyResponse(code StatusCode) *Response {
	return &Response{StatusCode: code}
}

// SetHeader sets key to value, allocating Header when needed.
func (r *Response) SetHeader(key, value string) {
	if r.Header == nil {
		r.Header = Header{}
	}
	r.Header.Set(key, value)
}

// Send serializes r and writes it to w. Write errors are returned as is.
func (r *Response) Send(w io.Writer) error {
	_, err := r.WriteTo(w)
	return err
}

// WriteTo implements io.WriterTo. A StatusCode that is not Valid is written
// as 500 Internal Server Error, body and headers unchanged.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	code := r.StatusCode.sendable()
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	if err := http1.WriteResponse(bw, code.Code(), code.ReasonPhrase(), r.Header, r.Body); err != nil {
		return cw.n, err
	}
	err := bw.Flush()
	return cw.n, err
}

// Bytes returns the wire form of r.
func (r *Response) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = r.WriteTo(&buf)
	return buf.Bytes()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
