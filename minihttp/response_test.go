package minihttp

import (
	"bytes"
	"errors"
	"testing"
)

func TestResponse_WireFormat(t *testing.T) {
	cases := []struct {
		name string
		resp *Response
		want string
	}{
		{
			name: "no body",
			resp: NewEmptyResponse(StatusBadRequest),
			want: "HTTP/1.1 400 Bad Request\r\nConnection: close\r\nContent-Length: 0\r\n\r\n",
		},
		{
			name: "body",
			resp: NewTextResponse(StatusOK, "<h1>Welcome!</h1>"),
			want: "HTTP/1.1 200 OK\r\nConnection: close\r\nContent-Length: 17\r\n\r\n<h1>Welcome!</h1>",
		},
		{
			name: "header",
			resp: &Response{StatusCode: StatusNotFound, Header: Header{"Content-Type": {"text/plain"}}, Body: []byte("nope")},
			want: "HTTP/1.1 404 Not Found\r\nContent-Type: text/plain\r\nConnection: close\r\nContent-Length: 4\r\n\r\nnope",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tc.resp.Send(&buf); err != nil {
				t.Fatalf("Send: %v", err)
			}
			if got := buf.String(); got != tc.want {
				t.Fatalf("got %q\nwant %q", got, tc.want)
			}
		})
	}
}

func TestResponse_SerializeTwiceIdentical(t *testing.T) {
	h := Header{}
	for _, k := range []string{"X-C", "X-A", "X-B", "Content-Type", "Cache-Control"} {
		h.Set(k, "v")
	}
	r := &Response{StatusCode: StatusOK, Header: h, Body: []byte("body")}
	first := r.Bytes()
	for i := 0; i < 20; i++ {
		if again := r.Bytes(); !bytes.Equal(first, again) {
			t.Fatalf("serialization %d differs:\n%q\n%q", i, first, again)
		}
	}
}

type failingWriter struct{ err error }

func (w failingWriter) Write(p []byte) (int, error) { return 0, w.err }

func TestResponse_SendPropagatesWriteError(t *testing.T) {
	boom := errors.New("broken pipe")
	err := NewTextResponse(StatusOK, "x").Send(failingWriter{boom})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v, want %v", err, boom)
	}
}

func TestResponse_WriteToCount(t *testing.T) {
	var buf bytes.Buffer
	n, err := NewTextResponse(StatusOK, "hi").WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if n != int64(buf.Len()) {
		t.Fatalf("n=%d, buffer has %d", n, buf.Len())
	}
}

func TestStatusCode(t *testing.T) {
	cases := []struct {
		code   StatusCode
		num    int
		phrase string
	}{
		{StatusOK, 200, "OK"},
		{StatusBadRequest, 400, "Bad Request"},
		{StatusNotFound, 404, "Not Found"},
		{StatusMethodNotAllowed, 405, "Method Not Allowed"},
		{StatusInternalServerError, 500, "Internal Server Error"},
	}
	for _, tc := range cases {
		if tc.code.Code() != tc.num || tc.code.ReasonPhrase() != tc.phrase {
			t.Fatalf("%v: code=%d phrase=%q", tc.code, tc.code.Code(), tc.code.ReasonPhrase())
		}
	}
	if got := StatusNotFound.String(); got != "404 Not Found" {
		t.Fatalf("String()=%q", got)
	}
	for _, c := range []StatusCode{0, 201, 999} {
		if c.Valid() {
			t.Fatalf("StatusCode(%d).Valid() = true", c)
		}
	}
}

func TestResponse_UndeclaredStatusSentAs500(t *testing.T) {
	r := &Response{StatusCode: 999, Body: []byte("x")}
	got := string(r.Bytes())
	want := "HTTP/1.1 500 Internal Server Error\r\nConnection: close\r\nContent-Length: 1\r\n\r\nx"
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
	if r.StatusCode != 999 {
		t.Fatalf("WriteTo changed StatusCode to %d", r.StatusCode)
	}
}

func TestHandlerFunc_DefaultBadRequest(t *testing.T) {
	h := HandlerFunc(func(*Request) *Response { return NewEmptyResponse(StatusOK) })
	for _, pe := range []ParseError{InvalidRequest, InvalidEncoding, InvalidProtocol, InvalidMethod} {
		resp := h.HandleBadRequest(pe)
		if resp.StatusCode != StatusBadRequest || resp.Body != nil {
			t.Fatalf("%v: got %v body=%q", pe, resp.StatusCode, resp.Body)
		}
	}
}
