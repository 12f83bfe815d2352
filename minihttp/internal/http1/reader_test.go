package http1

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func readResp(t *testing.T, raw string, maxLine int) (*ParsedResponse, error) {
	t.Helper()
	r := &Reader{BR: bufio.NewReader(strings.NewReader(raw)), MaxHeaderBytes: maxLine}
	return r.ReadResponse()
}

func TestReader_ContentLengthBody(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nContent-Length: 5\r\nConnection: close\r\n\r\nhello trailing"
	pr, err := readResp(t, raw, 8<<10)
	if err != nil {
		t.Fatalf("ReadResponse error: %v", err)
	}
	if pr.StatusCode != 200 || pr.Reason != "OK" {
		t.Fatalf("status=%d reason=%q", pr.StatusCode, pr.Reason)
	}
	if string(pr.Body) != "hello" {
		t.Fatalf("body=%q", string(pr.Body))
	}
	if got := getHeader(pr.Header, "connection"); got != "close" {
		t.Fatalf("connection=%q", got)
	}
}

func TestReader_BodyUntilEOF(t *testing.T) {
	raw := "HTTP/1.1 404 Not Found\r\n\r\nmissing"
	pr, err := readResp(t, raw, 8<<10)
	if err != nil {
		t.Fatalf("ReadResponse error: %v", err)
	}
	if pr.StatusCode != 404 || pr.Reason != "Not Found" {
		t.Fatalf("status=%d reason=%q", pr.StatusCode, pr.Reason)
	}
	if string(pr.Body) != "missing" {
		t.Fatalf("body=%q", string(pr.Body))
	}
}

func TestReader_StatusLineOnly(t *testing.T) {
	pr, err := readResp(t, "HTTP/1.1 400 Bad Request\r\n\r\n", 8<<10)
	if err != nil {
		t.Fatalf("ReadResponse error: %v", err)
	}
	if pr.StatusCode != 400 || len(pr.Body) != 0 {
		t.Fatalf("status=%d body=%q", pr.StatusCode, pr.Body)
	}
}

func TestReader_MalformedStatus(t *testing.T) {
	for _, raw := range []string{
		"garbage\r\n\r\n",
		"SPDY/3 200 OK\r\n\r\n",
		"HTTP/1.1 abc OK\r\n\r\n",
		"HTTP/1.1 42 Short\r\n\r\n",
	} {
		if _, err := readResp(t, raw, 8<<10); !errors.Is(err, ErrMalformedStatus) {
			t.Fatalf("%q: err=%v, want ErrMalformedStatus", raw, err)
		}
	}
}

func TestReader_InvalidHeaderLine(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nno colon here\r\n\r\n"
	if _, err := readResp(t, raw, 8<<10); !errors.Is(err, ErrMalformedHeader) {
		t.Fatalf("err=%v, want ErrMalformedHeader", err)
	}
}

func TestReader_ShortBody(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\nabc"
	if _, err := readResp(t, raw, 8<<10); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("err=%v, want io.ErrUnexpectedEOF", err)
	}
}

func TestReader_LineLimit(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nX-Long: " + strings.Repeat("a", 64) + "\r\n\r\n"
	if _, err := readResp(t, raw, 16); !errors.Is(err, ErrLineTooLong) {
		t.Fatalf("err=%v, want ErrLineTooLong", err)
	}
}

func TestReadOnce(t *testing.T) {
	buf := make([]byte, 8)
	n, err := ReadOnce(strings.NewReader("GET / HTTP/1.1\n"), buf)
	if err != nil {
		t.Fatalf("ReadOnce error: %v", err)
	}
	if n != 8 || string(buf[:n]) != "GET / HT" {
		t.Fatalf("n=%d buf=%q", n, buf[:n])
	}

	n, err = ReadOnce(strings.NewReader(""), buf)
	if err != nil || n != 0 {
		t.Fatalf("empty reader: n=%d err=%v", n, err)
	}

	boom := errors.New("boom")
	if _, err := ReadOnce(iotest.ErrReader(boom), buf); !errors.Is(err, boom) {
		t.Fatalf("err=%v, want boom", err)
	}
}

func TestCanonicalHeaderKey(t *testing.T) {
	cases := map[string]string{
		"content-type": "Content-Type",
		"X-FOO":        "X-Foo",
		"connection":   "Connection",
		"x-request-id": "X-Request-Id",
		"":             "",
	}
	for in, want := range cases {
		if got := CanonicalHeaderKey(in); got != want {
			t.Fatalf("CanonicalHeaderKey(%q)=%q, want %q", in, got, want)
		}
	}
}
