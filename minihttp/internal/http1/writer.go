package http1

import (
	"bufio"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// WriteResponse writes a complete HTTP/1.1 response: status line, headers
// and body. Header keys are written in sorted order so the same response
// always produces the same bytes. Content-Length is derived from body and
// Connection is always "close"; caller supplied values for either are
// ignored. hdr keys should be canonicalized by caller.
func WriteResponse(bw *bufio.Writer, status int, reason string, hdr map[string][]string, body []byte) error {
	if _, err := fmt.Fprintf(bw, "HTTP/1.1 %d %s\r\n", status, reason); err != nil {
		return err
	}
	keys := make([]string, 0, len(hdr))
	for k := range hdr {
		if k == "Connection" || k == "Content-Length" {
			continue
		}
		if !isToken(k) {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		for _, v := range hdr[k] {
			if _, err := fmt.Fprintf(bw, "%s: %s\r\n", k, cleanHeaderValue(v)); err != nil {
				return err
			}
		}
	}
	if _, err := fmt.Fprint(bw, "Connection: close\r\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(bw, "Content-Length: %s\r\n", strconv.Itoa(len(body))); err != nil {
		return err
	}
	if _, err := fmt.Fprint(bw, "\r\n"); err != nil {
		return err
	}
	if len(body) > 0 {
		if _, err := bw.Write(body); err != nil {
			return err
		}
	}
	return nil
}

// isToken reports whether k is a non-empty RFC 9110 token.
func isToken(k string) bool {
	if k == "" {
		return false
	}
	for i := 0; i < len(k); i++ {
		if !isTokenByte(k[i]) {
			return false
		}
	}
	return true
}

func isTokenByte(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("!#$%&'*+-.^_`|~", c) >= 0
}

// cleanHeaderValue drops CR, LF, DEL and every other control byte except
// HTAB, so a value can never end the header line early.
func cleanHeaderValue(v string) string {
	if v == "" {
		return v
	}
	var b strings.Builder
	b.Grow(len(v))
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c == '\r' || c == '\n' || c == 0x7f {
			continue
		}
		if c < 0x20 && c != '\t' {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
