package minihttp

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"time"

	"github.com/pkg/errors"

	"dqx0.com/go/webserver/minihttp/internal/http1"
)

// Client sends a single request line over a fresh connection and reads the
// response until the server closes. It exists to poke at a Server by hand,
// including with malformed request lines, which is why Do takes the raw line
// instead of a Request.
type Client struct {
	DialTimeout    time.Duration
	MaxHeaderBytes int
}

// ClientResponse is a response as read by Client. Unlike Response it can
// hold any status code a server might send.
type ClientResponse struct {
	Proto      string
	StatusCode int
	Reason     string
	Header     Header
	Body       []byte
}

// Do dials addr, writes line and reads the response. A "\n" is appended
// when line does not already end in one. Cancelling ctx aborts any
// blocked read or write.
func (c *Client) Do(ctx context.Context, addr, line string) (*ClientResponse, error) {
	d := net.Dialer{Timeout: c.dialTimeout()}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "minihttp: dial %s", addr)
	}
	defer conn.Close()
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	if _, err := io.WriteString(conn, line); err != nil {
		return nil, errors.Wrap(err, "minihttp: write request")
	}

	rr := &http1.Reader{BR: bufio.NewReader(conn), MaxHeaderBytes: c.headerLimit()}
	pr, err := rr.ReadResponse()
	if err != nil {
		return nil, errors.Wrap(err, "minihttp: read response")
	}
	return &ClientResponse{
		Proto:      pr.Proto,
		StatusCode: pr.StatusCode,
		Reason:     pr.Reason,
		Header:     Header(pr.Header),
		Body:       pr.Body,
	}, nil
}

// Get requests target from addr with a GET request. Lines end in a bare
// "\n", which a Server accepts with or without AllowCRLF.
func (c *Client) Get(ctx context.Context, addr, target string) (*ClientResponse, error) {
	line := "GET " + target + " " + protocolHTTP11 + "\nHost: " + addr + "\n\n"
	return c.Do(ctx, addr, line)
}

func (c *Client) dialTimeout() time.Duration {
	if c.DialTimeout <= 0 {
		return 5 * time.Second
	}
	return c.DialTimeout
}

func (c *Client) headerLimit() int {
	if c.MaxHeaderBytes <= 0 {
		return 8 << 10
	}
	return c.MaxHeaderBytes
}
