package minihttp

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"golang.org/x/time/rate"

	"dqx0.com/go/webserver/internal/obs"
	"dqx0.com/go/webserver/minihttp/internal/http1"
)

// DefaultBufferSize is the number of bytes read from each connection when
// Server.BufferSize is not set. Longer requests are truncated; since only the
// request line is parsed this matters only for very long targets.
const DefaultBufferSize = 1024

// Server accepts connections and answers exactly one request on each.
//
// By default connections are served one after another on the goroutine that
// called Run or Serve. With Concurrent set, every accepted connection gets
// its own goroutine and the Handler must be safe for concurrent use.
//
// No read or write deadlines are applied while serving: a client that
// connects and never sends holds its connection open, and in sequential mode
// blocks the server. Close does not wait for such clients.
//
// After each response the connection lingers for up to 250ms, discarding
// whatever the client still sends, before it is closed. In sequential mode
// the next Accept waits for that too.
type Server struct {
	Addr       string
	BufferSize int
	Concurrent bool
	// AllowCRLF makes the request line parser drop the '\r' of a CRLF line
	// ending. See Parser.
	AllowCRLF bool
	// AcceptRetryInterval paces Accept retries after a failed Accept.
	// Zero means 100ms.
	AcceptRetryInterval time.Duration

	Logger obs.Logger
	Meter  obs.Meter

	mu     sync.Mutex
	ln     net.Listener
	closed atomic.Bool
	wg     sync.WaitGroup
	conns  map[net.Conn]struct{}

	accepted    atomic.Int64
	served      atomic.Int64
	badRequests atomic.Int64
	active      atomic.Int64
}

// Stats is a snapshot of Server counters.
type Stats struct {
	Accepted    int64
	Served      int64
	BadRequests int64
	Active      int64
}

// NewServer returns a Server that will listen on addr. No I/O happens until
// Run is called.
func NewServer(addr string) *Server {
	return &Server{Addr: addr}
}

// Run binds s.Addr and serves connections with h until Close is called.
// A bind failure is returned immediately; the server cannot do anything
// useful without its listening socket.
func (s *Server) Run(h Handler) error {
	addr := s.Addr
	if addr == "" {
		addr = ":8080"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.logf(obs.Info, "listening on %s", ln.Addr())
	return s.Serve(ln, h)
}

// Serve accepts connections on ln. A failed Accept is logged and retried;
// Serve only returns once the listener is closed, with ErrServerClosed when
// that was done by Close.
func (s *Server) Serve(ln net.Listener, h Handler) error {
	if h == nil {
		return errors.New("minihttp: nil handler")
	}
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		_ = ln.Close()
		return ErrServerClosed
	}
	s.ln = ln
	s.mu.Unlock()
	defer ln.Close()

	retry := rate.NewLimiter(rate.Every(s.acceptRetryInterval()), 1)
	for {
		c, err := ln.Accept()
		if err != nil {
			if s.closed.Load() {
				return ErrServerClosed
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.logf(obs.Warn, "accept: %v", err)
			s.meter().Counter("accept_errors_total", 1)
			_ = retry.Wait(context.Background())
			continue
		}
		s.mu.Lock()
		if s.closed.Load() {
			s.mu.Unlock()
			_ = c.Close()
			return ErrServerClosed
		}
		s.wg.Add(1)
		if s.conns == nil {
			s.conns = make(map[net.Conn]struct{})
		}
		s.conns[c] = struct{}{}
		s.mu.Unlock()
		s.accepted.Inc()
		if s.Concurrent {
			go func() {
				defer s.wg.Done()
				s.serveConn(c, h)
			}()
			continue
		}
		s.serveConn(c, h)
		s.wg.Done()
	}
}

// Close stops the accept loop and waits for connections being served to
// finish. Pending reads are cut short, so a client that has not sent its
// request yet gets the connection closed without a response; responses
// already being written are completed.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed.Store(true)
	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}
	now := time.Now()
	for c := range s.conns {
		_ = c.SetReadDeadline(now)
	}
	s.mu.Unlock()
	s.wg.Wait()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	return err
}

// ListenAddr returns the listener's address, or nil before Serve has started.
func (s *Server) ListenAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func (s *Server) Stats() Stats {
	return Stats{
		Accepted:    s.accepted.Load(),
		Served:      s.served.Load(),
		BadRequests: s.badRequests.Load(),
		Active:      s.active.Load(),
	}
}

func (s *Server) forget(c net.Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	_ = c.Close()
}

// serveConn runs one read, parse, dispatch, write cycle and closes c.
func (s *Server) serveConn(c net.Conn, h Handler) {
	defer s.forget(c)
	s.active.Inc()
	defer s.active.Dec()

	start := time.Now()
	lg := obs.With(s.logger(), "conn", uuid.NewString())
	if ra := c.RemoteAddr(); ra != nil {
		lg = obs.With(lg, "remote", ra.String())
	}

	buf := make([]byte, s.bufferSize())
	n, err := http1.ReadOnce(c, buf)
	if err != nil {
		if s.closed.Load() {
			lg.Logf(obs.Debug, "read interrupted by close: %v", err)
			return
		}
		lg.Logf(obs.Warn, "read: %v", err)
		s.meter().Counter("read_errors_total", 1)
		return
	}

	var (
		resp   *Response
		method = "-"
	)
	req, err := Parser{AllowCRLF: s.AllowCRLF}.Parse(buf[:n])
	if err != nil {
		var pe ParseError
		if !errors.As(err, &pe) {
			pe = InvalidRequest
		}
		s.badRequests.Inc()
		lg.Logf(obs.Debug, "bad request: %v", pe)
		resp = h.HandleBadRequest(pe)
	} else {
		method = req.Method().String()
		resp = h.HandleRequest(req)
	}
	if resp == nil {
		lg.Logf(obs.Error, "handler returned no response")
		resp = NewEmptyResponse(StatusInternalServerError)
	}

	if err := resp.Send(c); err != nil {
		lg.Logf(obs.Warn, "write: %v", err)
		s.meter().Counter("write_errors_total", 1)
		return
	}
	s.served.Inc()

	status := resp.StatusCode.sendable().String()
	if req != nil {
		lg.Logf(obs.Debug, "%s -> %s", req, status)
	}
	labels := []obs.Label{{Key: "method", Value: method}, {Key: "status", Value: status}}
	s.meter().Counter("responses_total", 1, labels...)
	s.meter().Histogram("response_duration_seconds", time.Since(start).Seconds(), labels...)

	closeWriteAndDrain(c)
}

// Bytes left unread past the buffer would make the kernel answer Close with
// a reset, which can destroy the response before the client reads it. Half
// close instead and discard what the client still sends, for a short while.
const (
	lingerTimeout = 250 * time.Millisecond
	lingerMax     = 256 << 10
)

func closeWriteAndDrain(c net.Conn) {
	cw, ok := c.(interface{ CloseWrite() error })
	if !ok {
		return
	}
	if err := cw.CloseWrite(); err != nil {
		return
	}
	_ = c.SetReadDeadline(time.Now().Add(lingerTimeout))
	_, _ = io.CopyN(io.Discard, c, lingerMax)
}

func (s *Server) bufferSize() int {
	if s.BufferSize <= 0 {
		return DefaultBufferSize
	}
	return s.BufferSize
}

func (s *Server) acceptRetryInterval() time.Duration {
	if s.AcceptRetryInterval <= 0 {
		return 100 * time.Millisecond
	}
	return s.AcceptRetryInterval
}

func (s *Server) logger() obs.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return obs.NopLogger{}
}

func (s *Server) logf(level obs.Level, format string, args ...interface{}) {
	s.logger().Logf(level, format, args...)
}

func (s *Server) meter() obs.Meter {
	if s.Meter != nil {
		return s.Meter
	}
	return obs.NopMeter{}
}
