// Package bench drives a running server with concurrent GET requests and
// reports latency percentiles.
package bench

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// maxLatency bounds the histogram range, in microseconds.
const maxLatency = 60 * 1000 * 1000

type Config struct {
	// Addr is the host:port of the server under test. fasthttp ends request
	// lines with CRLF, so a minihttp server needs AllowCRLF to answer 200.
	Addr string
	// Path is the request target, "/" when empty.
	Path string
	// Requests is the total number of requests to send.
	Requests int
	// Workers is the number of concurrent senders, 1 when zero.
	Workers int
	// Rate caps requests per second across all workers; <= 0 means unlimited.
	Rate float64
	// Timeout applies to each request, 5s when zero.
	Timeout time.Duration
}

func (c Config) validate() error {
	if c.Addr == "" {
		return errors.New("bench: empty address")
	}
	if c.Requests <= 0 {
		return errors.Errorf("bench: requests must be positive, got %d", c.Requests)
	}
	if c.Workers < 0 {
		return errors.Errorf("bench: workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// Result summarizes a finished run. Latencies are kept in microseconds.
type Result struct {
	Requests     int64
	Errors       int64
	StatusCounts map[int]int64
	Duration     time.Duration

	hist *hdrhistogram.Histogram
}

// Quantile returns the latency at quantile q (0-100).
func (r *Result) Quantile(q float64) time.Duration {
	return time.Duration(r.hist.ValueAtQuantile(q)) * time.Microsecond
}

// Max returns the slowest recorded latency.
func (r *Result) Max() time.Duration {
	return time.Duration(r.hist.Max()) * time.Microsecond
}

// Throughput is completed requests per second of wall time.
func (r *Result) Throughput() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Requests-r.Errors) / r.Duration.Seconds()
}

// Render writes the result as a table.
func (r *Result) Render(w io.Writer) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.AppendHeader(table.Row{"Metric", "Value"})
	tbl.AppendRow(table.Row{"requests", r.Requests})
	tbl.AppendRow(table.Row{"errors", r.Errors})
	tbl.AppendRow(table.Row{"duration", r.Duration.Round(time.Millisecond)})
	tbl.AppendRow(table.Row{"throughput", fmt.Sprintf("%.1f req/s", r.Throughput())})
	tbl.AppendSeparator()
	for _, q := range []float64{50, 90, 99} {
		tbl.AppendRow(table.Row{fmt.Sprintf("p%g", q), r.Quantile(q)})
	}
	tbl.AppendRow(table.Row{"max", r.Max()})
	if len(r.StatusCounts) > 0 {
		tbl.AppendSeparator()
		codes := make([]int, 0, len(r.StatusCounts))
		for code := range r.StatusCounts {
			codes = append(codes, code)
		}
		slices.Sort(codes)
		for _, code := range codes {
			tbl.AppendRow(table.Row{fmt.Sprintf("status %d", code), r.StatusCounts[code]})
		}
	}
	tbl.Render()
}

type recorder struct {
	mu     sync.Mutex
	hist   *hdrhistogram.Histogram
	status map[int]int64
}

func (rec *recorder) record(code int, lat time.Duration) {
	us := lat.Microseconds()
	if us < 1 {
		us = 1
	}
	if us > maxLatency {
		us = maxLatency
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	_ = rec.hist.RecordValue(us)
	rec.status[code]++
}

// Run sends cfg.Requests GET requests to cfg.Addr. Transport failures are
// counted in Result.Errors and do not stop the run; Run fails only on an
// invalid config or when ctx is done.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	path := cfg.Path
	if path == "" {
		path = "/"
	}
	workers := cfg.Workers
	if workers == 0 {
		workers = 1
	}
	if workers > cfg.Requests {
		workers = cfg.Requests
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	limit := rate.Inf
	if cfg.Rate > 0 {
		limit = rate.Limit(cfg.Rate)
	}
	limiter := rate.NewLimiter(limit, 1)

	client := &fasthttp.HostClient{
		Addr:     cfg.Addr,
		Name:     "minihttp-bench",
		MaxConns: workers,
	}
	uri := "http://" + cfg.Addr + path
	rec := &recorder{
		hist:   hdrhistogram.New(1, maxLatency, 3),
		status: make(map[int]int64),
	}
	var issued, failed atomic.Int64

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			req := fasthttp.AcquireRequest()
			resp := fasthttp.AcquireResponse()
			defer fasthttp.ReleaseRequest(req)
			defer fasthttp.ReleaseResponse(resp)
			for issued.Inc() <= int64(cfg.Requests) {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
				req.Reset()
				resp.Reset()
				req.SetRequestURI(uri)
				req.Header.SetMethod(fasthttp.MethodGet)
				req.SetConnectionClose()
				t0 := time.Now()
				if err := client.DoTimeout(req, resp, timeout); err != nil {
					failed.Inc()
					continue
				}
				rec.record(resp.StatusCode(), time.Since(t0))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "bench: run interrupted")
	}
	return &Result{
		Requests:     int64(cfg.Requests),
		Errors:       failed.Load(),
		StatusCounts: rec.status,
		Duration:     time.Since(start),
		hist:         rec.hist,
	}, nil
}
