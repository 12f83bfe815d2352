package main

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"dqx0.com/go/webserver/internal/config"
	"dqx0.com/go/webserver/minihttp"
)

type getOptions struct {
	addr    string
	raw     string
	include bool
	timeout time.Duration
}

func newGetCmd() *cobra.Command {
	o := &getOptions{}
	cmd := &cobra.Command{
		Use:   "get [target]",
		Short: "Send one request and print the response",
		Long: `Send a GET for target (default "/") and print the response body.

With --raw the given request line is sent verbatim instead, which makes it
easy to check how the server answers malformed requests:

  minihttp get --raw "FOO / HTTP/1.1"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			target := "/"
			if len(args) == 1 {
				target = args[0]
			}
			return o.run(c, target)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&o.addr, "addr", config.Default.Addr, "server host:port")
	fs.StringVar(&o.raw, "raw", "", "send this request line instead of a GET")
	fs.BoolVarP(&o.include, "include", "i", false, "print the status line and headers")
	fs.DurationVar(&o.timeout, "timeout", 5*time.Second, "overall request timeout")
	return cmd
}

func (o *getOptions) run(c *cobra.Command, target string) error {
	ctx, cancel := context.WithTimeout(c.Context(), o.timeout)
	defer cancel()

	cl := &minihttp.Client{DialTimeout: o.timeout}
	var (
		resp *minihttp.ClientResponse
		err  error
	)
	if o.raw != "" {
		resp, err = cl.Do(ctx, o.addr, o.raw)
	} else {
		resp, err = cl.Get(ctx, o.addr, target)
	}
	if err != nil {
		return err
	}

	out := c.OutOrStdout()
	if o.include {
		fmt.Fprintf(out, "%s %d %s\n", resp.Proto, resp.StatusCode, resp.Reason)
		keys := make([]string, 0, len(resp.Header))
		for k := range resp.Header {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			for _, v := range resp.Header[k] {
				fmt.Fprintf(out, "%s: %s\n", k, v)
			}
		}
		fmt.Fprintln(out)
	}
	_, err = out.Write(resp.Body)
	return err
}
