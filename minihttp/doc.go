// Package minihttp is a small HTTP/1.1 server that answers one request per
// connection.
//
// The server reads a bounded chunk from each accepted connection, parses the
// request line into a Request (method, path and optional query string) and
// hands it to a Handler, whose Response is written back before the
// connection is closed. Headers and bodies of incoming requests are not
// parsed; keep-alive, chunked encoding and TLS are not supported.
//
// Words on the request line are separated by a space or a bare "\n", so
// "GET / HTTP/1.1\n" is accepted. A CRLF line ending leaves "\r" on the
// protocol token and the request is rejected as InvalidProtocol unless the
// Server (or Parser) sets AllowCRLF. The protocol must be exactly HTTP/1.1.
//
// Quick start:
//
//	h := minihttp.HandlerFunc(func(r *minihttp.Request) *minihttp.Response {
//	    if r.Method() == minihttp.GET && r.Path() == "/" {
//	        return minihttp.NewTextResponse(minihttp.StatusOK, "<h1>Welcome!</h1>")
//	    }
//	    return minihttp.NewEmptyResponse(minihttp.StatusNotFound)
//	})
//	s := minihttp.NewServer("127.0.0.1:8080")
//	if err := s.Run(h); err != nil { log.Fatal(err) }
package minihttp
