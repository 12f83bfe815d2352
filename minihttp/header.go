package minihttp

import "dqx0.com/go/webserver/minihttp/internal/http1"

// Header holds response header fields keyed by canonical name. Keys are
// canonicalized the same way the wire reader does it, so a header a Handler
// sets comes back under the same key in a ClientResponse.
//
// Connection and Content-Length are owned by the writer; values set for
// them are not sent.
type Header map[string][]string

// Get returns the first value for key, or "".
func (h Header) Get(key string) string {
	if vv := h[http1.CanonicalHeaderKey(key)]; len(vv) > 0 {
		return vv[0]
	}
	return ""
}

// Values returns every value for key. The slice is not a copy.
func (h Header) Values(key string) []string {
	return h[http1.CanonicalHeaderKey(key)]
}

// Set replaces the values for key. It panics on a nil Header, like any map
// write; use Response.SetHeader when the map may not exist yet.
func (h Header) Set(key, value string) {
	h[http1.CanonicalHeaderKey(key)] = []string{value}
}

func (h Header) Add(key, value string) {
	k := http1.CanonicalHeaderKey(key)
	h[k] = append(h[k], value)
}

func (h Header) Del(key string) {
	delete(h, http1.CanonicalHeaderKey(key))
}

// Clone returns a deep copy of h, or nil when h is nil.
func (h Header) Clone() Header {
	if h == nil {
		return nil
	}
	c := make(Header, len(h))
	for k, vv := range h {
		c[k] = append([]string(nil), vv...)
	}
	return c
}
