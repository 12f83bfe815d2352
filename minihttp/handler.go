package minihttp

// Handler turns parsed requests into responses. It is the only coupling
// between a Server and the application embedding it.
//
// HandleRequest must return a non-nil Response for every request, including
// ones with no matching route (404 by convention). HandleBadRequest is
// called instead when the request line could not be parsed; it should
// answer with a client error. Embed BadRequestFallback to get the default.
//
// When Server.Concurrent is set, both methods may be called from several
// goroutines at once.
type Handler interface {
	HandleRequest(r *Request) *Response
	HandleBadRequest(err ParseError) *Response
}

// BadRequestFallback supplies the default HandleBadRequest: a 400 with no
// body. Embed it in a Handler implementation that has nothing to add.
type BadRequestFallback struct{}

func (BadRequestFallback) HandleBadRequest(ParseError) *Response {
	return NewEmptyResponse(StatusBadRequest)
}

// HandlerFunc adapts a function to a Handler with the default bad-request
// behavior.
type HandlerFunc func(r *Request) *Response

func (f HandlerFunc) HandleRequest(r *Request) *Response {
	return f(r)
}

func (f HandlerFunc) HandleBadRequest(err ParseError) *Response {
	return BadRequestFallback{}.HandleBadRequest(err)
}
