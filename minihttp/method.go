package minihttp

// Method is an HTTP request method. The zero value is not a valid method.
type Method uint8

const (
	GET Method = iota + 1
	DELETE
	POST
	PUT
	HEAD
	CONNECT
	OPTIONS
	TRACE
	PATCH
)

var methodNames = [...]string{
	GET:     "GET",
	DELETE:  "DELETE",
	POST:    "POST",
	PUT:     "PUT",
	HEAD:    "HEAD",
	CONNECT: "CONNECT",
	OPTIONS: "OPTIONS",
	TRACE:   "TRACE",
	PATCH:   "PATCH",
}

func (m Method) String() string {
	if m == 0 || int(m) >= len(methodNames) {
		return "UNKNOWN"
	}
	return methodNames[m]
}

// ParseMethod matches token against the supported verbs. Matching is
// case-sensitive: "get" is not GET.
func ParseMethod(token string) (Method, error) {
	for m := GET; m <= PATCH; m++ {
		if methodNames[m] == token {
			return m, nil
		}
	}
	return 0, &MethodError{Token: token}
}
