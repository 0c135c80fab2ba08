package httpdomain

import (
	"fmt"
	"io"
	"net/http"
)

// RequestContext describes one request relative to an Endpoint. Path may
// also be an absolute URL, in which case the endpoint base is ignored.
type RequestContext struct {
	Method  string
	Path    string
	Query   map[string]string
	Headers map[string]string
	Body    io.Reader
}

// StatusError reports a response outside the 2xx range
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.Status, http.StatusText(e.Status))
}

// IsSuccess reports whether status is in the 2xx range
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
