package httpinfra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	httpdomain "kilometers.ai/loader/internal/core/domain/http"
	httpports "kilometers.ai/loader/internal/core/ports/http"
)

// StdHttpRequester issues requests once; the loader never retries.
type StdHttpRequester struct {
	client *http.Client
}

// NewStdHttpRequester creates a requester; a zero timeout leaves the
// transport's own limits in charge.
func NewStdHttpRequester(timeout time.Duration) *StdHttpRequester {
	return &StdHttpRequester{client: &http.Client{Timeout: timeout}}
}

// NewStdHttpRequesterWithClient wraps an existing client
func NewStdHttpRequesterWithClient(client *http.Client) *StdHttpRequester {
	if client == nil {
		client = http.DefaultClient
	}
	return &StdHttpRequester{client: client}
}

func (r *StdHttpRequester) Do(ctx context.Context, endpoint httpdomain.Endpoint, req httpdomain.RequestContext) (int, map[string][]string, []byte, error) {
	fullURL, err := resolveURL(endpoint.BaseURL, req.Path, req.Query)
	if err != nil {
		return 0, nil, nil, err
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, fullURL, req.Body)
	if err != nil {
		return 0, nil, nil, err
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if endpoint.UserAgent != "" {
		httpReq.Header.Set("User-Agent", endpoint.UserAgent)
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, resp.Header, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, resp.Header, body, nil
}

// resolveURL joins base and p, unless p is already absolute
func resolveURL(base, p string, q map[string]string) (string, error) {
	if ref, err := url.Parse(p); err == nil && ref.IsAbs() {
		return withQuery(ref, q), nil
	}
	return joinURL(base, p, q)
}

func joinURL(base, p string, q map[string]string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	u.Path = joinPath(u.Path, p)
	return withQuery(u, q), nil
}

func withQuery(u *url.URL, q map[string]string) string {
	if len(q) > 0 {
		vals := u.Query()
		for k, v := range q {
			vals.Set(k, v)
		}
		u.RawQuery = vals.Encode()
	}
	return u.String()
}

func joinPath(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if a[len(a)-1] == '/' {
		a = a[:len(a)-1]
	}
	if b[0] != '/' {
		b = "/" + b
	}
	return a + b
}

var _ httpports.HttpRequester = (*StdHttpRequester)(nil)
