package apphttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	httpdomain "kilometers.ai/loader/internal/core/domain/http"
	httpports "kilometers.ai/loader/internal/core/ports/http"
	httpinfra "kilometers.ai/loader/internal/infrastructure/http"
)

// RepositoryClient reads directory listings and raw files from a remote repository
type RepositoryClient struct {
	endpoint     httpdomain.Endpoint
	requester    httpports.HttpRequester
	authProvider httpports.AuthHeaderProvider
}

func NewRepositoryClient(baseURL, userAgent string, timeout time.Duration, auth httpports.AuthHeaderProvider) *RepositoryClient {
	return NewRepositoryClientWithRequester(baseURL, userAgent, httpinfra.NewStdHttpRequester(timeout), auth)
}

func NewRepositoryClientWithRequester(baseURL, userAgent string, requester httpports.HttpRequester, auth httpports.AuthHeaderProvider) *RepositoryClient {
	return &RepositoryClient{
		endpoint:     httpdomain.Endpoint{BaseURL: baseURL, UserAgent: userAgent},
		requester:    requester,
		authProvider: auth,
	}
}

// Endpoint returns the base endpoint requests are resolved against
func (c *RepositoryClient) Endpoint() httpdomain.Endpoint {
	return c.endpoint
}

// GetJSON issues a GET and decodes a 2xx body into out
func (c *RepositoryClient) GetJSON(ctx context.Context, path string, query map[string]string, out interface{}) error {
	status, _, body, err := c.do(ctx, path, nil, query)
	if err != nil {
		return err
	}
	if !httpdomain.IsSuccess(status) {
		return &httpdomain.StatusError{URL: path, Status: status}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// GetText issues a GET for a raw file and returns its 2xx body. The
// Authorization header is only sent to the API host and the GitHub raw host.
func (c *RepositoryClient) GetText(ctx context.Context, path string) (string, error) {
	extra := map[string]string{
		"Accept":               "*/*",
		"X-GitHub-Api-Version": "",
	}
	if !c.trustsCredentials(path) {
		extra["Authorization"] = ""
	}

	status, _, body, err := c.do(ctx, path, extra, nil)
	if err != nil {
		return "", err
	}
	if !httpdomain.IsSuccess(status) {
		return "", &httpdomain.StatusError{URL: path, Status: status}
	}
	return string(body), nil
}

// trustsCredentials reports whether path targets a host the token belongs to.
// Relative paths resolve against the endpoint and are trusted.
func (c *RepositoryClient) trustsCredentials(path string) bool {
	target, err := url.Parse(path)
	if err != nil {
		return false
	}
	if !target.IsAbs() {
		return true
	}
	host := strings.ToLower(target.Hostname())
	if host == GitHubRawHost {
		return true
	}
	base, err := url.Parse(c.endpoint.BaseURL)
	if err != nil || base.Host == "" {
		return false
	}
	return strings.EqualFold(target.Host, base.Host)
}

func (c *RepositoryClient) do(ctx context.Context, path string, extraHeaders map[string]string, query map[string]string) (int, map[string][]string, []byte, error) {
	var h map[string]string
	if c.authProvider != nil {
		var err error
		if h, err = c.authProvider.Headers(ctx); err != nil {
			return 0, nil, nil, fmt.Errorf("failed to build request headers: %w", err)
		}
	}
	headers := httpinfra.MergeHeaders(h, extraHeaders)

	return c.requester.Do(ctx, c.endpoint, httpdomain.RequestContext{
		Method:  http.MethodGet,
		Path:    path,
		Query:   query,
		Headers: headers,
	})
}
