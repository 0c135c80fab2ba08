package httpports

import (
	"context"

	httpdomain "kilometers.ai/loader/internal/core/domain/http"
)

type HttpRequester interface {
	Do(ctx context.Context, endpoint httpdomain.Endpoint, req httpdomain.RequestContext) (status int, headers map[string][]string, body []byte, err error)
}

type AuthHeaderProvider interface {
	Headers(ctx context.Context) (map[string]string, error)
}
