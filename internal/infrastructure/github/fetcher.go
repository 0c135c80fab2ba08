package github

import (
	"context"

	apphttp "kilometers.ai/loader/internal/application/http"
	"kilometers.ai/loader/internal/core/domain/extension"
	"kilometers.ai/loader/internal/core/ports"
)

// RawFetcher downloads extension source text from the content mirror
type RawFetcher struct {
	client *apphttp.RepositoryClient
}

func NewRawFetcher(client *apphttp.RepositoryClient) *RawFetcher {
	return &RawFetcher{client: client}
}

// FetchSource returns the script text of d; any failure is a FetchError
func (f *RawFetcher) FetchSource(ctx context.Context, d extension.Descriptor) (string, error) {
	source := d.Source().String()
	text, err := f.client.GetText(ctx, source)
	if err != nil {
		return "", &extension.FetchError{Identifier: d.Identifier(), Source: source, Err: err}
	}
	return text, nil
}

var _ ports.SourceFetcher = (*RawFetcher)(nil)
