package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"kilometers.ai/loader/internal/core/domain/extension"
	"kilometers.ai/loader/internal/core/ports"
)

// Mock manifest source
type MockManifestSource struct {
	mock.Mock
}

func (m *MockManifestSource) Discover(ctx context.Context) ([]extension.Descriptor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]extension.Descriptor), args.Error(1)
}

// Mock source fetcher
type MockSourceFetcher struct {
	mock.Mock
}

func (m *MockSourceFetcher) FetchSource(ctx context.Context, d extension.Descriptor) (string, error) {
	args := m.Called(ctx, d.Identifier())
	return args.String(0), args.Error(1)
}

// Mock script runtime
type MockScriptRuntime struct {
	mock.Mock
}

func (m *MockScriptRuntime) Exec(ctx context.Context, mctx ports.ModuleContext, src string) error {
	args := m.Called(ctx, mctx.Descriptor().Identifier(), src)
	return args.Error(0)
}

func (m *MockScriptRuntime) Close() error {
	return m.Called().Error(0)
}
