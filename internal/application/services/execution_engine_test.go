package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"kilometers.ai/loader/internal/core/domain/extension"
	"kilometers.ai/loader/internal/core/ports"
	"kilometers.ai/loader/internal/core/testfixtures"
)

func TestRunEnabled_IsolatesFailingModule(t *testing.T) {
	fetcher := new(MockSourceFetcher)
	runtime := new(MockScriptRuntime)
	logger := testfixtures.NewRecordingLogger()
	engine := NewExecutionEngine(fetcher, runtime, testfixtures.NewFakeHost(), logger)

	descriptors := testfixtures.Descriptors("first", "second", "third")
	for _, id := range []string{"first", "second", "third"} {
		fetcher.On("FetchSource", mock.Anything, id).Return("src-"+id, nil)
	}
	runtime.On("Exec", mock.Anything, "first", "src-first").Return(nil)
	runtime.On("Exec", mock.Anything, "second", "src-second").
		Return(&extension.ExecutionError{Identifier: "second", Err: errors.New("TypeError: x is undefined")})
	runtime.On("Exec", mock.Anything, "third", "src-third").Return(nil)

	assert.NotPanics(t, func() {
		engine.RunEnabled(context.Background(), descriptors, extension.NewEnablementMap())
	})

	fetcher.AssertExpectations(t)
	runtime.AssertExpectations(t)
	assert.ElementsMatch(t, []string{"loaded first", "loaded third"}, logger.Messages("info"))
	assert.Equal(t, []string{"failed second"}, logger.Messages("error"))
}

func TestRunEnabled_FetchFailureLoggedForThatModuleOnly(t *testing.T) {
	fetcher := new(MockSourceFetcher)
	runtime := new(MockScriptRuntime)
	logger := testfixtures.NewRecordingLogger()
	engine := NewExecutionEngine(fetcher, runtime, testfixtures.NewFakeHost(), logger)

	fetcher.On("FetchSource", mock.Anything, "home").Return("home()", nil)
	fetcher.On("FetchSource", mock.Anything, "tags").
		Return("", &extension.FetchError{Identifier: "tags", Source: "https://raw.example.com/tags.js", Err: errors.New("connection reset")})
	runtime.On("Exec", mock.Anything, "home", "home()").Return(nil)

	engine.RunEnabled(context.Background(), testfixtures.Descriptors("home", "tags"), extension.NewEnablementMap())

	failures := logger.Find("error", "failed")
	require.Len(t, failures, 1)
	assert.Equal(t, "failed tags", failures[0].Message)
	assert.Equal(t, []string{"loaded home"}, logger.Messages("info"))
	runtime.AssertNotCalled(t, "Exec", mock.Anything, "tags", mock.Anything)
}

func TestRunEnabled_DisabledNeverFetched(t *testing.T) {
	fetcher := new(MockSourceFetcher)
	runtime := new(MockScriptRuntime)
	engine := NewExecutionEngine(fetcher, runtime, testfixtures.NewFakeHost(), testfixtures.NewRecordingLogger())

	fetcher.On("FetchSource", mock.Anything, "tags").Return("tags()", nil)
	runtime.On("Exec", mock.Anything, "tags", "tags()").Return(nil)

	engine.RunEnabled(context.Background(), testfixtures.Descriptors("home", "tags"), extension.EnablementMap{"home": false, "tags": true})

	fetcher.AssertNotCalled(t, "FetchSource", mock.Anything, "home")
	fetcher.AssertNumberOfCalls(t, "FetchSource", 1)
}

func TestRunEnabled_RecoversPanics(t *testing.T) {
	logger := testfixtures.NewRecordingLogger()
	engine := NewExecutionEngine(panickingFetcher{}, new(MockScriptRuntime), testfixtures.NewFakeHost(), logger)

	assert.NotPanics(t, func() {
		engine.RunEnabled(context.Background(), testfixtures.Descriptors("home"), nil)
	})
	assert.Equal(t, []string{"failed home"}, logger.Messages("error"))
}

type panickingFetcher struct{}

func (panickingFetcher) FetchSource(context.Context, extension.Descriptor) (string, error) {
	panic("boom")
}

type recordingRuntime struct {
	executed chan string
	mctx     chan ports.ModuleContext
}

func (r *recordingRuntime) Exec(ctx context.Context, mctx ports.ModuleContext, src string) error {
	r.executed <- mctx.Descriptor().Identifier()
	if r.mctx != nil {
		r.mctx <- mctx
	}
	return nil
}

func (r *recordingRuntime) Close() error { return nil }

type staticFetcher struct{}

func (staticFetcher) FetchSource(_ context.Context, d extension.Descriptor) (string, error) {
	return d.Identifier(), nil
}

func TestRunEnabled_ModuleContext(t *testing.T) {
	host := testfixtures.NewFakeHost()
	host.Nav().Navigate("/library")
	logger := testfixtures.NewRecordingLogger()
	rt := &recordingRuntime{executed: make(chan string, 1), mctx: make(chan ports.ModuleContext, 1)}
	engine := NewExecutionEngine(staticFetcher{}, rt, host, logger)

	engine.RunEnabled(context.Background(), testfixtures.Descriptors("Track Tags"), nil)

	mctx := <-rt.mctx
	assert.Equal(t, "track-tags", mctx.Descriptor().Identifier())
	assert.Equal(t, "/library", mctx.Location())
	mctx.Navigate("/preferences")
	assert.Equal(t, "/preferences", host.Nav().Location())

	mctx.Logger().Info("hello")
	hello := logger.Find("info", "hello")
	require.Len(t, hello, 1)
	assert.Equal(t, "track-tags", hello[0].Name)
}

func TestRunEnabled_ModuleContextWithoutNavigator(t *testing.T) {
	host := testfixtures.NewFakeHost()
	host.SetReady(false)
	mctx := newModuleContext(testfixtures.Descriptors("home")[0], testfixtures.NewRecordingLogger(), host)

	assert.Empty(t, mctx.Location())
	assert.NotPanics(t, func() { mctx.Navigate("/x") })
}

func TestRunEnabled_ExecutesExactlyTheEnabledSet(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		names := rapid.SliceOfDistinct(rapid.StringMatching(`[a-z]{1,8}`), rapid.ID[string]).Draw(t, "names")
		overrides := rapid.MapOf(rapid.SampledFrom(append(names, "ghost")), rapid.Bool()).Draw(t, "overrides")

		descriptors := testfixtures.Descriptors(names...)
		snapshot := extension.EnablementMap(overrides)
		rt := &recordingRuntime{executed: make(chan string, len(names))}
		engine := NewExecutionEngine(staticFetcher{}, rt, testfixtures.NewFakeHost(), testfixtures.NewRecordingLogger())

		engine.RunEnabled(context.Background(), descriptors, snapshot)
		close(rt.executed)

		executed := map[string]bool{}
		for id := range rt.executed {
			executed[id] = true
		}
		for _, name := range names {
			want := overrides[name] || !hasKey(overrides, name)
			if executed[name] != want {
				t.Fatalf("%s executed=%v, want %v (overrides %v)", name, executed[name], want, overrides)
			}
		}
	})
}

func hasKey(m map[string]bool, k string) bool {
	_, ok := m[k]
	return ok
}
