package di

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kilometers.ai/loader/internal/core/domain/extension"
	"kilometers.ai/loader/internal/infrastructure/config"
	"kilometers.ai/loader/internal/infrastructure/host"
	"kilometers.ai/loader/internal/infrastructure/process"
)

const listingPath = "/repos/Alehaaaa/spicetify-extensions/contents/extensions/aleha-loader"

// newRepoServer serves a directory listing plus the raw body of each script
func newRepoServer(t *testing.T, scripts map[string]string, order ...string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(listingPath, func(w http.ResponseWriter, r *http.Request) {
		entries := make([]string, 0, len(order))
		for _, name := range order {
			entries = append(entries, fmt.Sprintf(`{"type":"file","name":%q}`, name))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[" + strings.Join(entries, ",") + "]"))
	})
	mux.HandleFunc("/raw/", func(w http.ResponseWriter, r *http.Request) {
		body, ok := scripts[strings.TrimPrefix(r.URL.Path, "/raw/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, apiRoot string, headless bool) config.Config {
	t.Helper()
	v := config.New()
	v.Set(config.KeyRepoAPIRoot, apiRoot)
	v.Set(config.KeyRepoRawRoot, apiRoot+"/raw")
	v.Set(config.KeyStoreDir, t.TempDir())
	v.Set(config.KeyGitHubToken, "")
	v.Set(config.KeyHeadless, headless)
	v.Set(config.KeyLogLevel, "debug")
	cfg, err := config.Load(v)
	require.NoError(t, err)
	return cfg
}

func newTestContainer(t *testing.T, cfg config.Config, logs *bytes.Buffer) *Container {
	t.Helper()
	opts := Options{Config: cfg, Version: "test"}
	if logs != nil {
		opts.LogOutput = logs
	}
	c, err := NewContainer(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Shutdown(context.Background()) })
	return c
}

func TestNewContainer_Headless(t *testing.T) {
	srv := newRepoServer(t, nil)
	c := newTestContainer(t, testConfig(t, srv.URL, true), &bytes.Buffer{})

	assert.Nil(t, c.Terminal)
	assert.IsType(t, &host.Headless{}, c.Host)
	assert.NotNil(t, c.Loader)
	assert.Equal(t, c.Config.StoreDir, c.KV.Dir())
	assert.Equal(t, "LoaderStates", c.Store.Key())
}

func TestNewContainer_TerminalRoutesLogsToLogPane(t *testing.T) {
	srv := newRepoServer(t, nil)
	c := newTestContainer(t, testConfig(t, srv.URL, false), nil)

	require.NotNil(t, c.Terminal)
	assert.Same(t, c.Terminal, c.Host)

	c.Logger.Info("hello from the loader")

	var found bool
	for _, line := range c.Terminal.Logs() {
		if strings.Contains(line, "hello from the loader") {
			found = true
		}
	}
	assert.True(t, found, "log line should reach the terminal log pane, got %v", c.Terminal.Logs())
}

func TestNewContainer_RejectsInvalidPattern(t *testing.T) {
	srv := newRepoServer(t, nil)
	cfg := testConfig(t, srv.URL, true)
	cfg.ScriptPatterns = []string{"[unterminated"}

	_, err := NewContainer(Options{Config: cfg, LogOutput: &bytes.Buffer{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize components")
}

func TestContainer_RunHeadlessExecutesEnabledModules(t *testing.T) {
	srv := newRepoServer(t, map[string]string{
		"alpha.js": `globalThis.ranAlpha = loader.identifier;`,
		"beta.js":  `globalThis.ranBeta = true;`,
	}, "alpha.js", "beta.js")

	logs := &bytes.Buffer{}
	c := newTestContainer(t, testConfig(t, srv.URL, true), logs)

	stored := extension.NewEnablementMap()
	stored.Set("beta", false)
	require.NoError(t, c.Store.Save(context.Background(), stored))

	require.NoError(t, c.Run(context.Background()))

	alpha, err := c.Runtime.Global("ranAlpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", alpha)

	beta, err := c.Runtime.Global("ranBeta")
	require.NoError(t, err)
	assert.Nil(t, beta, "disabled module must not run")

	assert.Contains(t, logs.String(), "loaded alpha")
}

func TestContainer_RunLogsReload(t *testing.T) {
	srv := newRepoServer(t, nil)

	t.Setenv(process.ReloadEnv, "")
	logs := &bytes.Buffer{}
	c := newTestContainer(t, testConfig(t, srv.URL, true), logs)
	require.NoError(t, c.Run(context.Background()))
	assert.NotContains(t, logs.String(), "reloaded")

	t.Setenv(process.ReloadEnv, "1")
	logs.Reset()
	c = newTestContainer(t, testConfig(t, srv.URL, true), logs)
	require.NoError(t, c.Run(context.Background()))
	assert.Contains(t, logs.String(), "reloaded")
}

func TestContainer_RunHeadlessDiscoveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	c := newTestContainer(t, testConfig(t, srv.URL, true), &bytes.Buffer{})

	var discoveryErr *extension.DiscoveryError
	require.ErrorAs(t, c.Run(context.Background()), &discoveryErr)
}

func TestContainer_ShutdownIsIdempotent(t *testing.T) {
	srv := newRepoServer(t, nil)
	c := newTestContainer(t, testConfig(t, srv.URL, true), &bytes.Buffer{})

	require.NoError(t, c.Shutdown(context.Background()))
	require.NoError(t, c.Shutdown(context.Background()))
}
