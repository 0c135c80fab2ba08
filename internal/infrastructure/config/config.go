package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. KM_LOADER_REPO_OWNER
const EnvPrefix = "KM_LOADER"

// Configuration keys
const (
	KeyRepoOwner      = "repo.owner"
	KeyRepoName       = "repo.name"
	KeyRepoBranch     = "repo.branch"
	KeyRepoPath       = "repo.path"
	KeyRepoAPIRoot    = "repo.api_root"
	KeyRepoRawRoot    = "repo.raw_root"
	KeyGitHubToken    = "github.token"
	KeyScriptPatterns = "scripts.patterns"
	KeyStoreDir       = "store.dir"
	KeyStoreKey       = "store.key"
	KeySectionID      = "settings.section_id"
	KeySettingsTitle  = "settings.title"
	KeyHostInterval   = "poll.host_interval"
	KeyAnchorInterval = "poll.anchor_interval"
	KeyExecTimeout    = "exec.timeout"
	KeyHTTPTimeout    = "http.timeout"
	KeyLogLevel       = "log.level"
	KeyLogJSON        = "log.json"
	KeyHeadless       = "headless"
)

// RepoConfig locates the published extension directory
type RepoConfig struct {
	Owner   string
	Name    string
	Branch  string
	Path    string
	APIRoot string
	RawRoot string
}

// Config is the resolved loader configuration
type Config struct {
	Repo           RepoConfig
	GitHubToken    string
	ScriptPatterns []string

	StoreDir string
	StoreKey string

	SectionID     string
	SettingsTitle string

	HostInterval   time.Duration
	AnchorInterval time.Duration
	ExecTimeout    time.Duration
	HTTPTimeout    time.Duration

	LogLevel string
	LogJSON  bool
	Headless bool
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyRepoOwner, "Alehaaaa")
	v.SetDefault(KeyRepoName, "spicetify-extensions")
	v.SetDefault(KeyRepoBranch, "main")
	v.SetDefault(KeyRepoPath, "extensions/aleha-loader")
	v.SetDefault(KeyRepoAPIRoot, "https://api.github.com")
	v.SetDefault(KeyRepoRawRoot, "")
	v.SetDefault(KeyGitHubToken, "")
	v.SetDefault(KeyScriptPatterns, []string{"*.js"})
	v.SetDefault(KeyStoreDir, "")
	v.SetDefault(KeyStoreKey, "LoaderStates")
	v.SetDefault(KeySectionID, "ale-loader-settings")
	v.SetDefault(KeySettingsTitle, "")
	v.SetDefault(KeyHostInterval, 300*time.Millisecond)
	v.SetDefault(KeyAnchorInterval, 100*time.Millisecond)
	v.SetDefault(KeyExecTimeout, 60*time.Second)
	v.SetDefault(KeyHTTPTimeout, time.Duration(0))
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogJSON, false)
	v.SetDefault(KeyHeadless, false)
}

// New returns a viper instance with defaults and environment bindings
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(KeyGitHubToken, EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN")

	return v
}

// DefaultConfigDir returns the directory searched for config.yaml
func DefaultConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "km-loader")
	}
	return "."
}

// ReadFile merges a config file into v. An explicit path must exist; the
// default location is optional.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load resolves and validates the configuration held by v
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Repo: RepoConfig{
			Owner:   v.GetString(KeyRepoOwner),
			Name:    v.GetString(KeyRepoName),
			Branch:  v.GetString(KeyRepoBranch),
			Path:    strings.Trim(v.GetString(KeyRepoPath), "/"),
			APIRoot: strings.TrimRight(v.GetString(KeyRepoAPIRoot), "/"),
			RawRoot: v.GetString(KeyRepoRawRoot),
		},
		GitHubToken:    v.GetString(KeyGitHubToken),
		ScriptPatterns: v.GetStringSlice(KeyScriptPatterns),
		StoreDir:       v.GetString(KeyStoreDir),
		StoreKey:       v.GetString(KeyStoreKey),
		SectionID:      v.GetString(KeySectionID),
		SettingsTitle:  v.GetString(KeySettingsTitle),
		HostInterval:   v.GetDuration(KeyHostInterval),
		AnchorInterval: v.GetDuration(KeyAnchorInterval),
		ExecTimeout:    v.GetDuration(KeyExecTimeout),
		HTTPTimeout:    v.GetDuration(KeyHTTPTimeout),
		LogLevel:       strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		LogJSON:        v.GetBool(KeyLogJSON),
		Headless:       v.GetBool(KeyHeadless),
	}

	if cfg.SettingsTitle == "" {
		cfg.SettingsTitle = cfg.Repo.Owner + " Loader"
	}

	if err := NewConfigValidator().Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
