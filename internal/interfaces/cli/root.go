package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"kilometers.ai/loader/internal/infrastructure/config"
	"kilometers.ai/loader/internal/interfaces/di"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// CLIContainer holds what commands need before the dependency graph exists.
// The graph itself depends on flags, so each command builds it on demand.
type CLIContainer struct {
	Viper        *viper.Viper
	NewContainer func(opts di.Options) (*di.Container, error)
}

// NewCLIContainer returns a container backed by a fresh configuration
func NewCLIContainer() *CLIContainer {
	return &CLIContainer{
		Viper:        config.New(),
		NewContainer: di.NewContainer,
	}
}

// build resolves the configuration and assembles the dependency graph.
// Management commands force headless mode so they never take the screen.
func (c *CLIContainer) build(cmd *cobra.Command, forceHeadless bool) (*di.Container, error) {
	cfg, err := config.Load(c.Viper)
	if err != nil {
		return nil, err
	}
	if forceHeadless {
		cfg.Headless = true
	}

	opts := di.Options{Config: cfg, Version: Version}
	if cfg.Headless {
		opts.LogOutput = cmd.ErrOrStderr()
	}
	return c.NewContainer(opts)
}

// flagBinding maps a persistent flag onto a configuration key
type flagBinding struct {
	flag string
	key  string
}

var persistentBindings = []flagBinding{
	{"log-level", config.KeyLogLevel},
	{"log-json", config.KeyLogJSON},
	{"headless", config.KeyHeadless},
	{"owner", config.KeyRepoOwner},
	{"repo", config.KeyRepoName},
	{"branch", config.KeyRepoBranch},
	{"path", config.KeyRepoPath},
	{"api-root", config.KeyRepoAPIRoot},
	{"raw-root", config.KeyRepoRawRoot},
	{"data-dir", config.KeyStoreDir},
	{"exec-timeout", config.KeyExecTimeout},
}

// NewRootCommand RootCommand represents the base command when called without any subcommands
func NewRootCommand(container *CLIContainer) *cobra.Command {
	runCmd := NewRunCommand(container)

	var rootCmd = &cobra.Command{
		Use:   "km-loader",
		Short: "Remote extension loader",
		Long: `km-loader discovers script extensions published in a GitHub repository
directory, lets you enable or disable each one, and runs the enabled ones.

Without a subcommand it behaves like "km-loader run".`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			return config.ReadFile(container.Viper, configPath)
		},
		RunE: runCmd.RunE,
	}

	// Set custom version template
	rootCmd.SetVersionTemplate(versionText("{{.Name}}", "{{.Version}}"))

	// Add persistent flags
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file path (default is "+config.DefaultConfigDir()+"/config.yaml)")
	flags.String("log-level", "", "Log level (trace|debug|info|warn|error|off)")
	flags.Bool("log-json", false, "Write logs as JSON")
	flags.Bool("headless", false, "Run without the terminal UI")
	flags.String("owner", "", "Repository owner")
	flags.String("repo", "", "Repository name")
	flags.String("branch", "", "Repository branch")
	flags.String("path", "", "Directory holding the extensions")
	flags.String("api-root", "", "GitHub API root URL")
	flags.String("raw-root", "", "Base URL extension sources are fetched from")
	flags.String("data-dir", "", "Directory the enablement state is stored in")
	flags.Duration("exec-timeout", 0, "Interrupt a module running longer than this")

	// Bind flags to Viper
	for _, b := range persistentBindings {
		_ = container.Viper.BindPFlag(b.key, flags.Lookup(b.flag))
	}

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(NewListCommand(container))
	rootCmd.AddCommand(NewEnableCommand(container))
	rootCmd.AddCommand(NewDisableCommand(container))
	rootCmd.AddCommand(NewResetCommand(container))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// goVersion returns the Go version used to build the binary
func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

func versionText(name, version string) string {
	return fmt.Sprintf("%s version %s\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		name, version, BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context, container *CLIContainer) {
	rootCmd := NewRootCommand(container)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
