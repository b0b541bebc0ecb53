// Package commands provides the CLI commands for chatter.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	ai "github.com/spetersoncode/chatter"
	"github.com/spetersoncode/chatter/config"
	"github.com/spetersoncode/chatter/internal/logging"
	"github.com/spetersoncode/chatter/permission"
	"github.com/spetersoncode/chatter/provider/anthropic"
	"github.com/spetersoncode/chatter/provider/google"
	"github.com/spetersoncode/chatter/provider/ollama"
	"github.com/spetersoncode/chatter/provider/openai"
	"github.com/spetersoncode/chatter/tool"
)

// Version is set at build time.
var Version = "0.1.0"

var (
	cfgPath  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "chatter",
	Short: "Interactive terminal client for LLM chat with guarded file tools",
	Long: `chatter is an interactive terminal client for large language models.

It streams responses token by token, persists conversations as JSON
sessions, and can hand the model a set of file tools (read, write,
update, search, list, inspect) that only operate inside directories you
explicitly allow.

Run 'chatter chat' to start an interactive session.`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG|INFO|WARN|ERROR)")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(mcpCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads the configuration honoring the --config flag, then
// initializes logging from it.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgPath != "" {
		cfg, err = config.LoadFile(cfgPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	logging.Init(logging.Config{
		Level:  logging.ParseLevel(level),
		Output: os.Stderr,
		Pretty: true,
	})
	return cfg, nil
}

// newProvider builds the chat provider named in the configuration.
func newProvider(ctx context.Context, cfg *config.Config, name ai.Provider) (ai.ChatProvider, error) {
	switch name {
	case ai.ProviderGoogle:
		key := cfg.APIKey(name)
		if key == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is not set")
		}
		return google.New(ctx, key)
	case ai.ProviderOllama:
		var opts []ollama.ClientOption
		if cfg.Ollama.Endpoint != "" {
			opts = append(opts, ollama.WithBaseURL(cfg.Ollama.Endpoint))
		}
		return ollama.New(opts...), nil
	case ai.ProviderAnthropic:
		key := cfg.APIKey(name)
		if key == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
		}
		return anthropic.New(key), nil
	case ai.ProviderOpenAI:
		key := cfg.APIKey(name)
		if key == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		return openai.New(key), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

// buildGuard creates the permission guard from the agent configuration.
// With no configured roots the current working directory is allowed, so
// enabling agent mode in a project directory works out of the box.
func buildGuard(cfg *config.Config) (*permission.Guard, error) {
	g := permission.NewGuard()

	roots := cfg.Agent.AllowedPaths
	if len(roots) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		roots = []string{cwd}
	}
	for _, root := range roots {
		if err := g.Allow(root); err != nil {
			return nil, fmt.Errorf("allow %s: %w", root, err)
		}
	}
	for _, root := range cfg.Agent.ForbiddenPaths {
		if err := g.Forbid(root); err != nil {
			return nil, fmt.Errorf("forbid %s: %w", root, err)
		}
	}
	g.SetEnabled(cfg.Agent.Enabled)
	return g, nil
}

// buildRegistry registers the guarded tool set with options from the
// agent configuration. The returned Mode toggles dry-run at runtime.
func buildRegistry(cfg *config.Config, g *permission.Guard) (*tool.Registry, *tool.Mode, error) {
	mode := &tool.Mode{}
	mode.SetDryRun(cfg.Agent.DryRun)
	fileOpts := []tool.FileToolOption{tool.WithMode(mode)}
	if len(cfg.Agent.AllowedExtensions) > 0 {
		fileOpts = append(fileOpts, tool.WithAllowedExtensions(cfg.Agent.AllowedExtensions...))
	}
	if cfg.Agent.MaxFileSize > 0 {
		fileOpts = append(fileOpts, tool.WithMaxFileSize(cfg.Agent.MaxFileSize))
	}

	registry := tool.NewRegistry()
	if err := tool.RegisterAgentTools(registry, g, fileOpts, nil); err != nil {
		return nil, nil, err
	}
	return registry, mode, nil
}
