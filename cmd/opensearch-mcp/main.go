// Package main is the entry point for the opensearch-mcp CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/config"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "opensearch-mcp",
		Short:         "MCP server exposing OpenSearch cluster introspection tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(versionCmd(), startCmd(), configCmd(), serviceCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("opensearch-mcp %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func startCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the MCP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			transport, _ := cmd.Flags().GetString("transport")
			listen, _ := cmd.Flags().GetString("listen")

			if transport != "stdio" && transport != "http" {
				return fmt.Errorf("unknown transport %q (stdio or http)", transport)
			}

			cfg, cfgPath, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Gateway.Listen = listen
			}

			// On stdio, stdout carries the protocol. Logs go to stderr
			// either way.
			logger := newLogger()

			return runServer(cmd.Context(), cfg, cfgPath, transport, logger)
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	cmd.Flags().StringP("transport", "t", "stdio", "MCP transport: stdio or http")
	cmd.Flags().StringP("listen", "l", "", "HTTP listen address (overrides config)")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate <path>",
		Short: "Validate a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			fmt.Printf("Configuration OK (cluster: %s)\n", cfg.OpenSearch.URL)
			return nil
		},
	})
	cmd.AddCommand(configInitCmd())
	return cmd
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("OPENSEARCH_MCP_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig loads explicit or discovered configuration. With no file
// anywhere, connection settings fall back to environment variables so
// the binary works as a plain MCP stdio server without any setup.
func loadConfig(cfgPath string) (*config.Config, string, error) {
	if cfgPath == "" {
		cfgPath = discoverConfigPath()
	}

	var cfg *config.Config
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return nil, "", err
		}
		cfg = loaded
	} else {
		cfg = &config.Config{}
		cfg.OpenSearch.URL = os.Getenv("OPENSEARCH_URL")
		cfg.OpenSearch.Username = os.Getenv("OPENSEARCH_USERNAME")
		cfg.OpenSearch.Password = os.Getenv("OPENSEARCH_PASSWORD")
	}

	if err := config.Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, cfgPath, nil
}

// discoverConfigPath searches standard locations.
// Search order: $XDG_CONFIG_HOME/opensearch-mcp/config.yaml → ./opensearch-mcp.yaml
func discoverConfigPath() string {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "opensearch-mcp", "config.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "opensearch-mcp", "config.yaml"))
	}
	candidates = append(candidates, "opensearch-mcp.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
