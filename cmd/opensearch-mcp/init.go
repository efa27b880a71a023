package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/config"
)

// configInitCmd walks through an interactive form and writes a starter
// configuration file.
func configInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, _ := cmd.Flags().GetString("output")

			cfg := config.Config{}
			cfg.OpenSearch.URL = "https://localhost:9200"
			var (
				denied   string
				allowed  string
				useAuth  bool
				insecure bool
			)

			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("OpenSearch URL").
						Value(&cfg.OpenSearch.URL),
					huh.NewConfirm().
						Title("Use basic authentication?").
						Value(&useAuth),
					huh.NewConfirm().
						Title("Skip TLS certificate verification?").
						Description("Only for development clusters.").
						Value(&insecure),
				),
				huh.NewGroup(
					huh.NewInput().
						Title("Username").
						Value(&cfg.OpenSearch.Username),
					huh.NewInput().
						Title("Password").
						EchoMode(huh.EchoModePassword).
						Value(&cfg.OpenSearch.Password),
				).WithHideFunc(func() bool { return !useAuth }),
				huh.NewGroup(
					huh.NewInput().
						Title("Allowed index patterns").
						Description("Comma-separated globs or regex: patterns. Empty allows all.").
						Value(&allowed),
					huh.NewInput().
						Title("Denied index patterns").
						Description("Comma-separated. Denials win over allows.").
						Value(&denied),
				),
			)
			if err := form.Run(); err != nil {
				return err
			}

			cfg.OpenSearch.InsecureSkipTLSVerify = insecure
			cfg.IndexSecurity.AllowedIndexPatterns = splitPatterns(allowed)
			cfg.IndexSecurity.DeniedIndexPatterns = splitPatterns(denied)

			if err := config.Validate(&cfg); err != nil {
				return err
			}

			data, err := yaml.Marshal(&cfg)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "opensearch-mcp.yaml", "Where to write the configuration")
	return cmd
}

func splitPatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
