package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sandevgo/ceramicsrag/internal/config"
	"github.com/sandevgo/ceramicsrag/internal/service/ui"
	"github.com/sandevgo/ceramicsrag/pkg/env"
	"github.com/spf13/cobra"
)

var configWrite bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Prints the effective configuration in .env form with secrets redacted.
With --write the configuration, secrets included, is saved to the runtime .env file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		loadEnv(ctx)

		appCfg, err := config.ParseAppConfig()
		if err != nil {
			return err
		}
		provCfg, err := config.ParseProviderConfig()
		if err != nil {
			return err
		}
		idxCfg, err := config.ParseIndexConfig()
		if err != nil {
			return err
		}
		srvCfg, err := config.ParseServerConfig()
		if err != nil {
			return err
		}
		configs := []any{appCfg, provCfg, idxCfg, srvCfg}

		out := cmd.OutOrStdout()
		if !configWrite {
			content, err := env.MarshalEnv(env.Options{Redact: true, IncludeZero: true}, configs...)
			if err != nil {
				return err
			}
			fmt.Fprint(out, content)
			return nil
		}

		if err := writeEnvFile(appCfg.GetEnvPath(), configs...); err != nil {
			return err
		}
		fmt.Fprintln(out, ui.UsageStyle.Render("✓ saved "+appCfg.GetEnvPath()))
		return nil
	},
}

// writeEnvFile saves configs with secrets and zero values. A key missing from
// the file would load as its envDefault, so HISTORY_MAX_TOKENS=0 must be written.
func writeEnvFile(path string, configs ...any) error {
	content, err := env.MarshalEnv(env.Options{IncludeZero: true}, configs...)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create runtime directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func init() {
	configCmd.Flags().BoolVar(&configWrite, "write", false, "save the configuration to the runtime .env file")
	rootCmd.AddCommand(configCmd)
}
