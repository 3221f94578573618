package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/docattest/claimcheck/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage claimcheck configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file to ~/.claimcheck/config.yaml",
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := model.DefaultConfig()
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = defaultCacheDir()
	}

	if used := viper.ConfigFileUsed(); used != "" {
		data, err := os.ReadFile(used)
		if err != nil {
			return fmt.Errorf("read config %s: %w", used, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", used, err)
		}
		fmt.Fprintf(os.Stderr, "Config file: %s\n\n", used)
	} else {
		fmt.Fprintln(os.Stderr, "No config file found, showing defaults")
		fmt.Fprintln(os.Stderr)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	fmt.Print(string(data))
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}

	dir := filepath.Join(home, ".claimcheck")
	path := filepath.Join(dir, "config.yaml")

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	cfg := model.DefaultConfig()
	cfg.Cache.Dir = filepath.Join(dir, "cache")

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Wrote default config to %s\n", path)
	return nil
}
