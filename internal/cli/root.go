package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/docattest/claimcheck/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "claimcheck",
	Short: "claimcheck - byte-offset claim verification for documents",
	Long: `claimcheck verifies claims of the form "this exact substring occurs at
this exact byte offset in this document".

It does not parse, render, or interpret document content: the document
is an opaque byte sequence, and a claim either matches at its stated
offset or it does not.

A claim that fails validation (bad offset, bad page number, empty
input) is rejected with a typed reason. A well-formed claim whose
substring is absent at the offset is simply "not verified" - that is a
normal outcome, not an error.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for claimcheck.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("claimcheck v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.claimcheck/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".claimcheck"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CLAIMCHECK_*
	viper.SetEnvPrefix("CLAIMCHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Register every config key as a default so env overrides are
	// visible to Unmarshal even without a config file.
	var defaults map[string]any
	if data, err := yaml.Marshal(model.DefaultConfig()); err == nil {
		if yaml.Unmarshal(data, &defaults) == nil {
			for key, value := range defaults {
				viper.SetDefault(key, value)
			}
		}
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadBaseConfig resolves defaults, then the config file, then
// CLAIMCHECK_* environment variables. Commands layer their flags on
// top, so the precedence is flag > env > file > default.
func loadBaseConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if err := viper.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = defaultCacheDir()
	}
	return cfg, nil
}

// defaultCacheDir resolves the disk cache location under the user's home.
func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "claimcheck-cache")
	}
	return filepath.Join(home, ".claimcheck", "cache")
}
