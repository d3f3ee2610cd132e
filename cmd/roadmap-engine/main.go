// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the roadmap-engine CLI.
// Implements: prd001-fetch, prd002-parsing, prd003-enrichment,
//             prd004-export (CLI surface).
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/roadmap-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the roadmap-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "roadmap-engine",
	Short: "Extract and enrich roadmap.sh topic data",
	Long: `roadmap-engine fetches roadmap graphs from the developer-roadmap GitHub
repository, extracts topic rows with detected category hierarchy, optionally
enriches each row with model-generated annotations (summary, practice/expert
classification, learning guide), and exports the result to CSV or YAML.

Enrichment is cache-first: results are stored in a local SQLite cache keyed
by each row's content, so re-runs only pay for rows that changed.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./roadmap-engine.yaml or ~/.config/roadmap-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("roadmap-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "roadmap-engine"))
		}
	}

	viper.SetEnvPrefix("ROADMAP_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
