// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paperfeed CLI.
// See docs/ARCHITECTURE.md § CLI Surface.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/amitness/paperfeed/internal/secrets"
	"github.com/amitness/paperfeed/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const defaultUserAgent = "paperfeed/0.1"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if non-empty, else the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the paperfeed CLI.
var rootCmd = &cobra.Command{
	Use:   "paperfeed",
	Short: "Static Bluesky feed generator for ML research papers",
	Long: `paperfeed builds a static Bluesky feed of machine-learning research
papers. Each run pulls posts from a configured source feed, optionally keeps
only posts linking ML preprints or paper venues, ranks them by a time-decayed
engagement score, and writes the feed-generator protocol documents for static
hosting.

The generate subcommand is the periodic batch run; publish registers the feed
record with the network once.`,
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paperfeed.yaml or ~/.config/paperfeed/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paperfeed")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paperfeed"))
		}
	}

	viper.SetEnvPrefix("PAPERFEED")
	// Nested keys map to underscore-form variables, e.g. site.domain
	// reads PAPERFEED_SITE_DOMAIN.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("bluesky.host", "https://bsky.social")
	viper.SetDefault("bluesky.timeout", 100*time.Second)
	viper.SetDefault("bluesky.page_size", 100)
	viper.SetDefault("bluesky.pages", 3)

	viper.SetDefault("classify.timeout", 30*time.Second)
	viper.SetDefault("classify.workers", 8)
	viper.SetDefault("classify.allowed_categories", []string{"cs.AI", "cs.CL", "cs.CV", "cs.MA"})

	viper.SetDefault("filter.enabled", false)
	viper.SetDefault("filter.denied_authors", []string{
		"arxiv-cs-",
		"arxiv-stat-",
		"paperposterbot.bsky.social",
		"optb0t.bsky.social",
		"ericzzj.bsky.social",
	})
	viper.SetDefault("filter.keywords", []string{"aclweb.org", "aclanthology.org"})

	viper.SetDefault("rank.gravity", 2.5)
	viper.SetDefault("rank.max_age_hours", 12.0)

	viper.SetDefault("site.output_dir", "_site")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// httpConfig reads the shared HTTP settings for one config section.
func httpConfig(section string) types.HTTPConfig {
	userAgent := viper.GetString(section + ".user_agent")
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return types.HTTPConfig{
		Timeout:      viper.GetDuration(section + ".timeout"),
		UserAgent:    userAgent,
		MaxRetries:   viper.GetInt(section + ".max_retries"),
		RetryWaitMin: viper.GetDuration(section + ".retry_wait_min"),
		RetryWaitMax: viper.GetDuration(section + ".retry_wait_max"),
	}
}

// loadConfig builds the immutable run configuration from viper, the
// environment, and the secrets directory. Components receive it
// explicitly; nothing reads settings ambiently after this point.
func loadConfig() types.Config {
	return types.Config{
		Bluesky: types.BlueskyConfig{
			HTTPConfig: httpConfig("bluesky"),
			Host:       viper.GetString("bluesky.host"),
			Handle:     viper.GetString("bluesky.handle"),
			Password:   secretDefault("bluesky-app-password", os.Getenv("BLUESKY_APP_PASSWORD")),
			SourceFeed: viper.GetString("bluesky.source_feed"),
			PageSize:   viper.GetInt64("bluesky.page_size"),
			Pages:      viper.GetInt("bluesky.pages"),
		},
		Classify: types.ClassifyConfig{
			HTTPConfig:        httpConfig("classify"),
			AllowedCategories: viper.GetStringSlice("classify.allowed_categories"),
			Workers:           viper.GetInt("classify.workers"),
		},
		Filter: types.FilterConfig{
			Enabled:       viper.GetBool("filter.enabled"),
			DeniedAuthors: viper.GetStringSlice("filter.denied_authors"),
			Keywords:      viper.GetStringSlice("filter.keywords"),
		},
		Rank: types.RankConfig{
			Gravity:     viper.GetFloat64("rank.gravity"),
			MaxAgeHours: viper.GetFloat64("rank.max_age_hours"),
		},
		Site: types.SiteConfig{
			Domain:     viper.GetString("site.domain"),
			ServiceDID: viper.GetString("site.service_did"),
			FeedURI:    viper.GetString("site.feed_uri"),
			OutputDir:  viper.GetString("site.output_dir"),
		},
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
