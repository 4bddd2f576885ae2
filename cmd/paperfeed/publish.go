// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/amitness/paperfeed/internal/bluesky"
	"github.com/amitness/paperfeed/internal/httputil"
	"github.com/amitness/paperfeed/internal/publish"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Register the feed-generator record with Bluesky",
	Long: `Publish writes the app.bsky.feed.generator record that makes the feed
discoverable. Feed metadata (record name, display name, description, avatar)
comes from a YAML file. Run once per feed, then set the printed URI as
site.feed_uri for generate runs.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().String("feed-file", "feed.yaml", "feed metadata YAML file")

	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	// Publish runs before a feed URI exists, so only the settings it
	// actually needs are validated here.
	switch {
	case cfg.Bluesky.Handle == "":
		return fmt.Errorf("bluesky.handle is required")
	case cfg.Bluesky.Password == "":
		return fmt.Errorf("bluesky app password is required (set BLUESKY_APP_PASSWORD or .secrets/bluesky-app-password)")
	case cfg.Site.Domain == "" && cfg.Site.ServiceDID == "":
		return fmt.Errorf("site.domain (or site.service_did) is required")
	}

	feedFile, _ := cmd.Flags().GetString("feed-file")
	meta, err := publish.LoadMetadata(feedFile)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := cmd.Context()

	client := bluesky.NewClient(httputil.NewClient(cfg.Bluesky.HTTPConfig, logger), cfg.Bluesky, logger)
	if err := client.Login(ctx); err != nil {
		return err
	}

	p := publish.Publisher{Client: client, Site: cfg.Site}
	_, err = p.Publish(ctx, meta, os.Stdout)
	return err
}
