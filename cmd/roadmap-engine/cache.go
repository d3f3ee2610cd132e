// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/roadmap-engine/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the enrichment cache",
	Long: `Cache manages the local SQLite database that stores enrichment results.
Entries are keyed by a content hash of each row's category, subcategory,
topic, and description, so re-running enrichment only pays for rows whose
content changed.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the number of cached entries and the latest write time",
	RunE:  runCacheStats,
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	store, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	count, latest, err := store.Stats(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("entries: %d\n", count)
	if latest.IsZero() {
		fmt.Println("latest:  never")
	} else {
		fmt.Printf("latest:  %s\n", latest.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached enrichment result",
	Long: `Clear removes all entries from the enrichment cache. The next enrichment
run will re-generate annotations for every row.`,
	RunE: runCacheClear,
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Clear(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("cleared %d entries\n", n)
	return nil
}

func openCache(cmd *cobra.Command) (*cache.Store, error) {
	dir, _ := cmd.Flags().GetString("cache-dir")
	return cache.NewStore(dir)
}

func init() {
	cacheCmd.PersistentFlags().String("cache-dir", ".cache", "directory for the enrichment cache database")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	rootCmd.AddCommand(cacheCmd)
}
