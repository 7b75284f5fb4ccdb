package cmd

import (
	"context"
	"os"
	"os/signal"

	"coverTonic/artwork"
	"coverTonic/batch"
	"coverTonic/utils"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	warmFile        string
	warmConcurrency int
)

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Resolve artwork for a list of works and series",
	Long: `Resolve artwork for every entity in a list file, filling the disk cache.

The file holds one entity per line: class, id and an optional display name,
separated by tabs. Lines starting with # are ignored.

Examples:
  coverTonic warm --file library.tsv
  coverTonic warm --file library.tsv --concurrency 4 --resolution big`,
	Run: func(cmd *cobra.Command, args []string) {
		entities, err := utils.ReadEntityList(warmFile)
		if err != nil {
			logrus.Fatalf("Failed to read entity list: %v", err)
		}
		if len(entities) == 0 {
			logrus.Info("No entities found")
			return
		}

		logrus.Infof("Found %d entities to resolve", len(entities))

		rt := newCacheStack()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		summary := batch.Run(ctx, rt.cache, entities, warmConcurrency, func(o batch.Outcome) {
			if o.Result.Image == nil {
				logrus.Warnf("No artwork: %s", o.Entity.Label())
				return
			}
			logrus.Debugf("Resolved %s from %s", o.Entity.Label(), o.Result.Tier)
		})

		stats := rt.cache.Stats()
		logrus.Infof("Warm complete: total=%d memory=%d disk=%d remote=%d missing=%d",
			summary.Total,
			summary.ByTier[artwork.TierMemory],
			summary.ByTier[artwork.TierDisk],
			summary.ByTier[artwork.TierRemote],
			summary.Missing)
		logrus.Debugf("Cache stats: %+v", stats)
	},
}

func init() {
	rootCmd.AddCommand(warmCmd)

	warmCmd.Flags().StringVar(&warmFile, "file", "", "tab-separated entity list")
	warmCmd.Flags().IntVar(&warmConcurrency, "concurrency", batch.DefaultConcurrency, "number of parallel lookups")

	warmCmd.MarkFlagRequired("file")
}
