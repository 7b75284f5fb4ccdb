package cmd

import (
	"coverTonic/artwork"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var purgeStale bool

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete artwork from the disk cache",
	Long: `Delete stored artwork. With --stale only artifacts that are unreadable or
do not match the current artwork resolution are removed.

Examples:
  coverTonic purge
  coverTonic purge --stale`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		rt := newCacheStack()

		var (
			removed int
			err     error
		)
		if purgeStale {
			removed, err = artwork.PurgeStale(rt.disk, rt.setting)
		} else {
			removed, err = rt.disk.Purge()
		}
		if err != nil {
			logrus.Fatalf("Failed to purge cache: %v", err)
		}
		logrus.Infof("Removed %d artifacts from %s", removed, rt.cfg.CacheDir)
	},
}

func init() {
	rootCmd.AddCommand(purgeCmd)
	purgeCmd.Flags().BoolVar(&purgeStale, "stale", false, "only remove artifacts that do not match the current resolution")
}
