package cmd

import (
	"coverTonic/batch"
	"coverTonic/tui"
	"coverTonic/utils"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	tuiFile        string
	tuiConcurrency int
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Warm the cache in an interactive terminal UI",
	Run: func(cmd *cobra.Command, args []string) {
		entities, err := utils.ReadEntityList(tuiFile)
		if err != nil {
			logrus.Fatalf("Failed to read entity list: %v", err)
		}
		rt := newCacheStack()
		if err := tui.Run(rt.cache, entities, tuiConcurrency); err != nil {
			logrus.Fatalf("TUI exited with error: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().StringVar(&tuiFile, "file", "", "tab-separated entity list")
	tuiCmd.Flags().IntVar(&tuiConcurrency, "concurrency", batch.DefaultConcurrency, "number of parallel lookups")

	tuiCmd.MarkFlagRequired("file")
}
