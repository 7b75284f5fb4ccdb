package cmd

import (
	"context"
	"path/filepath"
	"strings"

	"coverTonic/artwork"
	"coverTonic/mp3"
	"coverTonic/utils"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	embedUPC   string
	embedName  string
	embedForce bool
)

var embedCmd = &cobra.Command{
	Use:   "embed [file]",
	Short: "Embed a work's cover into an MP3 file",
	Long: `Resolve the cover of a work and write it as the front cover of an MP3.

Without --name the album tag (or, failing that, a title derived from the
file name) is used as the display name for the search fallback.

Examples:
  coverTonic embed episode.mp3 --upc 4029759108419
  coverTonic embed episode.mp3 --upc 4029759108419 --force`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		filePath := args[0]

		if err := utils.ValidateMP3File(filePath); err != nil {
			logrus.Fatal(err)
		}

		editor := mp3.NewTagEditor()
		tags, err := editor.ReadTags(filePath)
		if err != nil {
			logrus.Fatalf("Failed to read current tags: %v", err)
		}

		if len(tags.Cover) > 0 && !embedForce {
			logrus.Info("Cover already present (use --force to overwrite)")
			return
		}

		name := embedName
		if name == "" {
			name = strings.TrimSpace(tags.Album)
		}
		if name == "" {
			name = utils.DeriveTitleFromFilename(filePath)
			logrus.Debugf("Derived name from filename: %s", name)
		}

		rt := newCacheStack()
		logrus.Info("Resolving artwork...")
		res := rt.cache.Lookup(context.Background(), artwork.Work, embedUPC, name)
		if res.Image == nil {
			logrus.Warnf("No artwork found for %s", filepath.Base(filePath))
			return
		}
		logrus.Debugf("Artwork from %s tier, %dpx", res.Tier, res.Image.Width)

		if err := editor.EmbedCover(filePath, res.Image.Data); err != nil {
			logrus.Fatalf("Failed to update tags: %v", err)
		}
		logrus.Infof("Successfully updated %s", filepath.Base(filePath))
	},
}

func init() {
	rootCmd.AddCommand(embedCmd)

	embedCmd.Flags().StringVar(&embedUPC, "upc", "", "UPC of the work")
	embedCmd.Flags().StringVar(&embedName, "name", "", "display name for the search fallback")
	embedCmd.Flags().BoolVar(&embedForce, "force", false, "Force overwrite an existing cover")

	embedCmd.MarkFlagRequired("upc")
}
