package cmd

import (
	"fmt"

	"coverTonic/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the configuration",
}

var configSetCmd = &cobra.Command{
	Use:   "set resolution <small|normal|big>",
	Short: "Change a persisted setting",
	Long: `Write a setting to the config file. A running coverTonic that watches
the same file (tui, warm) picks up a new resolution without restarting.

Examples:
  coverTonic config set resolution big`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if args[0] != "resolution" {
			logrus.Fatalf("Unknown setting: %s", args[0])
		}
		path, err := config.SetResolution(args[1])
		if err != nil {
			logrus.Fatalf("Failed to set resolution: %v", err)
		}
		logrus.Infof("Artwork resolution set to %s in %s", args[1], path)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path, err := config.ConfigFile()
		if err != nil {
			logrus.Fatal(err)
		}
		fmt.Println(path)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
}
