package cmd

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile        string
	verbose        bool
	resolutionFlag string
)

var rootCmd = &cobra.Command{
	Use:   "coverTonic",
	Short: "Resolve and cache cover artwork for catalog works and series",
	Long: `coverTonic resolves cover artwork for works (albums, by UPC) and
series (artists, by catalog id) and keeps it in a memory and disk cache
sized to the configured artwork resolution.

Examples:
  coverTonic resolve work 4029759108419 --name "Folge 1: Der Super-Papagei" --out cover.jpg
  coverTonic warm --file library.tsv
  coverTonic status
  coverTonic purge --stale
  coverTonic embed episode.mp3 --upc 4029759108419`,
	Version: "1.0.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.coverTonic.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&resolutionFlag, "resolution", "", "artwork resolution override: small, normal or big")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".coverTonic")
	}

	viper.SetEnvPrefix("COVERTONIC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Println("Using config file:", viper.ConfigFileUsed())
		}
	}

	level, err := logrus.ParseLevel(viper.GetString("log_level"))
	if err != nil {
		level = logrus.InfoLevel
	}
	if verbose {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)
}
