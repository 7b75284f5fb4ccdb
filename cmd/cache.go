package cmd

import (
	"time"

	"coverTonic/artwork"
	"coverTonic/catalog"
	"coverTonic/config"

	"github.com/sirupsen/logrus"
)

type cacheStack struct {
	cfg     *config.Config
	setting *config.ResolutionSetting
	disk    *artwork.DiskStore
	cache   *artwork.ImageCache
}

// newCacheStack builds the cache stack from config. Unusable configuration
// is fatal, as for every command.
func newCacheStack() *cacheStack {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Debugf("Failed to load config, using defaults: %v", err)
		cfg = config.DefaultConfig()
		if cfg.CacheDir, err = config.DefaultCacheDir(); err != nil {
			logrus.Fatal(err)
		}
	}
	if resolutionFlag != "" {
		cfg.ArtworkResolution = resolutionFlag
	}
	if err := config.ValidateConfig(cfg); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	resolution, _ := artwork.ParseResolution(cfg.ArtworkResolution)
	setting := config.NewResolutionSetting(resolution)
	if resolutionFlag == "" {
		setting.Watch()
	}

	disk, err := artwork.OpenDiskStore(cfg.CacheDir)
	if err != nil {
		logrus.Fatal(err)
	}
	memory, err := artwork.NewMemoryStore(cfg.MemoryCapacity)
	if err != nil {
		logrus.Fatal(err)
	}

	client := catalog.NewClient(catalog.Options{
		BaseURL:           cfg.CatalogURL,
		Country:           cfg.Country,
		Timeout:           time.Duration(cfg.RequestTimeout) * time.Second,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})

	cache := artwork.New(artwork.Options{
		Memory:  memory,
		Disk:    disk,
		Remote:  artwork.NewRemoteResolver(client, setting, nil),
		Policy:  setting,
		Timeout: time.Duration(cfg.ResolveTimeout) * time.Second,
	})

	logrus.Debugf("Cache directory: %s, resolution: %s (%dpx)", cfg.CacheDir, setting.Resolution(), setting.TargetWidth())

	return &cacheStack{cfg: cfg, setting: setting, disk: disk, cache: cache}
}
