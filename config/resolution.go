package config

import (
	"sync/atomic"

	"coverTonic/artwork"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// ResolutionSetting is the live artwork resolution. It implements
// artwork.SizePolicy and can be changed at any time, by Set or by an edit
// of the watched config file.
type ResolutionSetting struct {
	current atomic.Value // artwork.Resolution
}

func NewResolutionSetting(initial artwork.Resolution) *ResolutionSetting {
	s := &ResolutionSetting{}
	s.current.Store(initial)
	return s
}

func (s *ResolutionSetting) Resolution() artwork.Resolution {
	return s.current.Load().(artwork.Resolution)
}

func (s *ResolutionSetting) Set(r artwork.Resolution) {
	s.current.Store(r)
}

func (s *ResolutionSetting) TargetWidth() int {
	return s.Resolution().Width()
}

// Apply updates the setting from a raw config value. Invalid values are
// logged and leave the setting unchanged.
func (s *ResolutionSetting) Apply(raw string) {
	r, err := artwork.ParseResolution(raw)
	if err != nil {
		logrus.Warnf("Ignoring artwork resolution change: %v", err)
		return
	}
	if prev := s.Resolution(); prev != r {
		logrus.Infof("Artwork resolution changed: %s -> %s", prev, r)
		s.Set(r)
	}
}

// Watch keeps s in sync with artwork_resolution in the config file viper
// loaded. It is a no-op when no config file is in use.
func (s *ResolutionSetting) Watch() {
	if viper.ConfigFileUsed() == "" {
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		logrus.Debugf("Config file changed: %s", e.Name)
		s.Apply(viper.GetString("artwork_resolution"))
	})
	viper.WatchConfig()
}
