package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watch reloads the user config file on change and calls fn with the new
// values. Used to adjust the engine's pacing knob while a session runs.
// The watcher runs until the process exits; a config that fails to reload
// is skipped and the previous values stay in effect.
func Watch(fn func(*Config)) error {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		// Nothing to watch without a config file.
		return nil
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg := &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			return
		}
		cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
		fn(cfg)
	})
	v.WatchConfig()

	return nil
}
