package conf

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/gatherly/gatherly/internal/pkg/notify"
	"github.com/gatherly/gatherly/pkg/cache"
	"github.com/gatherly/gatherly/pkg/database"
	"github.com/gatherly/gatherly/pkg/http"
	"github.com/gatherly/gatherly/pkg/log"
	"github.com/spf13/viper"
)

// QueueConfig background queue settings
type QueueConfig struct {
	Enable          bool
	Concurrency     int
	MaxRetry        int
	ShutdownTimeout int
}

type AppConfig struct {
	Log      log.Conf
	Http     http.Http
	Database database.Database
	Redis    cache.Redis
	Push     notify.PushConf
	Sms      notify.SmsConf
	Queue    QueueConfig
}

var (
	cfg  AppConfig
	once sync.Once
)

func NewConf(confFile string) AppConfig {
	once.Do(func() {
		var err error
		cfg, err = LoadConfigFile(confFile)
		if err != nil {
			panic(fmt.Sprintf("load config file error: %s", err))
		}
	})
	return cfg
}

// LoadConfigFile reads the TOML config and re-reads it on change.
func LoadConfigFile(confFile string) (AppConfig, error) {
	config := viper.New()
	config.SetConfigFile(confFile)
	if err := config.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("failed to read configuration file: %v", err)
	}

	config.WatchConfig()
	config.OnConfigChange(func(e fsnotify.Event) {
		log.Infof("configuration changed, reloading: %s", e.Name)
		if err := config.Unmarshal(&cfg); err != nil {
			log.Errorf("failed to unmarshal configuration file: %v", err)
		}
	})
	if err := config.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal configuration file: %v", err)
	}
	log.Infow("config file loaded",
		"path", confFile,
	)

	return cfg, nil
}
