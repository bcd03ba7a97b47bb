package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the collector daemon configuration.
type Config struct {
	HTTPListen    string        `mapstructure:"http_listen"`
	EnableSwagger bool          `mapstructure:"enable_swagger"`
	DatabasePath  string        `mapstructure:"database"`
	RetentionDays int           `mapstructure:"retention_days"`
	PurgeInterval time.Duration `mapstructure:"purge_interval"`
	ClientSecret  string        `mapstructure:"client_secret"`
	ApiSecret     string        `mapstructure:"api_secret"`
}

// Load reads configuration from file and environment.
func Load(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("memdev-collector")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("/etc/memdev-collector")
	}

	viper.SetDefault("http_listen", ":9560")
	viper.SetDefault("enable_swagger", true)
	viper.SetDefault("database", "memdev.db")
	viper.SetDefault("retention_days", 0)
	viper.SetDefault("purge_interval", "24h")

	viper.SetEnvPrefix("MEMDEV")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
