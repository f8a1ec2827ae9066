package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // market timezone must resolve on minimal images

	"github.com/newthinker/swingscan/internal/core"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type Config struct {
	Universe  UniverseConfig  `mapstructure:"universe"`
	Collector CollectorConfig `mapstructure:"collector"`
	Batch     BatchConfig     `mapstructure:"batch"`
	Output    OutputConfig    `mapstructure:"output"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
	Log       LogConfig       `mapstructure:"log"`
}

// UniverseConfig locates the ticker list.
type UniverseConfig struct {
	Path       string `mapstructure:"path"`
	CodeColumn string `mapstructure:"code_column"`
	NameColumn string `mapstructure:"name_column"`
}

// CollectorConfig selects and tunes the market data provider.
type CollectorConfig struct {
	Provider     string        `mapstructure:"provider"` // "yahoo" or "localcsv"
	SymbolSuffix string        `mapstructure:"symbol_suffix"`
	Timezone     string        `mapstructure:"timezone"`
	LookbackDays int           `mapstructure:"lookback_days"`
	Timeout      time.Duration `mapstructure:"timeout"`
	BaseURL      string        `mapstructure:"base_url"`
	Dir          string        `mapstructure:"dir"` // For localcsv
}

type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

type OutputConfig struct {
	Key          string `mapstructure:"key"`
	Header       string `mapstructure:"header"` // "en" or "ja"
	ArchiveDaily bool   `mapstructure:"archive_daily"`
}

type StorageConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"` // node_exporter textfile path; empty disables
}

// ScheduleConfig holds the cron expression for the schedule command.
type ScheduleConfig struct {
	Cron string `mapstructure:"cron"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file on top of Defaults
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.SetEnvPrefix("SWINGSCAN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v, Defaults())

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("universe.path", d.Universe.Path)
	v.SetDefault("universe.code_column", d.Universe.CodeColumn)
	v.SetDefault("universe.name_column", d.Universe.NameColumn)
	v.SetDefault("collector.provider", d.Collector.Provider)
	v.SetDefault("collector.symbol_suffix", d.Collector.SymbolSuffix)
	v.SetDefault("collector.timezone", d.Collector.Timezone)
	v.SetDefault("collector.lookback_days", d.Collector.LookbackDays)
	v.SetDefault("collector.timeout", d.Collector.Timeout)
	v.SetDefault("batch.workers", d.Batch.Workers)
	v.SetDefault("output.key", d.Output.Key)
	v.SetDefault("output.header", d.Output.Header)
	v.SetDefault("storage.type", d.Storage.Type)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.s3.bucket", d.Storage.S3.Bucket)
	v.SetDefault("storage.s3.region", d.Storage.S3.Region)
	v.SetDefault("storage.s3.access_key", d.Storage.S3.AccessKey)
	v.SetDefault("storage.s3.secret_key", d.Storage.S3.SecretKey)
	v.SetDefault("schedule.cron", d.Schedule.Cron)
	v.SetDefault("log.level", d.Log.Level)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Universe: UniverseConfig{
			Path:       "meigara_400.csv",
			CodeColumn: "銘柄コード",
			NameColumn: "銘柄名",
		},
		Collector: CollectorConfig{
			Provider:     "yahoo",
			SymbolSuffix: ".T",
			Timezone:     "Asia/Tokyo",
			LookbackDays: 1100,
			Timeout:      30 * time.Second,
		},
		Batch: BatchConfig{
			Workers: 1,
		},
		Output: OutputConfig{
			Key:    "jpx400.csv",
			Header: "en",
		},
		Storage: StorageConfig{
			Type: "s3",
			Path: "./out",
			S3: S3Config{
				Bucket: "swing-trade-data",
				Region: "ap-northeast-1",
			},
		},
		Schedule: ScheduleConfig{
			// after the Tokyo close, weekdays
			Cron: "30 16 * * 1-5",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Location resolves the market timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Collector.Timezone)
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("timezone %q: %w", c.Collector.Timezone, err))
	}
	return loc, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Universe.Path == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("universe.path required"))
	}

	// Collector validation
	switch c.Collector.Provider {
	case "yahoo":
	case "localcsv":
		if c.Collector.Dir == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("collector.dir required when provider is localcsv"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown collector provider %q", c.Collector.Provider))
	}
	if c.Collector.LookbackDays < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("lookback_days must be positive, got %d", c.Collector.LookbackDays))
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Batch.Workers < 1 || c.Batch.Workers > 64 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("workers must be between 1 and 64, got %d", c.Batch.Workers))
	}

	// Output validation
	if c.Output.Key == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("output.key required"))
	}
	if c.Output.Header != "" && c.Output.Header != "en" && c.Output.Header != "ja" {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("output.header must be en or ja, got %q", c.Output.Header))
	}

	// Storage validation
	switch c.Storage.Type {
	case "localfs":
		if c.Storage.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("storage.path required when type is localfs"))
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when type is s3"))
		}
		if c.Storage.S3.AccessKey == "" || c.Storage.S3.SecretKey == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 access_key and secret_key required when type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown storage type %q", c.Storage.Type))
	}

	return nil
}

// ValidateSchedule checks the cron expression used by the schedule command.
func (c *Config) ValidateSchedule() error {
	if c.Schedule.Cron == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("schedule.cron required"))
	}
	if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("schedule.cron: %w", err))
	}
	return nil
}
