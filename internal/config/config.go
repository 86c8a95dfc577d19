// Package config loads the agent configuration from file and environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	BaseURL string
	Timeout time.Duration
}

type ControlConfig struct {
	ListenAddr     string
	AllowedOrigins []string
}

type SessionConfig struct {
	RecheckInterval time.Duration
	// AllowLegacyAccessWithoutLicense authorizes records that carry an
	// access token but no license code (registrations that predate license
	// tracking).
	AllowLegacyAccessWithoutLicense bool
}

type PanicConfig struct {
	HoldDuration   time.Duration
	OperatorNumber string
}

type MaintenanceConfig struct {
	// PasscodeHash is the argon2id hash gating the wipe operation.
	PasscodeHash string
}

type AppConfig struct {
	Environment string
	DataDir     string
	Server      ServerConfig
	Control     ControlConfig
	Session     SessionConfig
	Panic       PanicConfig
	Maintenance MaintenanceConfig
}

// Load reads config.yaml (working dir or ./config) with VIGIA_* environment
// overrides on top.
func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("VIGIA")
	// Nested keys are set as VIGIA_SECTION_KEY, e.g. VIGIA_SERVER_BASEURL.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("datadir", "./data")

	v.SetDefault("server.baseurl", "https://desit-larufina.selfip.com:5001")
	v.SetDefault("server.timeout", "15s")

	v.SetDefault("control.listenaddr", "127.0.0.1:7677")
	v.SetDefault("control.allowedorigins", "*")

	v.SetDefault("session.recheckinterval", "5m")
	v.SetDefault("session.allowlegacyaccesswithoutlicense", true)

	v.SetDefault("panic.holdduration", "900ms")
	v.SetDefault("panic.operatornumber", "3512260271")
}
