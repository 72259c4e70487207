package config

import "time"

// Config holds the application configuration.
type Config struct {
	DataPath string      `yaml:"data_path"`
	Bucket   string      `yaml:"bucket"`
	Serve    ServeConfig `yaml:"serve"`
	Proxy    ProxyConfig `yaml:"proxy"`
	Log      LogConfig   `yaml:"log"`
}

// ServeConfig holds mock server settings.
type ServeConfig struct {
	Addr       string        `yaml:"addr"`
	Port       int           `yaml:"port"`
	Latency    time.Duration `yaml:"latency"`
	CORSOrigin string        `yaml:"cors_origin"`
}

// ProxyConfig holds the outbound proxy used by captures.
type ProxyConfig struct {
	URL     string `yaml:"url"`
	NoProxy string `yaml:"no_proxy"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DataPath: "./data",
		Bucket:   "json_data",
		Serve: ServeConfig{
			Addr: "127.0.0.1",
			Port: 3000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
