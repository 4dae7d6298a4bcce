package model

import "time"

// Config holds every tunable of the extractor, the batch runner and the
// HTTP service. Field tags serve both viper (mapstructure) and yaml output.
type Config struct {
	Extraction  ExtractionConfig  `yaml:"extraction" mapstructure:"extraction"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// ExtractionConfig tunes the field resolvers
type ExtractionConfig struct {
	// PreviewRunes is how much normalized text is echoed back as textPreview
	PreviewRunes int `yaml:"preview_runes" mapstructure:"preview_runes"`
	// DefaultIPCFrequency is used when an IPC clause states no period (1 or 3)
	DefaultIPCFrequency int `yaml:"default_ipc_frequency" mapstructure:"default_ipc_frequency"`
	// DecodeTimeout bounds the PDF/DOCX decode step
	DecodeTimeout time.Duration `yaml:"decode_timeout" mapstructure:"decode_timeout"`
	// MaxFileBytes rejects larger inputs before decoding
	MaxFileBytes int64 `yaml:"max_file_bytes" mapstructure:"max_file_bytes"`
}

// CacheConfig controls the extraction result cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls batch parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ServerConfig controls the HTTP extraction service
type ServerConfig struct {
	Addr              string        `yaml:"addr" mapstructure:"addr"`
	RequestTimeout    time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
}

// LogConfig controls the structured logger
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	JSON  bool   `yaml:"json" mapstructure:"json"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			PreviewRunes:        800,
			DefaultIPCFrequency: 3,
			DecodeTimeout:       90 * time.Second,
			MaxFileBytes:        20 << 20,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Server: ServerConfig{
			Addr:              ":8001",
			RequestTimeout:    90 * time.Second,
			RequestsPerSecond: 2,
			Burst:             5,
		},
		Log: LogConfig{
			Level: "info",
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
