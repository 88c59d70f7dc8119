package config

import (
	stderrors "errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vango-dev/progressive/internal/errors"
)

// ConfigFileName is the name of the configuration file.
const ConfigFileName = "progressive.json"

// EnvPrefix prefixes every environment override, e.g. PROGRESSIVE_SERVER_PORT.
const EnvPrefix = "PROGRESSIVE"

// Default values.
const (
	DefaultHost            = "localhost"
	DefaultPort            = 9001
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMetricsPath     = "/metrics"
	DefaultWSBufferSize    = 4096
	DefaultPoolSize        = 10
	DefaultChecksum        = "adler32"
	DefaultPublishRegion   = "us-east-1"
)

// Config represents the contents of progressive.json.
type Config struct {
	// Server configures the HTTP rendering server.
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Render configures the rendering engine.
	Render RenderConfig `json:"render" mapstructure:"render"`

	// Publish configures uploads of rendered pages to object storage.
	Publish PublishConfig `json:"publish" mapstructure:"publish"`

	// configPath is the file the config was loaded from, if any.
	configPath string
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Host is the interface to listen on.
	// Default: "localhost"
	Host string `json:"host" mapstructure:"host"`

	// Port is the port to listen on.
	// Default: 9001
	Port int `json:"port" mapstructure:"port"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `json:"shutdown_timeout" mapstructure:"shutdown_timeout"`

	// MetricsPath is where Prometheus metrics are served. Empty disables
	// the endpoint.
	// Default: "/metrics"
	MetricsPath string `json:"metrics_path" mapstructure:"metrics_path"`

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	// Default: 4096
	ReadBufferSize  int `json:"read_buffer_size" mapstructure:"read_buffer_size"`
	WriteBufferSize int `json:"write_buffer_size" mapstructure:"write_buffer_size"`

	// Tracing enables an OpenTelemetry span per render request.
	// Default: false
	Tracing bool `json:"tracing" mapstructure:"tracing"`
}

// RenderConfig configures the renderer.
type RenderConfig struct {
	// PoolSize is the number of idle transactions kept for reuse.
	// Default: 10
	PoolSize int `json:"pool_size" mapstructure:"pool_size"`

	// Checksum selects the checksum algorithm: "adler32" or "xxhash".
	// Default: "adler32"
	Checksum string `json:"checksum" mapstructure:"checksum"`

	// Static renders without identity markers or checksum.
	// Default: false
	Static bool `json:"static" mapstructure:"static"`

	// Header is emitted before the first chunk of every stream,
	// typically "<!DOCTYPE html>".
	Header string `json:"header" mapstructure:"header"`

	// ValidateNesting logs invalid element nesting.
	// Default: false
	ValidateNesting bool `json:"validate_nesting" mapstructure:"validate_nesting"`
}

// PublishConfig configures the S3 publisher.
type PublishConfig struct {
	// Bucket is the target bucket. Publishing is disabled when empty.
	Bucket string `json:"bucket" mapstructure:"bucket"`

	// Prefix is prepended to every object key.
	Prefix string `json:"prefix" mapstructure:"prefix"`

	// Region is the bucket region.
	// Default: "us-east-1"
	Region string `json:"region" mapstructure:"region"`

	// Endpoint overrides the S3 endpoint, e.g. for MinIO.
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ShutdownTimeout: DefaultShutdownTimeout,
			MetricsPath:     DefaultMetricsPath,
			ReadBufferSize:  DefaultWSBufferSize,
			WriteBufferSize: DefaultWSBufferSize,
		},
		Render: RenderConfig{
			PoolSize: DefaultPoolSize,
			Checksum: DefaultChecksum,
		},
		Publish: PublishConfig{
			Region: DefaultPublishRegion,
		},
	}
}

// NewViper returns a viper instance with defaults registered and
// environment overrides enabled. Callers may bind flags to it before
// passing it to Load.
func NewViper() *viper.Viper {
	v := viper.New()
	d := New()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.metrics_path", d.Server.MetricsPath)
	v.SetDefault("server.read_buffer_size", d.Server.ReadBufferSize)
	v.SetDefault("server.write_buffer_size", d.Server.WriteBufferSize)
	v.SetDefault("server.tracing", d.Server.Tracing)
	v.SetDefault("render.pool_size", d.Render.PoolSize)
	v.SetDefault("render.checksum", d.Render.Checksum)
	v.SetDefault("render.static", d.Render.Static)
	v.SetDefault("render.header", d.Render.Header)
	v.SetDefault("render.validate_nesting", d.Render.ValidateNesting)
	v.SetDefault("publish.bucket", d.Publish.Bucket)
	v.SetDefault("publish.prefix", d.Publish.Prefix)
	v.SetDefault("publish.region", d.Publish.Region)
	v.SetDefault("publish.endpoint", d.Publish.Endpoint)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration through v. When path is empty, progressive.json
// is looked up in the working directory and its absence is not an error.
// A nil v is replaced by NewViper().
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = NewViper()
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(ConfigFileName, ".json"))
		v.SetConfigType("json")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return nil, errors.New("C001").
				WithDetail("Failed to read " + displayPath(path)).
				Wrap(err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New("C001").
			WithDetail("Failed to decode " + displayPath(path)).
			Wrap(err)
	}
	cfg.configPath = v.ConfigFileUsed()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func displayPath(path string) string {
	if path == "" {
		return ConfigFileName
	}
	return path
}

// Path returns the file the config was loaded from, or "" when defaults
// and environment were used alone.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in zero values left by a partial file.
func (c *Config) applyDefaults() {
	d := New()
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}
	if c.Server.ReadBufferSize == 0 {
		c.Server.ReadBufferSize = d.Server.ReadBufferSize
	}
	if c.Server.WriteBufferSize == 0 {
		c.Server.WriteBufferSize = d.Server.WriteBufferSize
	}
	if c.Render.Checksum == "" {
		c.Render.Checksum = d.Render.Checksum
	}
	if c.Publish.Region == "" {
		c.Publish.Region = d.Publish.Region
	}
	c.Render.Checksum = strings.ToLower(c.Render.Checksum)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.New("C002").
			WithDetail("server.port must be between 1 and 65535, got " + strconv.Itoa(c.Server.Port))
	}
	if c.Server.ShutdownTimeout < 0 {
		return errors.New("C002").
			WithDetail("server.shutdown_timeout must not be negative")
	}
	if c.Server.MetricsPath != "" && !strings.HasPrefix(c.Server.MetricsPath, "/") {
		return errors.New("C002").
			WithDetail("server.metrics_path must start with '/', got " + strconv.Quote(c.Server.MetricsPath))
	}
	if c.Server.ReadBufferSize < 0 || c.Server.WriteBufferSize < 0 {
		return errors.New("C002").
			WithDetail("WebSocket buffer sizes must not be negative")
	}
	if c.Render.PoolSize < 0 {
		return errors.New("C002").
			WithDetail("render.pool_size must not be negative, got " + strconv.Itoa(c.Render.PoolSize))
	}
	switch c.Render.Checksum {
	case "adler32", "xxhash":
	default:
		return errors.New("C002").
			WithDetail("render.checksum must be adler32 or xxhash, got " + strconv.Quote(c.Render.Checksum))
	}
	return nil
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Publishing reports whether a publish bucket is configured.
func (c *Config) Publishing() bool {
	return c.Publish.Bucket != ""
}
