// Package config loads server settings from defaults, an optional YAML file,
// MINIHTTP_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"dqx0.com/go/webserver/internal/obs"
)

const EnvPrefix = "MINIHTTP"

// Keys as they appear in config files.
const (
	KeyAddr        = "addr"
	KeyPublicPath  = "public_path"
	KeyBufferSize  = "buffer_size"
	KeyConcurrent  = "concurrent"
	KeyAllowCRLF   = "allow_crlf"
	KeyLogLevel    = "log_level"
	KeyLogFormat   = "log_format"
	KeyMetricsAddr = "metrics_addr"
)

// Config holds everything the serve command needs.
type Config struct {
	// Addr is the host:port the server binds.
	Addr string `mapstructure:"addr" yaml:"addr"`
	// PublicPath is the directory static files are served from.
	PublicPath string `mapstructure:"public_path" yaml:"public_path"`
	// BufferSize bounds the bytes read from each connection.
	BufferSize int `mapstructure:"buffer_size" yaml:"buffer_size"`
	// Concurrent serves each connection on its own goroutine.
	Concurrent bool `mapstructure:"concurrent" yaml:"concurrent"`
	// AllowCRLF accepts request lines ending in "\r\n" as well as "\n".
	AllowCRLF bool `mapstructure:"allow_crlf" yaml:"allow_crlf"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
	// MetricsAddr, when set, exposes Prometheus metrics on host:port.
	MetricsAddr string `mapstructure:"metrics_addr" yaml:"metrics_addr,omitempty"`
}

// Default is the configuration used when nothing overrides it.
var Default = Config{
	Addr:       "127.0.0.1:8080",
	PublicPath: "public",
	BufferSize: 1024,
	LogLevel:   "info",
	LogFormat:  "text",
}

// maps flag names to config keys
var flagKeys = map[string]string{
	"addr":         KeyAddr,
	"public-path":  KeyPublicPath,
	"buffer-size":  KeyBufferSize,
	"concurrent":   KeyConcurrent,
	"allow-crlf":   KeyAllowCRLF,
	"log-level":    KeyLogLevel,
	"log-format":   KeyLogFormat,
	"metrics-addr": KeyMetricsAddr,
}

// Flags returns a flag set for every config key, defaulted from Default.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.String("addr", Default.Addr, "host:port to listen on")
	fs.String("public-path", Default.PublicPath, "directory to serve static files from")
	fs.Int("buffer-size", Default.BufferSize, "bytes read from each connection; longer requests are truncated")
	fs.Bool("concurrent", Default.Concurrent, "serve each connection on its own goroutine")
	fs.Bool("allow-crlf", Default.AllowCRLF, "accept CRLF line endings on the request line; by default only a bare newline ends it")
	fs.String("log-level", Default.LogLevel, "debug, info, warn or error")
	fs.String("log-format", Default.LogFormat, "text or json")
	fs.String("metrics-addr", Default.MetricsAddr, "host:port for the Prometheus /metrics endpoint; empty disables it")
	return fs
}

// BindFlags binds the flags from Flags found in fs to their keys in v.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "bind flag --%s", name)
		}
	}
	return nil
}

// New returns a viper instance with defaults and environment lookup set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyAddr, Default.Addr)
	v.SetDefault(KeyPublicPath, Default.PublicPath)
	v.SetDefault(KeyBufferSize, Default.BufferSize)
	v.SetDefault(KeyConcurrent, Default.Concurrent)
	v.SetDefault(KeyAllowCRLF, Default.AllowCRLF)
	v.SetDefault(KeyLogLevel, Default.LogLevel)
	v.SetDefault(KeyLogFormat, Default.LogFormat)
	v.SetDefault(KeyMetricsAddr, Default.MetricsAddr)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file into v when file is not empty and decodes the result.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", file)
		}
	}
	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := validHostPort(c.Addr); err != nil {
		return errors.Wrapf(err, "invalid %s", KeyAddr)
	}
	if c.BufferSize < 16 || c.BufferSize > 1<<20 {
		return errors.Errorf("invalid %s %d: must be between 16 and %d", KeyBufferSize, c.BufferSize, 1<<20)
	}
	if _, err := obs.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(err, "invalid %s", KeyLogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return errors.Errorf("invalid %s %q: must be text or json", KeyLogFormat, c.LogFormat)
	}
	if c.MetricsAddr != "" {
		if err := validHostPort(c.MetricsAddr); err != nil {
			return errors.Wrapf(err, "invalid %s", KeyMetricsAddr)
		}
		if c.MetricsAddr == c.Addr {
			return errors.Errorf("%s and %s must differ", KeyMetricsAddr, KeyAddr)
		}
	}
	return nil
}

// WriteYAML renders c as a config file.
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "encode config")
	}
	return enc.Close()
}

func validHostPort(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return errors.Errorf("bad port %q", port)
	}
	return nil
}
