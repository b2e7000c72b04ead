// Package config loads docmark settings from a YAML file, DOCMARK_*
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/tsawler/docmark/markdown"
	"github.com/tsawler/docmark/pdfdoc"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. DOCMARK_SERVER_ADDR.
	EnvPrefix = "DOCMARK"

	// FileName is the config file name searched for without extension.
	FileName = "docmark"
)

// Config is the full set of settings.
type Config struct {
	Conversion Conversion `mapstructure:"conversion" yaml:"conversion"`
	Server     Server     `mapstructure:"server" yaml:"server"`
	PDF        PDF        `mapstructure:"pdf" yaml:"pdf"`
	Log        Log        `mapstructure:"log" yaml:"log"`
}

// Conversion holds the Markdown rendering defaults.
type Conversion struct {
	PreserveFormatting bool   `mapstructure:"preserve_formatting" yaml:"preserve_formatting"`
	IncludeImages      bool   `mapstructure:"include_images" yaml:"include_images"`
	MaxImageSize       int    `mapstructure:"max_image_size" yaml:"max_image_size"`
	TableFormat        string `mapstructure:"table_format" yaml:"table_format"`
}

// Server holds HTTP service settings.
type Server struct {
	Addr           string   `mapstructure:"addr" yaml:"addr"`
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
	MaxConnections int      `mapstructure:"max_connections" yaml:"max_connections"`
	Workers        int      `mapstructure:"workers" yaml:"workers"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// PDF holds PDF parser settings.
type PDF struct {
	OCR         bool   `mapstructure:"ocr" yaml:"ocr"`
	OCRLanguage string `mapstructure:"ocr_language" yaml:"ocr_language"`
}

// Log holds logging settings.
type Log struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the built-in settings.
func Default() Config {
	opts := markdown.DefaultOptions()
	return Config{
		Conversion: Conversion{
			PreserveFormatting: opts.PreserveFormatting,
			IncludeImages:      opts.IncludeImages,
			MaxImageSize:       opts.MaxImageSize,
			TableFormat:        opts.TableFormat.String(),
		},
		Server: Server{
			Addr:           ":8080",
			MaxUploadBytes: 50 << 20,
			MaxConnections: 64,
			Workers:        0,
			AllowedOrigins: []string{},
		},
		PDF: PDF{
			OCR:         false,
			OCRLanguage: "eng",
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// SetDefaults registers every key with its default so that environment
// variables are picked up for keys absent from the config file.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("conversion.preserve_formatting", d.Conversion.PreserveFormatting)
	v.SetDefault("conversion.include_images", d.Conversion.IncludeImages)
	v.SetDefault("conversion.max_image_size", d.Conversion.MaxImageSize)
	v.SetDefault("conversion.table_format", d.Conversion.TableFormat)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.max_upload_bytes", d.Server.MaxUploadBytes)
	v.SetDefault("server.max_connections", d.Server.MaxConnections)
	v.SetDefault("server.workers", d.Server.Workers)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("pdf.ocr", d.PDF.OCR)
	v.SetDefault("pdf.ocr_language", d.PDF.OCRLanguage)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// New returns a viper instance with defaults and environment binding in
// place. When configFile is empty, docmark.yaml is searched for in the
// working directory and in ~/.config/docmark. A missing config file is not
// an error; an unreadable or malformed one is.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", FileName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be checked by type alone.
func (c Config) Validate() error {
	if _, err := c.MarkdownOptions(); err != nil {
		return fmt.Errorf("conversion: %w", err)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.Server.MaxConnections < 0 {
		return fmt.Errorf("server.max_connections must not be negative, got %d", c.Server.MaxConnections)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// MarkdownOptions converts the conversion section to render options.
func (c Config) MarkdownOptions() (markdown.Options, error) {
	tf, err := markdown.ParseTableFormat(c.Conversion.TableFormat)
	if err != nil {
		return markdown.Options{}, err
	}
	opts := markdown.Options{
		PreserveFormatting: c.Conversion.PreserveFormatting,
		IncludeImages:      c.Conversion.IncludeImages,
		MaxImageSize:       c.Conversion.MaxImageSize,
		TableFormat:        tf,
	}
	if err := opts.Validate(); err != nil {
		return markdown.Options{}, err
	}
	return opts, nil
}

// PDFConfig returns the PDF parser configuration.
func (c Config) PDFConfig() pdfdoc.Config {
	pc := pdfdoc.DefaultConfig()
	pc.OCR = c.PDF.OCR
	if c.PDF.OCRLanguage != "" {
		pc.OCRLanguage = c.PDF.OCRLanguage
	}
	return pc
}

// WriteDefault writes the default settings as YAML to path, creating
// parent directories. An existing file is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
