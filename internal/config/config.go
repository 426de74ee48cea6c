// Package config loads charcount settings from defaults, an optional config
// file, CHARCOUNT_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/chriscorrea/charcount/internal/counter"
)

type Config struct {
	Count  CountConfig  `mapstructure:"count"`
	Output OutputConfig `mapstructure:"output"`
	HTML   HTMLConfig   `mapstructure:"html"`
	Fetch  FetchConfig  `mapstructure:"fetch"`
	Debug  bool         `mapstructure:"debug"`
}

type CountConfig struct {
	Method string `mapstructure:"method"`
	Stream bool   `mapstructure:"stream"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
	Quiet  bool   `mapstructure:"quiet"`
}

type HTMLConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Selector   string `mapstructure:"selector"`
	IncludeAll bool   `mapstructure:"include_all"`
	Plain      bool   `mapstructure:"plain"`
}

type FetchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// Output formats accepted by output.format.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "md"
)

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"method":      "count.method",
	"stream":      "count.stream",
	"format":      "output.format",
	"quiet":       "output.quiet",
	"html":        "html.enabled",
	"selector":    "html.selector",
	"include-all": "html.include_all",
	"plain":       "html.plain",
	"concurrency": "fetch.concurrency",
	"debug":       "debug",
}

func DefaultConfig() Config {
	return Config{
		Count: CountConfig{
			Method: counter.NonWhitespace.String(),
			Stream: false,
		},
		Output: OutputConfig{
			Format: FormatText,
			Quiet:  false,
		},
		HTML: HTMLConfig{
			Enabled:    false,
			Selector:   "",
			IncludeAll: false,
			Plain:      false,
		},
		Fetch: FetchConfig{
			Concurrency: 4,
		},
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.StringP("method", "m", defaults.Count.Method, "Counting method per line: nonwhitespace, characters, words, tokens, sentences")
	fs.Bool("stream", defaults.Count.Stream, "Count plain-text sources line by line without buffering them")
	fs.String("format", defaults.Output.Format, "Output format: text, json, md")
	fs.BoolP("quiet", "q", defaults.Output.Quiet, "Suppress warnings and progress output")
	fs.Bool("html", defaults.HTML.Enabled, "Treat sources as HTML and count their readable text")
	fs.StringP("selector", "s", defaults.HTML.Selector, "CSS selector for HTML extraction (implies --html)")
	fs.BoolP("include-all", "i", defaults.HTML.IncludeAll, "Count all HTML content without readability filtering")
	fs.Bool("plain", defaults.HTML.Plain, "Extract HTML as plain text instead of Markdown")
	fs.Int("concurrency", defaults.Fetch.Concurrency, "Maximum number of sources read at once")
	fs.BoolP("debug", "D", defaults.Debug, "Enable debug logging")
	_ = fs.MarkHidden("debug")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("CHARCOUNT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("charcount")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate normalizes the output format and rejects unusable settings.
func (c *Config) Validate() error {
	if _, err := counter.ParseCountingMethod(c.Count.Method); err != nil {
		return fmt.Errorf("invalid count.method: %w", err)
	}

	format, err := NormalizeFormat(c.Output.Format)
	if err != nil {
		return err
	}
	c.Output.Format = format

	if c.Fetch.Concurrency <= 0 {
		return fmt.Errorf("fetch.concurrency must be positive, got %d", c.Fetch.Concurrency)
	}

	// a selector only makes sense for HTML input
	if c.HTML.Selector != "" || c.HTML.IncludeAll || c.HTML.Plain {
		c.HTML.Enabled = true
	}
	if c.HTML.Enabled && c.Count.Stream {
		return fmt.Errorf("count.stream cannot be combined with HTML extraction")
	}
	return nil
}

// NormalizeFormat maps format aliases to one of the Format* constants.
func NormalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("invalid output.format %q (want text, json or md)", format)
	}
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %q: %w", name, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("count.method", c.Count.Method)
	v.SetDefault("count.stream", c.Count.Stream)
	v.SetDefault("output.format", c.Output.Format)
	v.SetDefault("output.quiet", c.Output.Quiet)
	v.SetDefault("html.enabled", c.HTML.Enabled)
	v.SetDefault("html.selector", c.HTML.Selector)
	v.SetDefault("html.include_all", c.HTML.IncludeAll)
	v.SetDefault("html.plain", c.HTML.Plain)
	v.SetDefault("fetch.concurrency", c.Fetch.Concurrency)
	v.SetDefault("debug", c.Debug)
}
