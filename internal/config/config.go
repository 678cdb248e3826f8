package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Strapi   StrapiConfig   `mapstructure:"strapi"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	SerpAPI  SerpAPIConfig  `mapstructure:"serpapi"`
	Taxonomy TaxonomyConfig `mapstructure:"taxonomy"`
	Store    StoreConfig    `mapstructure:"store"`
	Output   OutputConfig   `mapstructure:"output"`
	Batch    BatchConfig    `mapstructure:"batch"`
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
}

type StrapiConfig struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Path    string        `mapstructure:"path"`
	Enabled bool          `mapstructure:"enabled"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type SerpAPIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Country string        `mapstructure:"country"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type TaxonomyConfig struct {
	Categories    string `mapstructure:"categories"`
	Tags          string `mapstructure:"tags"`
	MaxCategories int    `mapstructure:"max_categories"`
	MaxTags       int    `mapstructure:"max_tags"`
}

type StoreConfig struct {
	Driver     string `mapstructure:"driver"`
	Path       string `mapstructure:"path"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

type BatchConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// legacyEnv maps config keys to the environment variable names the page
// generator has always read.
var legacyEnv = map[string]string{
	"strapi.url":      "STRAPI_API_URL",
	"strapi.token":    "STRAPI_API_TOKEN",
	"serpapi.api_key": "SERPAPI_API_KEY",
	"openai.api_key":  "OPENAI_API_KEY",
	"openai.base_url": "OPENAI_API_BASE",
}

// Load reads configuration from an optional file, .env files and the
// environment. An empty path searches ./ruh.yaml and ./configs/ruh.yaml and
// falls back to defaults when neither exists.
func Load(path string) (*Config, error) {
	loadEnvFiles(".env", ".env.python")

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("ruh")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix("RUH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "RUH_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("strapi.url", "http://127.0.0.1:8083")
	v.SetDefault("strapi.token", "")
	v.SetDefault("strapi.path", "/api/v1/integrations")
	v.SetDefault("strapi.enabled", true)
	v.SetDefault("strapi.timeout", 30*time.Second)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model", "openai/gpt-4o-mini")
	v.SetDefault("openai.temperature", 0.7)
	v.SetDefault("openai.max_tokens", 2500)
	v.SetDefault("openai.timeout", 120*time.Second)

	v.SetDefault("serpapi.api_key", "")
	v.SetDefault("serpapi.base_url", "https://serpapi.com/search")
	v.SetDefault("serpapi.country", "us")
	v.SetDefault("serpapi.timeout", 30*time.Second)

	v.SetDefault("taxonomy.categories", "categories.json")
	v.SetDefault("taxonomy.tags", "tags.json")
	v.SetDefault("taxonomy.max_categories", 3)
	v.SetDefault("taxonomy.max_tags", 2)

	v.SetDefault("store.driver", "json")
	v.SetDefault("store.path", "connectorList.json")
	v.SetDefault("store.sqlite_path", "connectors.db")

	v.SetDefault("output.dir", "integration-pages")
	v.SetDefault("batch.delay", 2*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("server.addr", ":8080")
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "json", "sqlite":
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.Taxonomy.MaxCategories < 0 || c.Taxonomy.MaxTags < 0 {
		return errors.New("config: taxonomy limits must not be negative")
	}
	if c.Batch.Delay < 0 {
		return errors.New("config: batch delay must not be negative")
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		return errors.New("config: output dir is required")
	}
	return nil
}
