package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Layout    LayoutConfig    `mapstructure:"layout"`
	OCR       OCRConfig       `mapstructure:"ocr"`
	Translate TranslateConfig `mapstructure:"translate"`
	Lexicon   LexiconConfig   `mapstructure:"lexicon"`
	Cache     CacheConfig     `mapstructure:"cache"`
	BaseURL   string          `mapstructure:"base_url"`
	Debug     bool            `mapstructure:"debug"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	BodyLimit    int           `mapstructure:"body_limit"`
}

// LayoutConfig contains word-box layout thresholds. These are tuned
// heuristics, not contractual values.
type LayoutConfig struct {
	MinScriptRunRatio float64 `mapstructure:"min_script_run_ratio"`
	MinWords          int     `mapstructure:"min_words"`
	HeightPad         float64 `mapstructure:"height_pad"`
	MinBoxWidth       float64 `mapstructure:"min_box_width"`
}

// OCRConfig contains OCR cascade settings
type OCRConfig struct {
	Provider       string        `mapstructure:"provider"` // ocrspace or tesseract
	Endpoint       string        `mapstructure:"endpoint"`
	APIKey         string        `mapstructure:"api_key"`
	Language       string        `mapstructure:"language"`
	PrimaryEngine  int           `mapstructure:"primary_engine"`
	FallbackEngine int           `mapstructure:"fallback_engine"`
	Timeout        time.Duration `mapstructure:"timeout"`
	// MaxImageWidth bounds rasters submitted to the remote API; wider pages
	// are downscaled first.
	MaxImageWidth int `mapstructure:"max_image_width"`
	RasterDPI     int `mapstructure:"raster_dpi"`
}

// TranslateConfig contains translation provider settings
type TranslateConfig struct {
	Provider   string `mapstructure:"provider"` // libretranslate or mymemory
	Endpoint   string `mapstructure:"endpoint"`
	APIKey     string `mapstructure:"api_key"`
	SourceLang string `mapstructure:"source_lang"`
	TargetLang string `mapstructure:"target_lang"`
}

// LexiconConfig locates the static lexicon resource
type LexiconConfig struct {
	Path string `mapstructure:"path"`
}

// CacheConfig bounds the tooltip cache
type CacheConfig struct {
	TooltipCapacity int `mapstructure:"tooltip_capacity"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := loadEnvFile(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	viper.SetConfigName("qirtas")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/qirtas")

	setDefaults()

	// Enable environment variable support with underscore replacer
	viper.AutomaticEnv()
	viper.SetEnvPrefix("QIRTAS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file (if it exists)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Info().Msg("No config file found, using environment variables and defaults")
	} else {
		log.Info().Str("file", viper.ConfigFileUsed()).Msg("Config file loaded")
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads environment variables from .env file
func loadEnvFile() error {
	locations := []string{
		".env",
		".env.local",
		"../.env", // For when running from subdirectories
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			if err := godotenv.Load(location); err != nil {
				return fmt.Errorf("error loading .env file from %s: %w", location, err)
			}
			log.Info().Str("file", location).Msg(".env file loaded")
			return nil
		}
	}

	return fmt.Errorf("no .env file found")
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "60s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.body_limit", 64*1024*1024) // 64MB uploads

	// Layout defaults
	viper.SetDefault("layout.min_script_run_ratio", 0.2)
	viper.SetDefault("layout.min_words", 3)
	viper.SetDefault("layout.height_pad", 1.15)
	viper.SetDefault("layout.min_box_width", 3)

	// OCR defaults
	viper.SetDefault("ocr.provider", "ocrspace")
	viper.SetDefault("ocr.language", "ara")
	viper.SetDefault("ocr.primary_engine", 2)
	viper.SetDefault("ocr.fallback_engine", 1)
	viper.SetDefault("ocr.timeout", "20s")
	viper.SetDefault("ocr.max_image_width", 2048)
	viper.SetDefault("ocr.raster_dpi", 150)

	// Translation defaults
	viper.SetDefault("translate.provider", "mymemory")
	viper.SetDefault("translate.source_lang", "ar")
	viper.SetDefault("translate.target_lang", "en")

	// Lexicon defaults
	viper.SetDefault("lexicon.path", "./lexicon.json")

	// Cache defaults
	viper.SetDefault("cache.tooltip_capacity", 1000)

	// General defaults
	viper.SetDefault("base_url", "http://localhost:8080")
	viper.SetDefault("debug", false)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.OCR.Provider != "ocrspace" && c.OCR.Provider != "tesseract" {
		return fmt.Errorf("ocr provider must be 'ocrspace' or 'tesseract'")
	}

	if c.Translate.Provider != "libretranslate" && c.Translate.Provider != "mymemory" {
		return fmt.Errorf("translate provider must be 'libretranslate' or 'mymemory'")
	}

	if c.Layout.MinScriptRunRatio < 0 || c.Layout.MinScriptRunRatio > 1 {
		return fmt.Errorf("layout.min_script_run_ratio must be between 0 and 1")
	}

	if c.Cache.TooltipCapacity < 0 {
		return fmt.Errorf("cache.tooltip_capacity must not be negative")
	}

	if c.OCR.Timeout <= 0 {
		return fmt.Errorf("ocr.timeout must be positive")
	}

	return nil
}
