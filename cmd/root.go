package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/job-recommender/internal/cache"
	"github.com/spigell/job-recommender/internal/retrieval"
)

const (
	app       = "job-recommender"
	envPrefix = "JOB_RECOMMENDER"
)

type Config struct {
	Search    *SearchConfig  `mapstructure:"search" validate:"required"`
	Sources   *SourcesConfig `mapstructure:"sources"`
	Adzuna    *AdzunaConfig  `mapstructure:"adzuna"`
	Filters   *FiltersConfig `mapstructure:"filters" validate:"required"`
	Cache     *CacheConfig   `mapstructure:"cache" validate:"required"`
	Storage   *StorageConfig `mapstructure:"storage" validate:"required"`
	AI        *AIConfig      `mapstructure:"ai"`
	UserAgent string         `mapstructure:"user-agent"`
	UserID    string         `mapstructure:"user-id"`
}

type SearchConfig struct {
	MaxJobs      int           `mapstructure:"max-jobs" validate:"gte=1,lte=200"`
	MinResults   int           `mapstructure:"min-results" validate:"gte=0"`
	Fallback     bool          `mapstructure:"fallback"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RateInterval time.Duration `mapstructure:"rate-interval" validate:"gte=0"`
}

type SourcesConfig struct {
	Enabled []string `mapstructure:"enabled" validate:"dive,oneof=remoteok remotive arbeitnow weworkremotely findwork himalayas adzuna"`
}

type AdzunaConfig struct {
	AppID      string `mapstructure:"app-id"`
	AppKey     string `mapstructure:"app-key"`
	AppKeyFile string `mapstructure:"app-key-file"`
	Country    string `mapstructure:"country" validate:"omitempty,len=2"`
}

type FiltersConfig struct {
	ExcludeCompanies []string `mapstructure:"exclude-companies"`
	ExcludeFile      string   `mapstructure:"exclude-file"`
	MinimumScore     float64  `mapstructure:"minimum-score" validate:"gte=0,lte=100"`
}

type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"gte=0"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

type StorageConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-recommender searches public job boards and ranks the postings against your profile",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-recommender.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults()
}

func setDefaults() {
	viper.SetDefault("search.max-jobs", retrieval.DefaultMaxJobs)
	viper.SetDefault("search.min-results", retrieval.DefaultMinResults)
	viper.SetDefault("search.fallback", true)
	viper.SetDefault("search.timeout", 15*time.Second)
	viper.SetDefault("search.rate-interval", 500*time.Millisecond)

	viper.SetDefault("sources.enabled", retrieval.SourceOrder)

	viper.SetDefault("adzuna.app-id", "")
	viper.SetDefault("adzuna.app-key", "")
	viper.SetDefault("adzuna.app-key-file", "")
	viper.SetDefault("adzuna.country", "us")

	viper.SetDefault("filters.exclude-companies", []string{})
	viper.SetDefault("filters.exclude-file", "")
	viper.SetDefault("filters.minimum-score", 0)

	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.addr", "localhost:6379")
	viper.SetDefault("cache.password", "")
	viper.SetDefault("cache.db", 0)
	viper.SetDefault("cache.ttl", cache.DefaultTTL)

	viper.SetDefault("storage.enabled", true)
	viper.SetDefault("storage.path", "~/.job-recommender/history.db")

	viper.SetDefault("ai.enabled", false)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.api-key", "")
	viper.SetDefault("ai.gemini.api-key-file", "")
	viper.SetDefault("ai.gemini.model", "")
	viper.SetDefault("ai.gemini.max-log-length", 0)

	viper.SetDefault("user-agent", "")
	viper.SetDefault("user-id", "")
}

func initConfig() {
	// Version needs no configuration.
	if versionCmd.CalledAs() != "" {
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Without an explicit file the defaults are enough.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, err
	}

	return config, nil
}
