package cmd

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spigell/cvscan/internal/logger"
	"github.com/spigell/cvscan/internal/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	app = "cvscan"

	defaultGeminiModel = "gemini-2.5-flash"
)

type Config struct {
	API     *APIConfig     `mapstructure:"api"`
	Storage *StorageConfig `mapstructure:"storage"`
	Upload  *UploadConfig  `mapstructure:"upload"`
	Match   *MatchConfig   `mapstructure:"match"`
	AI      *AIConfig      `mapstructure:"ai"`
}

type APIConfig struct {
	BaseURL string `mapstructure:"base-url"`
}

type StorageConfig struct {
	URL         string `mapstructure:"url"`
	AnonKey     string `mapstructure:"anon-key" json:"-"`
	AnonKeyFile string `mapstructure:"anon-key-file"`
	Bucket      string `mapstructure:"bucket"`
}

type UploadConfig struct {
	Mode string `mapstructure:"mode"`
}

type MatchConfig struct {
	JobID string `mapstructure:"job-id"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key" json:"-"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

// envBindings maps config keys to environment variables. The VITE_ names are
// the ones used by the web client and are accepted for compatibility.
var envBindings = []struct {
	key  string
	envs []string
}{
	{key: "api.base-url", envs: []string{"CVSCAN_API_BASE_URL", "VITE_API_BASE_URL"}},
	{key: "storage.url", envs: []string{"SUPABASE_URL", "VITE_SUPABASE_URL"}},
	{key: "storage.anon-key", envs: []string{"SUPABASE_ANON_KEY", "VITE_SUPABASE_ANON_KEY"}},
	{key: "storage.anon-key-file", envs: []string{"SUPABASE_ANON_KEY_FILE"}},
	{key: "storage.bucket", envs: []string{"SUPABASE_BUCKET"}},
	{key: "match.job-id", envs: []string{"CVSCAN_JOB_ID"}},
	{key: "ai.gemini.api-key", envs: []string{"GEMINI_API_KEY"}},
	{key: "ai.gemini.api-key-file", envs: []string{"GEMINI_API_KEY_FILE"}},
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "cvscan uploads a CV, stores it and scores it against a job description",
	}
)

// Execute executes the root command. The command context is cancelled on
// SIGINT and SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is cvscan.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("output", "o", outputText, "result format: text, json or yaml")
	rootCmd.PersistentFlags().String("api-url", "", "cvscan api base url")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("api.base-url", rootCmd.PersistentFlags().Lookup("api-url"))

	if err := bindConfig(); err != nil {
		log.Fatalf("binding environment variables: %v", err)
	}
}

func bindConfig() error {
	for _, b := range envBindings {
		if err := viper.BindEnv(append([]string{b.key}, b.envs...)...); err != nil {
			return err
		}
	}

	viper.SetDefault("api.base-url", "")
	viper.SetDefault("storage.bucket", storage.DefaultBucket)
	viper.SetDefault("upload.mode", "storage")
	viper.SetDefault("match.job-id", "")
	viper.SetDefault("ai.gemini.model", defaultGeminiModel)
	viper.SetDefault("ai.gemini.max-log-length", 200)

	return nil
}

func initConfig() {
	// .env is optional; variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional unless given explicitly.
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

	if config == nil {
		config = &Config{}
	}

	if config.API == nil {
		config.API = &APIConfig{}
	}
	if config.Storage == nil {
		config.Storage = &StorageConfig{}
	}
	if config.Upload == nil {
		config.Upload = &UploadConfig{}
	}
	if config.Match == nil {
		config.Match = &MatchConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{Model: defaultGeminiModel}
	}

	return config, nil
}

// setup builds the logger and the config shared by every command.
func setup() (*zap.Logger, *Config) {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		l.Fatal("getting a config", zap.Error(err))
	}

	return l, config
}
