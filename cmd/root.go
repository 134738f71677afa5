package cmd

import (
	"context"
	"errors"
	"log"

	"github.com/dshevko/talentsift/internal/ai/gemini"
	"github.com/dshevko/talentsift/internal/filestore"
	"github.com/dshevko/talentsift/internal/ingest"
	"github.com/dshevko/talentsift/internal/logger"
	"github.com/dshevko/talentsift/internal/pipeline"
	"github.com/dshevko/talentsift/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	app = "talentsift"
)

type Config struct {
	Database *DatabaseConfig `mapstructure:"database"`
	Storage  *StorageConfig  `mapstructure:"storage"`
	AI       *AIConfig       `mapstructure:"ai"`
	Server   *ServerConfig   `mapstructure:"server"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type StorageConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service-key"`
	Bucket     string `mapstructure:"bucket"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey         string `mapstructure:"api-key"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding-model"`
	MaxLogLength   int    `mapstructure:"max-log-length"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "talentsift uploads batches of PDF resumes and ranks them against free-text job descriptions",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is talentsift.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Secrets come from the environment so the config file stays shareable.
	for key, env := range map[string]string{
		"database.url":        "DATABASE_URL",
		"storage.url":         "SUPABASE_URL",
		"storage.service-key": "SUPABASE_SERVICE_KEY",
		"ai.gemini.api-key":   "GEMINI_API_KEY",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// The file is optional when everything arrives via env vars, but a
		// broken file is fatal.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

// application holds the composed dependency graph shared by the commands.
type application struct {
	config   *Config
	logger   *zap.Logger
	db       *store.DB
	gemini   *gemini.Client
	files    *filestore.Client
	pipeline *pipeline.Pipeline
	ingester *ingest.Service
}

func newApplication(ctx context.Context) (*application, error) {
	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, err
	}

	config, err := getConfig()
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, errors.New("config is required")
	}
	if config.Database == nil || config.Database.URL == "" {
		return nil, errors.New("database url is required (set database.url or DATABASE_URL)")
	}
	if config.Storage == nil || config.Storage.URL == "" || config.Storage.ServiceKey == "" {
		return nil, errors.New("object storage is not configured (set storage.url/storage.service-key or SUPABASE_URL/SUPABASE_SERVICE_KEY)")
	}
	if config.AI == nil || config.AI.Gemini == nil || config.AI.Gemini.APIKey == "" {
		return nil, errors.New("gemini api key is required (set ai.gemini.api-key or GEMINI_API_KEY)")
	}

	gcfg := config.AI.Gemini

	client, err := gemini.NewClient(ctx, gcfg.APIKey, gcfg.Model, gcfg.EmbeddingModel, zlog.With(
		zap.String("provider", "gemini"),
	))
	if err != nil {
		return nil, err
	}

	db, err := store.NewDB(config.Database.URL, zlog)
	if err != nil {
		return nil, err
	}

	files := filestore.New(config.Storage.URL, config.Storage.ServiceKey, config.Storage.Bucket, zlog)

	scorer := gemini.NewScorer(client, zlog.With(
		zap.String("provider", "gemini"),
		zap.String("model", client.Model()),
	), gcfg.MaxLogLength)

	return &application{
		config:   config,
		logger:   zlog,
		db:       db,
		gemini:   client,
		files:    files,
		pipeline: pipeline.New(client, db, scorer, zlog),
		ingester: ingest.NewService(client, client, files, db, zlog),
	}, nil
}

func (a *application) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
