package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Logger     LoggerConfig
	Model      ModelConfig
	Federation FederationConfig
	Tracker    TrackerConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type LoggerConfig struct {
	Level  string
	Format string
}

// ModelConfig controls where the server keeps the global model.
type ModelConfig struct {
	GlobalModelPath string
	InitSeed        int64
}

// FederationConfig is the client's view of the federation server.
type FederationConfig struct {
	ServerURL    string
	Timeout      time.Duration // 0 means no client-side timeout
	LocalEpochs  int
	LearningRate float64
}

type TrackerConfig struct {
	UserID             int64
	DatasetPath        string
	MinSessionDuration time.Duration
	TrainEvery         int
	MinSamples         int
	ReportActivities   bool
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"server-url":    "FL_SERVER_URL",
	"timeout":       "FL_CLIENT_TIMEOUT",
	"epochs":        "FL_LOCAL_EPOCHS",
	"learning-rate": "FL_LEARNING_RATE",
	"user-id":       "TRACKER_USER_ID",
	"dataset":       "TRACKER_DATASET_PATH",
	"train-every":   "TRACKER_TRAIN_EVERY",
	"min-samples":   "TRACKER_MIN_SAMPLES",
	"report":        "TRACKER_REPORT_ACTIVITIES",
	"log-level":     "LOGGER_LEVEL",
	"log-format":    "LOGGER_FORMAT",
}

func Load() (*Config, error) {
	return LoadWithFlags(nil)
}

// LoadWithFlags reads defaults, then the environment, then any flags in fs
// that were set explicitly.
func LoadWithFlags(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 5000)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "fedclassroom")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")
	v.SetDefault("MODEL_GLOBAL_PATH", "global_model.json")
	v.SetDefault("MODEL_INIT_SEED", 1)
	v.SetDefault("FL_SERVER_URL", "http://127.0.0.1:5000")
	v.SetDefault("FL_CLIENT_TIMEOUT", "0s")
	v.SetDefault("FL_LOCAL_EPOCHS", 5)
	v.SetDefault("FL_LEARNING_RATE", 0.01)
	v.SetDefault("TRACKER_USER_ID", 1)
	v.SetDefault("TRACKER_DATASET_PATH", "activities.jsonl")
	v.SetDefault("TRACKER_MIN_SESSION", "15s")
	v.SetDefault("TRACKER_TRAIN_EVERY", 10)
	v.SetDefault("TRACKER_MIN_SAMPLES", 5)
	v.SetDefault("TRACKER_REPORT_ACTIVITIES", true)

	// Env
	v.AutomaticEnv()

	// Flags
	if fs != nil {
		for flag, key := range flagKeys {
			f := fs.Lookup(flag)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", flag, err)
			}
		}
	}

	connLifetime, err := time.ParseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		connLifetime = 30 * time.Minute
	}

	clientTimeout, err := time.ParseDuration(v.GetString("FL_CLIENT_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parse FL_CLIENT_TIMEOUT: %w", err)
	}

	minSession, err := time.ParseDuration(v.GetString("TRACKER_MIN_SESSION"))
	if err != nil {
		minSession = 15 * time.Second
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connLifetime,
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
		Model: ModelConfig{
			GlobalModelPath: v.GetString("MODEL_GLOBAL_PATH"),
			InitSeed:        v.GetInt64("MODEL_INIT_SEED"),
		},
		Federation: FederationConfig{
			ServerURL:    v.GetString("FL_SERVER_URL"),
			Timeout:      clientTimeout,
			LocalEpochs:  v.GetInt("FL_LOCAL_EPOCHS"),
			LearningRate: v.GetFloat64("FL_LEARNING_RATE"),
		},
		Tracker: TrackerConfig{
			UserID:             v.GetInt64("TRACKER_USER_ID"),
			DatasetPath:        v.GetString("TRACKER_DATASET_PATH"),
			MinSessionDuration: minSession,
			TrainEvery:         v.GetInt("TRACKER_TRAIN_EVERY"),
			MinSamples:         v.GetInt("TRACKER_MIN_SAMPLES"),
			ReportActivities:   v.GetBool("TRACKER_REPORT_ACTIVITIES"),
		},
	}

	return cfg, nil
}
