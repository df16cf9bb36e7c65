package config

import (
	"bytes"
	"errors"
	"strings"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/millie-ai/millie/internal"
)

// We're bootstrapping so avoid any imports from other packages
var log = logrus.New()

// LoadConfig loads the config file and ENV variables into a Config struct.
// A missing config file is not an error: env and defaults are enough to run.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Seed viper with the defaults so that every key is known to AutomaticEnv
	if err := seedDefaults(v); err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("MILLIE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, err
		}
		log.Debug("no config file found, using environment and defaults")
	}

	// Environment variables take precedence over config file
	loadDotEnv()

	bindings := map[string][]string{
		"llm.openai_api_key":        {"MILLIE_OPENAI_API_KEY", "OPENAI_API_KEY"},
		"llm.anthropic_api_key":     {"MILLIE_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"},
		"embeddings.openai_api_key": {"MILLIE_EMBEDDINGS_OPENAI_API_KEY"},
		"store.dir":                 {"MILLIE_STORE_DIR", "STORAGE_DIR"},
		"server.port":               {"MILLIE_SERVER_PORT", "PORT"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			log.Fatalf("Error binding environment variable: %s", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := ApplyDefaults(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func seedDefaults(v *viper.Viper) error {
	b, err := yaml.Marshal(Defaults())
	if err != nil {
		return err
	}
	return v.ReadConfig(bytes.NewReader(b))
}

// ApplyDefaults fills every zero-valued field of cfg from Defaults.
func ApplyDefaults(cfg *Config) error {
	if err := mergo.Merge(cfg, Defaults()); err != nil {
		return err
	}
	if cfg.Embeddings.OpenAIAPIKey == "" {
		cfg.Embeddings.OpenAIAPIKey = cfg.LLM.OpenAIAPIKey
	}
	if cfg.Embeddings.OpenAIEndpoint == "" {
		cfg.Embeddings.OpenAIEndpoint = cfg.LLM.OpenAIEndpoint
	}
	return nil
}

// loadDotEnv loads environment variables from .env file
func loadDotEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Debug(".env file not found or unable to load")
	}
}

// SetLogLevel sets the log level based on the config file. Defaults to INFO if not set or invalid
func SetLogLevel(cfg *Config) {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	internal.SetLogLevel(level)
	log.Info("Log level set to: ", level)
}
