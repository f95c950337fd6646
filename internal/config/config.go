package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
	DBPath     string `env:"DB_PATH" envDefault:"/data/wastenot.db"`

	KVBackend     string `env:"KV_BACKEND" envDefault:"sqlite" validate:"oneof=sqlite dynamodb"`
	DynamoDBTable string `env:"DYNAMODB_TABLE" envDefault:"wastenot-kv"`
	AWSRegion     string `env:"AWS_REGION" envDefault:"us-east-1"`

	VisionBackend string `env:"VISION_BACKEND" envDefault:"mock" validate:"oneof=mock claude ollama"`
	OllamaHost    string `env:"OLLAMA_HOST" envDefault:"http://localhost:11434"`
	OllamaModel   string `env:"OLLAMA_MODEL" envDefault:"moondream"`
	ClaudeAPIKey  string `env:"CLAUDE_API_KEY"`
	ClaudeModel   string `env:"CLAUDE_MODEL" envDefault:"claude-3-5-sonnet-20241022"`

	PhotoBackend string `env:"PHOTO_BACKEND" envDefault:"local" validate:"oneof=local s3"`
	PhotoPath    string `env:"PHOTO_LOCAL_PATH" envDefault:"/data/photos"`
	S3Bucket     string `env:"S3_BUCKET" envDefault:"wastenot-photos"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile   string `env:"LOG_FILE"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json text"`

	APIBaseURL     string        `env:"API_BASE_URL" envDefault:"http://127.0.0.1:5000"`
	APITimeout     time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	MetricsEnabled bool          `env:"METRICS_ENABLED" envDefault:"true"`
}

// Load reads .env files when present, then the process environment. Variables
// already set in the environment win over the files.
func Load() (*Config, error) {
	for _, file := range []string{".env.local", ".env"} {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.VisionBackend == "claude" && c.ClaudeAPIKey == "" {
		return errors.New("invalid config: CLAUDE_API_KEY is required for the claude vision backend")
	}
	return nil
}
