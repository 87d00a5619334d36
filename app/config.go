package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
	"github.com/sushihentaime/quill/internal/common"
)

type Config struct {
	Host        string `mapstructure:"HOST"`
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`
	Version     string `mapstructure:"VERSION"`
	TLSCertFile string `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile  string `mapstructure:"TLS_KEY_FILE"`

	DB struct {
		URL      string `mapstructure:"DATABASE_URL"`
		Host     string `mapstructure:"POSTGRES_HOST"`
		Port     string `mapstructure:"POSTGRES_PORT"`
		User     string `mapstructure:"POSTGRES_USER"`
		Password string `mapstructure:"POSTGRES_PASSWORD"`
		Name     string `mapstructure:"POSTGRES_DB"`
	} `mapstructure:",squash"`

	Auth struct {
		JWTSecret    string `mapstructure:"JWT_SECRET"`
		DemoEmail    string `mapstructure:"DEMO_LOGIN_EMAIL"`
		DemoPassword string `mapstructure:"DEMO_LOGIN_PASSWORD"`
	} `mapstructure:",squash"`

	RateLimit struct {
		Enabled bool    `mapstructure:"RATE_LIMIT_ENABLED"`
		RPS     float64 `mapstructure:"RATE_LIMIT_RPS"`
		Burst   int     `mapstructure:"RATE_LIMIT_BURST"`
	} `mapstructure:",squash"`

	Redis struct {
		Addr     string `mapstructure:"REDIS_ADDR"`
		Password string `mapstructure:"REDIS_PASSWORD"`
	} `mapstructure:",squash"`

	Mail struct {
		Host     string `mapstructure:"MAIL_HOST"`
		Port     int    `mapstructure:"MAIL_PORT"`
		User     string `mapstructure:"MAIL_USER"`
		Password string `mapstructure:"MAIL_PASSWORD"`
		Sender   string `mapstructure:"MAIL_SENDER"`
	} `mapstructure:",squash"`

	RabbitMQ struct {
		Host     string `mapstructure:"RABBITMQ_HOST"`
		Port     string `mapstructure:"RABBITMQ_PORT"`
		User     string `mapstructure:"RABBITMQ_USER"`
		Password string `mapstructure:"RABBITMQ_PASSWORD"`
	} `mapstructure:",squash"`
}

var configDefaults = map[string]any{
	"HOST":                "0.0.0.0",
	"PORT":                "8080",
	"ENVIRONMENT":         "development",
	"VERSION":             "dev",
	"TLS_CERT_FILE":       "",
	"TLS_KEY_FILE":        "",
	"DATABASE_URL":        "",
	"POSTGRES_HOST":       "localhost",
	"POSTGRES_PORT":       "5432",
	"POSTGRES_USER":       "postgres",
	"POSTGRES_PASSWORD":   "postgres",
	"POSTGRES_DB":         "quill",
	"JWT_SECRET":          "",
	"DEMO_LOGIN_EMAIL":    "",
	"DEMO_LOGIN_PASSWORD": "",
	"RATE_LIMIT_ENABLED":  true,
	"RATE_LIMIT_RPS":      10.0,
	"RATE_LIMIT_BURST":    20,
	"REDIS_ADDR":          "",
	"REDIS_PASSWORD":      "",
	"MAIL_HOST":           "",
	"MAIL_PORT":           587,
	"MAIL_USER":           "",
	"MAIL_PASSWORD":       "",
	"MAIL_SENDER":         "Quill <no-reply@quill.local>",
	"RABBITMQ_HOST":       "",
	"RABBITMQ_PORT":       "5672",
	"RABBITMQ_USER":       "guest",
	"RABBITMQ_PASSWORD":   "guest",
}

// loadConfig reads an .env style file at path. A missing file is not an error;
// every key has a default and the process environment wins over both.
func loadConfig(path string) (*Config, error) {
	v := viper.New()

	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}

	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.RateLimit.Enabled {
		if c.RateLimit.Burst < 1 {
			return fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got %d", c.RateLimit.Burst)
		}
		if c.RateLimit.RPS <= 0 {
			return fmt.Errorf("RATE_LIMIT_RPS must be greater than 0, got %g", c.RateLimit.RPS)
		}
	}

	return nil
}

func (c *Config) addr() string {
	return c.Host + ":" + c.Port
}

// databaseURL prefers DATABASE_URL and falls back to the POSTGRES_* parts.
func (c *Config) databaseURL() string {
	if c.DB.URL != "" {
		return c.DB.URL
	}
	return common.DSN(c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name)
}

func (c *Config) rabbitURL() string {
	return "amqp://" + c.RabbitMQ.User + ":" + c.RabbitMQ.Password + "@" + c.RabbitMQ.Host + ":" + c.RabbitMQ.Port + "/"
}
