// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Trial                   `yaml:"trial"`
	Stripe                  `yaml:"stripe"`
	RabbitMQ                `yaml:"rabbitmq"`
	SMTP                    `yaml:"smtp"`
	Scheduler               `yaml:"scheduler"`
	Handoff                 `yaml:"handoff"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	RateLimit   float64       `yaml:"rate_limit_rps" env-default:"5"`
	RateBurst   int           `yaml:"rate_limit_burst" env-default:"10"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
	KeyPrefix    string        `yaml:"key_prefix" env-default:"barbershop:"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Trial holds the trial length and the day thresholds for upsell prompts.
type Trial struct {
	TrialDays       int    `yaml:"trial_days" env-default:"21"`
	SoftPromptDay   int    `yaml:"soft_prompt_day" env-default:"14"`
	UrgentPromptDay int    `yaml:"urgent_prompt_day" env-default:"18"`
	StrongPromptDay int    `yaml:"strong_prompt_day" env-default:"21"`
	Timezone        string `yaml:"timezone" env-default:"UTC"`
}

// Plan is a priced billing plan exposed by the pricing endpoint.
type Plan struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Interval    string `yaml:"interval" json:"interval"`
	AmountCents int64  `yaml:"amount_cents" json:"amount_cents"`
}

// Stripe настройки платёжного провайдера
type Stripe struct {
	SecretKey      string `yaml:"secret_key" env:"STRIPE_SECRET_KEY"`
	PublishableKey string `yaml:"publishable_key" env:"STRIPE_PUBLISHABLE_KEY"`
	WebhookSecret  string `yaml:"webhook_secret" env:"STRIPE_WEBHOOK_SECRET"`
	Currency       string `yaml:"currency" env-default:"usd"`
	Plans          []Plan `yaml:"plans"`
}

// RabbitMQ настройки подключения к брокеру
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"10"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"3s"`
}

// SMTP настройки почтового сервера
type SMTP struct {
	SMTPHost    string        `yaml:"host"`
	SMTPPort    string        `yaml:"port" env-default:"587"`
	SMTPUser    string        `yaml:"user"`
	SMTPPass    string        `yaml:"pass" env:"SMTP_PASS"`
	FromAddress string        `yaml:"from_address" env:"SMTP_FROM"`
	FromName    string        `yaml:"from_name" env-default:"Barbershop Manager"`
	StartTLS    bool          `yaml:"starttls" env-default:"true"`
	SMTPTimeout time.Duration `yaml:"timeout" env-default:"10s"`
}

// Scheduler настройки периодических задач
type Scheduler struct {
	Interval time.Duration `yaml:"interval" env-default:"24h"`
}

// Handoff настройки одноразовых кодов для перехода в веб-версию
type Handoff struct {
	CodeTTL time.Duration `yaml:"code_ttl" env-default:"5m"`
}

// MustLoad функция для загрузки конфига, возвращает конфиг, сгенерированный из config/config.go
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

// Location returns the time zone used to compute trial calendar days.
func (t Trial) Location() (*time.Location, error) {
	if t.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config.Trial.Location: %w", err)
	}
	return loc, nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  User: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWTToken:\n"+
			"  TokenTTL: %s\n"+
			"Trial:\n"+
			"  Days: %d (soft %d, urgent %d, strong %d, tz %s)\n"+
			"Scheduler:\n"+
			"  Interval: %s\n",
		c.Env,
		c.AddressRedis,
		c.User,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.TokenTTL,
		c.TrialDays, c.SoftPromptDay, c.UrgentPromptDay, c.StrongPromptDay, c.Timezone,
		c.Interval,
	)
}
