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
	StorageConnectionString string `yaml:"storage_connection_string" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RabbitMQ                `yaml:"rabbitmq"`
	Mail                    `yaml:"mail"`
	Stripe                  `yaml:"stripe"`
	Course                  `yaml:"course"`
	PaymentSync             `yaml:"payment_sync"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	RateLimit   float64       `yaml:"rate_limit" env-default:"20"`
	RateBurst   int           `yaml:"rate_burst" env-default:"40"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
	CacheTTL     time.Duration `yaml:"cache_ttl" env-default:"1h"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey    string        `yaml:"jwt_secret_key" env-required:"true"`
	TokenTTL        time.Duration `yaml:"token_ttl" env-default:"15m"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env-default:"168h"`
}

// RabbitMQ параметры подключения к брокеру уведомлений
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// Mail настройки отправки писем. Provider: smtp, sendgrid или console.
type Mail struct {
	Provider    string `yaml:"provider" env-default:"console"`
	From        string `yaml:"from"`
	SMTPHost    string `yaml:"smtp_host"`
	SMTPPort    int    `yaml:"smtp_port" env-default:"587"`
	SMTPUser    string `yaml:"smtp_user"`
	SMTPPass    string `yaml:"smtp_password"`
	SendGridKey string `yaml:"sendgrid_key"`
}

// Stripe настройки платёжного шлюза. Пустой SecretKey отключает интеграцию.
type Stripe struct {
	SecretKey  string        `yaml:"secret_key"`
	APIURL     string        `yaml:"api_url" env-default:"https://api.stripe.com"`
	Currency   string        `yaml:"currency" env-default:"usd"`
	SuccessURL string        `yaml:"success_url" env-default:"http://localhost:8080/"`
	Timeout    time.Duration `yaml:"timeout" env-default:"10s"`
}

// Course настройки курсов
type Course struct {
	UpdateCooldown time.Duration `yaml:"update_cooldown" env-default:"4h"`
}

// PaymentSync расписание синхронизации статусов оплат
type PaymentSync struct {
	Schedule string `yaml:"schedule" env-default:"@every 10m"`
}

// MustLoad функция для загрузки конфига из файла, путь к которому лежит в CONFIG_PATH
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

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Redis: %s\n"+
			"RabbitMQ retries: %d\n"+
			"Mail provider: %s\n"+
			"Stripe enabled: %t\n"+
			"Course update cooldown: %s\n",
		c.Env,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.AddressRedis,
		c.RabbitMQMaxRetries,
		c.Provider,
		c.SecretKey != "",
		c.UpdateCooldown,
	)
}
