package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	MySQL    MySQLConfig
	Redis    RedisConfig
	Razorpay RazorpayConfig
	Twilio   TwilioConfig
	JWT      JWTConfig
	Fare     FareConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr    string
	GinMode string
}

// MySQLConfig holds MySQL connection settings.
type MySQLConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig holds Redis connection settings. Redis backs the password
// reset OTP store only; the app runs without it if unset.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RazorpayConfig holds payment gateway credentials.
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
}

// TwilioConfig holds WhatsApp notification credentials. All three must be
// set or outbound notifications are disabled.
type TwilioConfig struct {
	AccountSID   string
	AuthToken    string
	WhatsAppFrom string
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// FareConfig holds fare computation defaults.
type FareConfig struct {
	DefaultRatePerKm float64
}

// DSN returns the MySQL connection string.
func (m *MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s",
		m.User, m.Password, m.Host, m.Port, m.DBName)
}

// Addr returns the Redis address in host:port format.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Load reads configuration from environment variables and an optional .env
// file. Env vars injected by docker-compose are picked up via AutomaticEnv.
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("APP_ADDR", ":8080")
	viper.SetDefault("GIN_MODE", "")

	viper.SetDefault("MYSQL_HOST", "127.0.0.1")
	viper.SetDefault("MYSQL_PORT", 3306)
	viper.SetDefault("MYSQL_USER", "root")
	viper.SetDefault("MYSQL_PASSWORD", "")
	viper.SetDefault("MYSQL_DB", "urbancabz")
	viper.SetDefault("MYSQL_MAX_OPEN_CONNS", 25)
	viper.SetDefault("MYSQL_MAX_IDLE_CONNS", 25)

	viper.SetDefault("REDIS_HOST", "")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("JWT_SECRET", "super-secret-key-change-me")
	viper.SetDefault("JWT_TTL", "24h")

	viper.SetDefault("FARE_RATE_PER_KM", 12.0)

	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Addr:    viper.GetString("APP_ADDR"),
			GinMode: viper.GetString("GIN_MODE"),
		},
		MySQL: MySQLConfig{
			Host:         viper.GetString("MYSQL_HOST"),
			Port:         viper.GetInt("MYSQL_PORT"),
			User:         viper.GetString("MYSQL_USER"),
			Password:     viper.GetString("MYSQL_PASSWORD"),
			DBName:       viper.GetString("MYSQL_DB"),
			MaxOpenConns: viper.GetInt("MYSQL_MAX_OPEN_CONNS"),
			MaxIdleConns: viper.GetInt("MYSQL_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Razorpay: RazorpayConfig{
			KeyID:     viper.GetString("RAZORPAY_KEY_ID"),
			KeySecret: viper.GetString("RAZORPAY_KEY_SECRET"),
		},
		Twilio: TwilioConfig{
			AccountSID:   viper.GetString("TWILIO_ACCOUNT_SID"),
			AuthToken:    viper.GetString("TWILIO_AUTH_TOKEN"),
			WhatsAppFrom: viper.GetString("TWILIO_WHATSAPP_FROM"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
			TTL:    viper.GetDuration("JWT_TTL"),
		},
		Fare: FareConfig{
			DefaultRatePerKm: viper.GetFloat64("FARE_RATE_PER_KM"),
		},
	}

	return cfg, nil
}
