package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Payment  PaymentConfig
	Admin    AdminConfig
	WhatsApp WhatsAppConfig
}

type ServerConfig struct {
	Port    int
	Env     string // "development", "production"
	BaseURL string // public base URL for gateway callbacks
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Pass         string
	Charset      string
	MaxIdleConns int
	MaxOpenConns int
	LogQueries   bool // echo SQL at info level, for development
}

type RedisConfig struct {
	Addr string
	Pass string
	DB   int
}

type PaymentConfig struct {
	Currency      string
	PendingExpiry time.Duration
	Paystack      PaystackConfig
	Flutterwave   FlutterwaveConfig
}

type PaystackConfig struct {
	SecretKey string
}

type FlutterwaveConfig struct {
	SecretKey  string
	SecretHash string // webhook verif-hash
}

type AdminConfig struct {
	APIKey string
}

type WhatsAppConfig struct {
	BaseURL     string
	APIKey      string
	Session     string
	CountryCode string // prefix applied to local phone numbers
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")
	viper.SetDefault("DB_MAX_IDLE_CONNS", 10)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("PAYMENT_CURRENCY", "NGN")
	viper.SetDefault("PAYMENT_PENDING_EXPIRY", "24h")
	viper.SetDefault("WHATSAPP_BASE_URL", "http://localhost:3000")
	viper.SetDefault("WHATSAPP_SESSION", "default")
	viper.SetDefault("WHATSAPP_COUNTRY_CODE", "234")

	expiry, err := time.ParseDuration(viper.GetString("PAYMENT_PENDING_EXPIRY"))
	if err != nil {
		expiry = 24 * time.Hour
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:    viper.GetInt("APP_PORT"),
			Env:     viper.GetString("APP_ENV"),
			BaseURL: viper.GetString("APP_BASE_URL"),
		},
		Database: DatabaseConfig{
			Host:         viper.GetString("DB_HOST"),
			Port:         viper.GetString("DB_PORT"),
			Name:         viper.GetString("DB_NAME"),
			User:         viper.GetString("DB_USER"),
			Pass:         viper.GetString("DB_PASS"),
			Charset:      viper.GetString("DB_CHARSET"),
			MaxIdleConns: viper.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns: viper.GetInt("DB_MAX_OPEN_CONNS"),
			LogQueries:   viper.GetString("APP_ENV") == "development",
		},
		Redis: RedisConfig{
			Addr: viper.GetString("REDIS_ADDR"),
			Pass: viper.GetString("REDIS_PASS"),
			DB:   viper.GetInt("REDIS_DB"),
		},
		Payment: PaymentConfig{
			Currency:      viper.GetString("PAYMENT_CURRENCY"),
			PendingExpiry: expiry,
			Paystack: PaystackConfig{
				SecretKey: viper.GetString("PAYSTACK_SECRET_KEY"),
			},
			Flutterwave: FlutterwaveConfig{
				SecretKey:  viper.GetString("FLUTTERWAVE_SECRET_KEY"),
				SecretHash: viper.GetString("FLUTTERWAVE_SECRET_HASH"),
			},
		},
		Admin: AdminConfig{
			APIKey: viper.GetString("ADMIN_API_KEY"),
		},
		WhatsApp: WhatsAppConfig{
			BaseURL:     viper.GetString("WHATSAPP_BASE_URL"),
			APIKey:      viper.GetString("WHATSAPP_API_KEY"),
			Session:     viper.GetString("WHATSAPP_SESSION"),
			CountryCode: viper.GetString("WHATSAPP_COUNTRY_CODE"),
		},
	}

	if cfg.Database.Name == "" {
		log.Println("WARNING: DB_NAME is not set")
	}
	if cfg.Admin.APIKey == "" {
		log.Println("WARNING: ADMIN_API_KEY is not set")
	}

	return cfg, nil
}

// LoadDatabaseOnly loads just the database section, for bootstrap runs.
func LoadDatabaseOnly() (*DatabaseConfig, error) {
	_ = godotenv.Load()
	viper.AutomaticEnv()
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")
	return &DatabaseConfig{
		Host:    viper.GetString("DB_HOST"),
		Port:    viper.GetString("DB_PORT"),
		Name:    viper.GetString("DB_NAME"),
		User:    viper.GetString("DB_USER"),
		Pass:    viper.GetString("DB_PASS"),
		Charset: viper.GetString("DB_CHARSET"),
	}, nil
}

// DSN returns the MySQL DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}
