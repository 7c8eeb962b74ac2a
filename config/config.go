package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig      `envPrefix:"CIM_APP_"`
	Server   ServerConfig   `envPrefix:"CIM_SERVER_"`
	Database DatabaseConfig `envPrefix:"CIM_DB_"`
	JWT      JWTConfig      `envPrefix:"CIM_JWT_"`
	Auth     AuthConfig     `envPrefix:"CIM_AUTH_"`
	Mail     MailConfig     `envPrefix:"CIM_MAIL_"`
	Log      LogConfig      `envPrefix:"CIM_LOG_"`
}

type AppConfig struct {
	Name        string `env:"NAME" envDefault:"CIM Marketplace"`
	URL         string `env:"URL" envDefault:"http://localhost:8080"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
}

type ServerConfig struct {
	Host string `env:"HOST" envDefault:"localhost"`
	Port string `env:"PORT" envDefault:"8080"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"cim.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type JWTConfig struct {
	SecretKey    string        `env:"SECRET_KEY,required"`
	Issuer       string        `env:"ISSUER" envDefault:"cim-backend"`
	AccessExpiry time.Duration `env:"ACCESS_EXPIRY" envDefault:"24h"`
}

type AuthConfig struct {
	BcryptCost              int           `env:"BCRYPT_COST" envDefault:"10"`
	ResetTokenLength        int           `env:"RESET_TOKEN_LENGTH" envDefault:"32"`
	ResetTokenExpiry        time.Duration `env:"RESET_TOKEN_EXPIRY" envDefault:"15m"`
	VerificationTokenLength int           `env:"VERIFICATION_TOKEN_LENGTH" envDefault:"32"`
	VerificationExpiry      time.Duration `env:"VERIFICATION_EXPIRY" envDefault:"24h"`
}

type MailConfig struct {
	Host        string `env:"HOST" envDefault:"localhost"`
	Port        int    `env:"PORT" envDefault:"587"`
	Username    string `env:"USERNAME"`
	Password    string `env:"PASSWORD"`
	Encryption  string `env:"ENCRYPTION" envDefault:"starttls"`
	FromAddress string `env:"FROM_ADDRESS"`
	FromName    string `env:"FROM_NAME" envDefault:"CIM Marketplace"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

func LoadConfig(cfg *Config) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	return env.Parse(cfg)
}
