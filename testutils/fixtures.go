package testutils

import (
	"time"

	"github.com/mateenikhtiyar/cim-backend/config"
	"golang.org/x/crypto/bcrypt"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "Test Marketplace",
			URL:         "http://localhost:8080",
			FrontendURL: "http://localhost:3000",
		},
		Auth: config.AuthConfig{
			BcryptCost:              bcrypt.MinCost,
			ResetTokenLength:        32,
			ResetTokenExpiry:        15 * time.Minute,
			VerificationTokenLength: 32,
			VerificationExpiry:      24 * time.Hour,
		},
		JWT: config.JWTConfig{
			SecretKey:    "test-secret-key-32-chars-long!!",
			Issuer:       "test-issuer",
			AccessExpiry: 15 * time.Minute,
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			DSN:    ":memory:",
		},
	}
}
