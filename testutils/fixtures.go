package testutils

import (
	"time"

	"github.com/tech-arch1tect/stepup/config"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "Test App",
			URL:  "http://localhost:8080",
		},
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			DSN:         ":memory:",
			AutoMigrate: true,
		},
		Session: config.SessionConfig{
			Enabled:  true,
			Store:    "memory",
			Name:     "test_session",
			MaxAge:   30 * time.Minute,
			Path:     "/",
			HttpOnly: true,
			SameSite: "lax",
		},
		Mail: config.MailConfig{
			FromAddress:  "noreply@example.com",
			FromName:     "Test Sender",
			RelayURL:     "http://localhost:3001/send-email",
			RelayTimeout: 2 * time.Second,
		},
		Verification: config.VerificationConfig{
			CodeTTL:     10 * time.Minute,
			MaxPerHour:  5,
			ResendDelay: 60 * time.Second,
		},
		AdminVerification: config.VerificationConfig{
			CodeTTL:     10 * time.Minute,
			MaxPerHour:  5,
			ResendDelay: 60 * time.Second,
		},
		TrustedDevice: config.TrustedDeviceConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		Handoff: config.HandoffConfig{
			SecretKey: "test-secret-key-32-chars-long!!",
			Issuer:    "test-issuer",
			Expiry:    5 * time.Minute,
		},
		Notifications: config.NotificationConfig{
			Enabled:       true,
			PollInterval:  50 * time.Millisecond,
			SweepInterval: time.Minute,
		},
	}
}

var TestSubjects = struct {
	User  string
	Admin string
	Email string
}{
	User:  "user-7f3c1a22",
	Admin: "admin-19bd44e0",
	Email: "test@example.com",
}
