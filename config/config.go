package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App               AppConfig           `envPrefix:"STEPUP_APP_"`
	Server            ServerConfig        `envPrefix:"STEPUP_SERVER_"`
	Log               LogConfig           `envPrefix:"STEPUP_LOG_"`
	Database          DatabaseConfig      `envPrefix:"STEPUP_DB_"`
	Session           SessionConfig       `envPrefix:"STEPUP_SESSION_"`
	Mail              MailConfig          `envPrefix:"STEPUP_MAIL_"`
	Verification      VerificationConfig  `envPrefix:"STEPUP_VERIFICATION_"`
	AdminVerification VerificationConfig  `envPrefix:"STEPUP_ADMIN_VERIFICATION_"`
	TrustedDevice     TrustedDeviceConfig `envPrefix:"STEPUP_TRUSTED_DEVICE_"`
	Handoff           HandoffConfig       `envPrefix:"STEPUP_HANDOFF_"`
	Notifications     NotificationConfig  `envPrefix:"STEPUP_NOTIFICATIONS_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"Rezqi"`
	URL  string `env:"URL" envDefault:"http://localhost:8080"`
}

type ServerConfig struct {
	Host string `env:"HOST" envDefault:"localhost"`
	Port string `env:"PORT" envDefault:"8080"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"stepup.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type SessionConfig struct {
	Enabled  bool          `env:"ENABLED" envDefault:"true"`
	Store    string        `env:"STORE" envDefault:"memory"`
	Name     string        `env:"NAME" envDefault:"stepup_session"`
	MaxAge   time.Duration `env:"MAX_AGE" envDefault:"30m"`
	Path     string        `env:"PATH" envDefault:"/"`
	Domain   string        `env:"DOMAIN"`
	Secure   bool          `env:"SECURE" envDefault:"false"`
	HttpOnly bool          `env:"HTTP_ONLY" envDefault:"true"`
	SameSite string        `env:"SAME_SITE" envDefault:"lax"`
}

type MailConfig struct {
	FromAddress string `env:"FROM_ADDRESS" envDefault:"manage@kareemamged.com"`
	FromName    string `env:"FROM_NAME" envDefault:"رزقي - موقع الزواج الإسلامي"`

	// RelayURL is the primary transport: the local HTTP relay's
	// send endpoint. Empty disables the relay transport.
	RelayURL     string        `env:"RELAY_URL" envDefault:"http://localhost:3001/send-email"`
	RelayTimeout time.Duration `env:"RELAY_TIMEOUT" envDefault:"10s"`

	// ChainFile optionally overrides the transport chain with a YAML
	// definition (see services/mail.LoadChainFile).
	ChainFile string `env:"CHAIN_FILE"`

	SMTP SMTPConfig `envPrefix:"SMTP_"`
}

type SMTPConfig struct {
	Host       string `env:"HOST"`
	Port       int    `env:"PORT" envDefault:"587"`
	Username   string `env:"USERNAME"`
	Password   string `env:"PASSWORD"`
	Encryption string `env:"ENCRYPTION" envDefault:"starttls"`
}

type VerificationConfig struct {
	CodeTTL     time.Duration `env:"CODE_TTL" envDefault:"10m"`
	MaxPerHour  int           `env:"MAX_PER_HOUR" envDefault:"5"`
	ResendDelay time.Duration `env:"RESEND_DELAY" envDefault:"60s"`

	// MaxAttempts bounds wrong-code guesses per issued code. Zero
	// disables the counter and leaves a code guessable until it
	// expires or is superseded.
	MaxAttempts int `env:"MAX_ATTEMPTS" envDefault:"0"`
}

type TrustedDeviceConfig struct {
	Enabled bool          `env:"ENABLED" envDefault:"true"`
	TTL     time.Duration `env:"TTL" envDefault:"24h"`
}

type HandoffConfig struct {
	SecretKey string        `env:"SECRET_KEY"`
	Issuer    string        `env:"ISSUER" envDefault:"stepup"`
	Expiry    time.Duration `env:"EXPIRY" envDefault:"5m"`
}

type NotificationConfig struct {
	Enabled       bool          `env:"ENABLED" envDefault:"true"`
	PollInterval  time.Duration `env:"POLL_INTERVAL" envDefault:"15s"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"10m"`
}

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	return env.Parse(cfg)
}
