package app

import (
	"fmt"

	"github.com/tech-arch1tect/stepup/config"
	"github.com/tech-arch1tect/stepup/database"
	"github.com/tech-arch1tect/stepup/internal/httpapi"
	"github.com/tech-arch1tect/stepup/server"
	"github.com/tech-arch1tect/stepup/services/handoff"
	"github.com/tech-arch1tect/stepup/services/logging"
	"github.com/tech-arch1tect/stepup/services/mail"
	"github.com/tech-arch1tect/stepup/services/notification"
	"github.com/tech-arch1tect/stepup/services/trusteddevice"
	"github.com/tech-arch1tect/stepup/services/verification"
	"github.com/tech-arch1tect/stepup/session"
	"go.uber.org/fx"
)

// Builder assembles the application. The default assembly carries the
// full verification stack; WithFxOptions lets embedders add or replace
// pieces.
type Builder struct {
	config    *config.Config
	models    []any
	fxOptions []fx.Option
	errors    []error
}

func NewApp() *Builder {
	return &Builder{
		models:    make([]any, 0),
		fxOptions: make([]fx.Option, 0),
		errors:    make([]error, 0),
	}
}

func (b *Builder) addError(msg string) {
	b.errors = append(b.errors, fmt.Errorf("%s", msg))
}

func (b *Builder) WithConfig(cfg *config.Config) *Builder {
	if cfg == nil {
		b.addError("config cannot be nil")
		return b
	}
	b.config = cfg
	return b
}

func (b *Builder) WithAutoConfig() *Builder {
	cfg := &config.Config{}
	if err := config.LoadConfig(cfg); err != nil {
		b.addError(fmt.Sprintf("failed to load config: %v", err))
		return b
	}
	b.config = cfg
	return b
}

// WithModels adds extra models to auto-migration on top of the stack's
// own tables.
func (b *Builder) WithModels(models ...any) *Builder {
	b.models = append(b.models, models...)
	return b
}

func (b *Builder) WithFxOptions(opts ...fx.Option) *Builder {
	b.fxOptions = append(b.fxOptions, opts...)
	return b
}

func (b *Builder) Build() (*App, error) {
	if len(b.errors) > 0 {
		return nil, fmt.Errorf("configuration errors: %v", b.errors)
	}

	if b.config == nil {
		if b.WithAutoConfig(); len(b.errors) > 0 {
			return nil, fmt.Errorf("configuration errors: %v", b.errors)
		}
	}

	logger, err := logging.NewService(logging.Config{
		Level:      logging.LogLevel(b.config.Log.Level),
		Format:     b.config.Log.Format,
		OutputPath: b.config.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	models := append([]any{
		&verification.VerificationCode{},
		&trusteddevice.TrustedDevice{},
		&notification.Notification{},
	}, b.models...)

	db, err := database.ProvideDatabase(*b.config, database.WithModels(models...), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	application := &App{
		config: b.config,
		logger: logger,
		db:     db,
	}

	options := []fx.Option{
		fx.Supply(b.config),
		fx.Supply(logger),
		fx.Supply(db),
		fx.NopLogger,
		server.NewProvider(),
		mail.Module,
		session.Module,
		verification.Module,
		trusteddevice.Module,
		notification.Module,
		handoff.Module,
		httpapi.Module,
	}
	options = append(options, b.fxOptions...)
	options = append(options, fx.Invoke(func(srv *server.Server) {
		application.server = srv
	}))

	application.fx = fx.New(options...)
	return application, nil
}
