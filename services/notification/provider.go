package notification

import (
	"context"

	"github.com/tech-arch1tect/stepup/config"
	"github.com/tech-arch1tect/stepup/services/logging"
	"github.com/tech-arch1tect/stepup/services/mail"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideEventSource(db *gorm.DB) EventSource {
	return NewPollingSource(db)
}

func ProvideWatcher(cfg *config.Config, source EventSource, mailer *mail.Service, logger *logging.Service) *Watcher {
	return NewWatcher(source, mailer, WatcherOptions{
		PollInterval: cfg.Notifications.PollInterval,
	}, logger)
}

// RegisterWatcher ties the watcher to the application lifecycle when
// notifications are enabled.
func RegisterWatcher(lc fx.Lifecycle, cfg *config.Config, watcher *Watcher) {
	if !cfg.Notifications.Enabled {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return watcher.Start()
		},
		OnStop: func(ctx context.Context) error {
			watcher.Stop()
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(ProvideEventSource),
	fx.Provide(ProvideWatcher),
	fx.Invoke(RegisterWatcher),
)
