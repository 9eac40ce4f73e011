package trusteddevice

import (
	"context"
	"time"

	"github.com/tech-arch1tect/stepup/config"
	"github.com/tech-arch1tect/stepup/services/logging"
	"github.com/tech-arch1tect/stepup/services/verification"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func ProvideService(db *gorm.DB, cfg *config.Config, logger *logging.Service) *Service {
	return NewService(db, cfg, logger)
}

func ProvideDeviceGate(s *Service) verification.DeviceGate {
	return s
}

// RegisterCleanup drops expired trust records on the same cadence as
// the verification sweeper.
func RegisterCleanup(lc fx.Lifecycle, cfg *config.Config, svc *Service, logger *logging.Service) {
	interval := cfg.Notifications.SweepInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	done := make(chan struct{})
	stopped := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer close(stopped)
				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				for {
					select {
					case <-done:
						return
					case <-ticker.C:
						if _, err := svc.CleanupExpired(); err != nil && logger != nil {
							logger.Warn("trusted device cleanup failed", zap.Error(err))
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(done)
			select {
			case <-stopped:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(ProvideService),
	fx.Provide(ProvideDeviceGate),
	fx.Invoke(RegisterCleanup),
)
