package verification

import (
	"context"
	"time"

	"github.com/tech-arch1tect/stepup/config"
	"github.com/tech-arch1tect/stepup/services/logging"
	"github.com/tech-arch1tect/stepup/services/mail"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services bundles the per-realm verification services so handlers can
// select by realm without two injection sites.
type Services struct {
	User  *Service
	Admin *Service
}

func (s *Services) ForRealm(realm Realm) *Service {
	if realm == RealmAdmin {
		return s.Admin
	}
	return s.User
}

func ProvideCodeStore(db *gorm.DB, logger *logging.Service) *CodeStore {
	return NewCodeStore(db, logger)
}

func ProvideServices(cfg *config.Config, store *CodeStore, mailer *mail.Service, gate DeviceGate, logger *logging.Service) *Services {
	return &Services{
		User:  NewService(UserPolicy(cfg), store, mailer, gate, logger),
		Admin: NewService(AdminPolicy(cfg), store, mailer, gate, logger),
	}
}

// RegisterSweeper runs the expired-code janitor on a fixed interval for
// the lifetime of the application.
func RegisterSweeper(lc fx.Lifecycle, cfg *config.Config, store *CodeStore, logger *logging.Service) {
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
						if _, err := store.SweepExpired(); err != nil && logger != nil {
							logger.Warn("scheduled verification sweep failed", zap.Error(err))
						}
					}
				}
			}()
			if logger != nil {
				logger.Info("verification code sweeper started",
					zap.Duration("interval", interval))
			}
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
	fx.Provide(ProvideCodeStore),
	fx.Provide(ProvideServices),
	fx.Invoke(RegisterSweeper),
)
