package handoff

import (
	"github.com/tech-arch1tect/stepup/config"
	"github.com/tech-arch1tect/stepup/services/logging"
	"go.uber.org/fx"
)

func ProvideService(cfg *config.Config, logger *logging.Service) *Service {
	return NewService(cfg, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideService),
)
