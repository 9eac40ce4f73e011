package mail

import (
	"github.com/tech-arch1tect/stepup/config"
	"github.com/tech-arch1tect/stepup/services/logging"
	"go.uber.org/fx"
)

func ProvideMailService(cfg *config.Config, logger *logging.Service) (*Service, error) {
	transports, err := BuildChain(&cfg.Mail)
	if err != nil {
		return nil, err
	}
	return NewService(transports, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideMailService),
)
