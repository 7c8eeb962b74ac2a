package mailer

import (
	"github.com/mateenikhtiyar/cim-backend/config"
	"github.com/mateenikhtiyar/cim-backend/internal/logging"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(ProvideMailService),
)

func ProvideMailService(cfg *config.Config, logger *logging.Service) (Dispatcher, error) {
	return NewService(&cfg.Mail, logger)
}
