package database

import (
	"github.com/mateenikhtiyar/cim-backend/config"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type ModelsOption struct {
	models []any
}

func WithModels(models ...any) *ModelsOption {
	return &ModelsOption{models: models}
}

var Module = fx.Options(
	fx.Provide(ProvideDatabaseFx),
)

func ProvideDatabaseFx(cfg *config.Config, modelsOpt *ModelsOption) (*gorm.DB, error) {
	if modelsOpt == nil {
		modelsOpt = &ModelsOption{}
	}
	return Open(cfg.Database, modelsOpt.models...)
}
