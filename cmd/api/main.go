package main

import (
	"github.com/mateenikhtiyar/cim-backend/config"
	"github.com/mateenikhtiyar/cim-backend/internal/auth"
	"github.com/mateenikhtiyar/cim-backend/internal/database"
	"github.com/mateenikhtiyar/cim-backend/internal/logging"
	"github.com/mateenikhtiyar/cim-backend/internal/mailer"
	"github.com/mateenikhtiyar/cim-backend/internal/principal"
	"github.com/mateenikhtiyar/cim-backend/internal/server"
	"github.com/mateenikhtiyar/cim-backend/internal/session"
	"go.uber.org/fx"
)

func main() {
	models := append(principal.Models(), &auth.VerificationToken{})

	app := fx.New(
		config.Module,
		logging.Module,
		fx.Supply(database.WithModels(models...)),
		database.Module,
		principal.Module,
		session.Module,
		mailer.Module,
		auth.Module,
		server.Module,
	)

	app.Run()
}
