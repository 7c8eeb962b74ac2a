// Command inviterepair is a one-off batch job that normalizes deal
// invitation records and links them to buyer accounts that registered after
// the invitation was sent. It talks to the persistence layer directly and is
// independent of the API process.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mateenikhtiyar/cim-backend/config"
	"github.com/mateenikhtiyar/cim-backend/internal/database"
	"github.com/mateenikhtiyar/cim-backend/internal/logging"
	"github.com/mateenikhtiyar/cim-backend/internal/principal"
)

func main() {
	cfg := &config.Config{}
	if err := config.LoadConfig(cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.NewLoggingService(cfg)
	if err != nil {
		log.Fatalf("failed to initialize logging: %v", err)
	}
	defer logger.Sync()

	db, err := database.Open(cfg.Database, &principal.Buyer{}, &principal.DealInvitation{})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := principal.RepairInvitations(ctx, db, logger)
	if err != nil {
		log.Fatalf("invitation repair failed: %v", err)
	}

	fmt.Printf("scanned %d invitations: %d emails normalized, %d buyers linked\n",
		report.Scanned, report.EmailsNormalized, report.BuyersLinked)
}
