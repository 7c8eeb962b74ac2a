package principal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mateenikhtiyar/cim-backend/internal/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DealInvitation records a seller inviting a buyer (possibly not yet
// registered) to a deal. Older records were written with mixed-case emails
// and without a buyer reference; RepairInvitations fixes both.
type DealInvitation struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	DealID       string    `json:"deal_id" gorm:"index;not null"`
	InvitedEmail string    `json:"invited_email" gorm:"index;not null"`
	BuyerID      string    `json:"buyer_id" gorm:"index"`
	Status       string    `json:"status" gorm:"default:pending"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (DealInvitation) TableName() string {
	return "deal_invitations"
}

func (i *DealInvitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

type RepairReport struct {
	Scanned          int
	EmailsNormalized int
	BuyersLinked     int
}

// RepairInvitations is the one-off batch pass run by cmd/inviterepair. It
// lower-cases invited emails and backfills missing buyer ids where a buyer
// account now exists for the invited address.
func RepairInvitations(ctx context.Context, db *gorm.DB, logger *logging.Service) (*RepairReport, error) {
	var invitations []DealInvitation
	if err := db.WithContext(ctx).Find(&invitations).Error; err != nil {
		return nil, fmt.Errorf("failed to load deal invitations: %w", err)
	}

	store := NewStore(db, logger)
	report := &RepairReport{Scanned: len(invitations)}

	for i := range invitations {
		inv := &invitations[i]
		updates := map[string]any{}

		if lowered := strings.ToLower(strings.TrimSpace(inv.InvitedEmail)); lowered != inv.InvitedEmail {
			inv.InvitedEmail = lowered
			updates["invited_email"] = lowered
			report.EmailsNormalized++
		}

		if inv.BuyerID == "" {
			acct, err := store.FindByEmail(ctx, RoleBuyer, inv.InvitedEmail)
			switch {
			case err == nil:
				updates["buyer_id"] = acct.ID
				report.BuyersLinked++
			case errors.Is(err, ErrNotFound):
				// invited buyer has not registered yet, leave unlinked
			default:
				return nil, err
			}
		}

		if len(updates) == 0 {
			continue
		}
		if err := db.WithContext(ctx).Model(&DealInvitation{}).Where("id = ?", inv.ID).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to repair invitation %s: %w", inv.ID, err)
		}
	}

	logger.Info("deal invitation repair finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("emails_normalized", report.EmailsNormalized),
		zap.Int("buyers_linked", report.BuyersLinked))

	return report, nil
}
