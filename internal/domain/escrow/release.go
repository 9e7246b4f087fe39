package escrow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/relove/backend/internal/domain/shared"
)

// ReleaseReason describes why an escrow hold was lifted
type ReleaseReason string

const (
	// ReleaseReasonWindowExpired is the automatic release after the dispute window closes
	ReleaseReasonWindowExpired ReleaseReason = "DISPUTE_WINDOW_EXPIRED"
	// ReleaseReasonAdminForced is a manual release by a platform operator
	ReleaseReasonAdminForced ReleaseReason = "ADMIN_FORCED"
)

// Release is an append-only audit record of a single escrow release action.
// Rows are inserted once and never updated or deleted.
type Release struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	TransactionID uuid.UUID       `json:"transaction_id" gorm:"type:uuid;not null;index"`
	OrderItemID   uuid.UUID       `json:"order_item_id" gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	Reason        ReleaseReason   `json:"reason" gorm:"type:varchar(32);not null"`
	Notes         string          `json:"notes" gorm:"type:text"`
	ActorID       uuid.UUID       `json:"actor_id" gorm:"type:uuid;not null"`
	ActorRole     shared.Role     `json:"actor_role" gorm:"type:varchar(16);not null"`
	ReleasedAt    time.Time       `json:"released_at" gorm:"not null"`
}

// TableName overrides the gorm table name
func (Release) TableName() string {
	return "escrow_releases"
}

// NewRelease creates a release audit record for the given transaction
func NewRelease(transactionID, orderItemID uuid.UUID, amount decimal.Decimal, reason ReleaseReason, notes string, actor shared.Actor) Release {
	return Release{
		ID:            uuid.New(),
		TransactionID: transactionID,
		OrderItemID:   orderItemID,
		Amount:        amount,
		Reason:        reason,
		Notes:         notes,
		ActorID:       actor.ID,
		ActorRole:     actor.Role,
		ReleasedAt:    time.Now(),
	}
}

// ReleaseRepository reads the append-only escrow release audit log. Rows are
// inserted by the order repository in the same transaction as the aggregate
// save and are never updated or deleted.
type ReleaseRepository interface {
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]Release, error)
}
