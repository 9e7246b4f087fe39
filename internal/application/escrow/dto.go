package escrow

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/relove/backend/internal/domain/escrow"
)

// ReleaseRecord is one immutable row of the escrow release audit log
type ReleaseRecord struct {
	ID            uuid.UUID       `json:"id"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	OrderItemID   uuid.UUID       `json:"order_item_id"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason"`
	Notes         string          `json:"notes,omitempty"`
	ActorID       uuid.UUID       `json:"actor_id"`
	ActorRole     string          `json:"actor_role"`
	ReleasedAt    time.Time       `json:"released_at"`
}

// ToReleaseRecords maps ledger rows to their API representation
func ToReleaseRecords(rows []escrow.Release) []ReleaseRecord {
	out := make([]ReleaseRecord, len(rows))
	for i, r := range rows {
		out[i] = ReleaseRecord{
			ID:            r.ID,
			TransactionID: r.TransactionID,
			OrderItemID:   r.OrderItemID,
			Amount:        r.Amount,
			Reason:        string(r.Reason),
			Notes:         r.Notes,
			ActorID:       r.ActorID,
			ActorRole:     r.ActorRole.String(),
			ReleasedAt:    r.ReleasedAt,
		}
	}
	return out
}
