package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/relove/backend/internal/domain/escrow"
)

// Transaction is the escrow ledger row for one order item. It carries the
// captured amount, the fee split snapshotted at purchase time, and the
// escrow state machine. One transaction exists per item once the order is
// paid; the zero EscrowStatus means no funds were ever captured.
type Transaction struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrderItemID    uuid.UUID       `json:"order_item_id" gorm:"type:uuid;not null;uniqueIndex"`
	ProviderTxnRef string          `json:"provider_txn_ref" gorm:"type:varchar(255)"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	PlatformFee    decimal.Decimal `json:"platform_fee" gorm:"type:numeric(12,2);not null"`
	SellerAmount   decimal.Decimal `json:"seller_amount" gorm:"type:numeric(12,2);not null"`
	FeePercent     decimal.Decimal `json:"fee_percent" gorm:"type:numeric(5,2);not null"`
	EscrowStatus   escrow.Status   `json:"escrow_status" gorm:"type:varchar(32);not null;default:''"`
	ReleaseDueAt   *time.Time      `json:"release_due_at"`
	DisputeOpen    bool            `json:"dispute_open" gorm:"not null;default:false"`
	PayoutRef      string          `json:"payout_ref" gorm:"type:varchar(255)"`
	RefundRef      string          `json:"refund_ref" gorm:"type:varchar(255)"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TableName overrides the gorm table name
func (Transaction) TableName() string {
	return "transactions"
}

// Captured reports whether buyer funds were ever taken for this item
func (t *Transaction) Captured() bool {
	return t.EscrowStatus.Captured()
}
