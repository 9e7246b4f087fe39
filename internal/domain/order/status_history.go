package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/relove/backend/internal/domain/shared"
)

// StatusHistory is an append-only audit record of an item transition.
// Forced marks an admin override that bypassed the transition table.
type StatusHistory struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	OrderItemID uuid.UUID  `json:"order_item_id" gorm:"type:uuid;not null;index"`
	FromStatus  ItemStatus `json:"from_status" gorm:"type:varchar(32);not null"`
	ToStatus    ItemStatus `json:"to_status" gorm:"type:varchar(32);not null"`
	ActorID     uuid.UUID  `json:"actor_id" gorm:"type:uuid;not null"`
	ActorRole   string     `json:"actor_role" gorm:"type:varchar(16);not null"`
	Notes       string     `json:"notes" gorm:"type:text"`
	Forced      bool       `json:"forced" gorm:"not null;default:false"`
	ChangedAt   time.Time  `json:"changed_at" gorm:"not null"`
}

// TableName overrides the gorm table name
func (StatusHistory) TableName() string {
	return "status_histories"
}

func newStatusHistory(itemID uuid.UUID, from, to ItemStatus, actor shared.Actor, notes string, forced bool) StatusHistory {
	return StatusHistory{
		ID:          uuid.New(),
		OrderItemID: itemID,
		FromStatus:  from,
		ToStatus:    to,
		ActorID:     actor.ID,
		ActorRole:   actor.Role.String(),
		Notes:       notes,
		Forced:      forced,
		ChangedAt:   time.Now(),
	}
}
