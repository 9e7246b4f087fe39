package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/relove/backend/internal/domain/order"
)

// ==================== Requests ====================

// PlaceOrderRequest represents a request to place a new order
type PlaceOrderRequest struct {
	ShippingAddressID uuid.UUID             `json:"shipping_address_id" binding:"required"`
	PaymentMethod     string                `json:"payment_method" binding:"required,min=1,max=32"`
	Items             []PlaceOrderItemInput `json:"items" binding:"required,min=1,dive"`
}

// PlaceOrderItemInput represents one item of the place order request
type PlaceOrderItemInput struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	SellerID  uuid.UUID       `json:"seller_id" binding:"required"`
	Title     string          `json:"title" binding:"required,min=1,max=255"`
	Price     decimal.Decimal `json:"price" binding:"required"`
}

// EvidenceRequest carries proof photo URLs for pickup and delivery confirmations
type EvidenceRequest struct {
	Evidence []string `json:"evidence" binding:"required,min=1,dive,url"`
}

// CancelItemRequest represents a request to cancel an order item
type CancelItemRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// DisputeRequest represents a buyer's request to freeze escrow release
type DisputeRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ==================== Responses ====================

// TransactionResponse is the escrow view of one order item
type TransactionResponse struct {
	ID           uuid.UUID       `json:"id"`
	Amount       decimal.Decimal `json:"amount"`
	PlatformFee  decimal.Decimal `json:"platform_fee"`
	SellerAmount decimal.Decimal `json:"seller_amount"`
	FeePercent   decimal.Decimal `json:"fee_percent"`
	EscrowStatus string          `json:"escrow_status"`
	ReleaseDueAt *time.Time      `json:"release_due_at,omitempty"`
	DisputeOpen  bool            `json:"dispute_open"`
}

// OrderItemResponse is the API view of one order item
type OrderItemResponse struct {
	ID           uuid.UUID           `json:"id"`
	ProductID    uuid.UUID           `json:"product_id"`
	SellerID     uuid.UUID           `json:"seller_id"`
	Title        string              `json:"title"`
	Price        decimal.Decimal     `json:"price"`
	Status       string              `json:"status"`
	CancelReason string              `json:"cancel_reason,omitempty"`
	DeliveredAt  *time.Time          `json:"delivered_at,omitempty"`
	Transaction  TransactionResponse `json:"transaction"`
}

// OrderResponse is the API view of an order aggregate
type OrderResponse struct {
	ID               uuid.UUID           `json:"id"`
	OrderCode        string              `json:"order_code"`
	BuyerID          uuid.UUID           `json:"buyer_id"`
	PaymentMethod    string              `json:"payment_method"`
	PaymentIntentRef string              `json:"payment_intent_ref,omitempty"`
	TotalAmount      decimal.Decimal     `json:"total_amount"`
	Status           string              `json:"status"`
	StatusForced     bool                `json:"status_forced"`
	PaidAt           *time.Time          `json:"paid_at,omitempty"`
	ShippedAt        *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt      *time.Time          `json:"delivered_at,omitempty"`
	Items            []OrderItemResponse `json:"items"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// StatusHistoryResponse is one audit row of an item's transition log
type StatusHistoryResponse struct {
	ID         uuid.UUID `json:"id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ActorID    uuid.UUID `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	Notes      string    `json:"notes,omitempty"`
	Forced     bool      `json:"forced"`
	ChangedAt  time.Time `json:"changed_at"`
}

// ToOrderResponse maps an order aggregate to its API representation
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:           item.ID,
			ProductID:    item.ProductID,
			SellerID:     item.SellerID,
			Title:        item.Title,
			Price:        item.Price,
			Status:       item.Status.String(),
			CancelReason: item.CancelReason,
			DeliveredAt:  item.DeliveredAt,
			Transaction: TransactionResponse{
				ID:           item.Transaction.ID,
				Amount:       item.Transaction.Amount,
				PlatformFee:  item.Transaction.PlatformFee,
				SellerAmount: item.Transaction.SellerAmount,
				FeePercent:   item.Transaction.FeePercent,
				EscrowStatus: item.Transaction.EscrowStatus.String(),
				ReleaseDueAt: item.Transaction.ReleaseDueAt,
				DisputeOpen:  item.Transaction.DisputeOpen,
			},
		}
	}
	return OrderResponse{
		ID:               o.ID,
		OrderCode:        o.OrderCode,
		BuyerID:          o.BuyerID,
		PaymentMethod:    o.PaymentMethod,
		PaymentIntentRef: o.PaymentIntentRef,
		TotalAmount:      o.TotalAmount,
		Status:           o.Status.String(),
		StatusForced:     o.StatusForced,
		PaidAt:           o.PaidAt,
		ShippedAt:        o.ShippedAt,
		DeliveredAt:      o.DeliveredAt,
		Items:            items,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// ToStatusHistoryResponses maps audit rows to their API representation
func ToStatusHistoryResponses(rows []order.StatusHistory) []StatusHistoryResponse {
	out := make([]StatusHistoryResponse, len(rows))
	for i, h := range rows {
		out[i] = StatusHistoryResponse{
			ID:         h.ID,
			FromStatus: h.FromStatus.String(),
			ToStatus:   h.ToStatus.String(),
			ActorID:    h.ActorID,
			ActorRole:  h.ActorRole,
			Notes:      h.Notes,
			Forced:     h.Forced,
			ChangedAt:  h.ChangedAt,
		}
	}
	return out
}
