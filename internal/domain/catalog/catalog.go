package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FeeTier is a seller-specific platform-fee schedule. The percentage in
// force at order creation is snapshotted onto the order item and never
// recomputed, even if the seller's tier later changes.
type FeeTier string

const (
	FeeTierStandard FeeTier = "STANDARD"
	FeeTierTrusted  FeeTier = "TRUSTED"
	FeeTierPro      FeeTier = "PRO"
)

// IsValid checks if the tier is a known FeeTier
func (t FeeTier) IsValid() bool {
	switch t {
	case FeeTierStandard, FeeTierTrusted, FeeTierPro:
		return true
	}
	return false
}

// String returns the string representation of FeeTier
func (t FeeTier) String() string {
	return string(t)
}

// Percentage returns the platform fee percentage for the tier
func (t FeeTier) Percentage() decimal.Decimal {
	switch t {
	case FeeTierTrusted:
		return decimal.NewFromInt(7)
	case FeeTierPro:
		return decimal.NewFromInt(5)
	default:
		return decimal.NewFromInt(10)
	}
}

// ProductCatalog is the port to the product listing collaborator.
// The engine flips listings between sold and active on item transitions;
// everything else about the catalog is out of scope.
type ProductCatalog interface {
	// MarkSold removes a listing from sale after payment confirmation
	MarkSold(ctx context.Context, productID uuid.UUID) error
	// MarkActive returns a listing to sale after cancellation or expiry
	MarkActive(ctx context.Context, productID uuid.UUID) error
}

// SellerDirectory resolves seller-side facts the engine needs at
// order-creation and payout time.
type SellerDirectory interface {
	// FeeTier returns the seller's current fee tier
	FeeTier(ctx context.Context, sellerID uuid.UUID) (FeeTier, error)
	// PayoutAccount returns the seller's gateway account reference
	PayoutAccount(ctx context.Context, sellerID uuid.UUID) (string, error)
}
