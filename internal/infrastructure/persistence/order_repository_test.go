package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/relove/backend/internal/domain/order"
	"github.com/relove/backend/internal/domain/shared"
)

// newMockOrderRepository creates a GormOrderRepository with a mocked SQL connection
func newMockOrderRepository(t *testing.T) (*GormOrderRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormOrderRepository(gormDB), mock, mockDB
}

func orderRows(orderID uuid.UUID, code string, buyerID uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "order_code", "buyer_id", "shipping_address_id", "payment_method",
		"total_amount", "status", "status_forced", "payment_intent_ref", "version",
	}).AddRow(
		orderID, code, buyerID, uuid.New(), "card",
		decimal.NewFromInt(100), order.OrderStatusPending, false, "pi_123", 1,
	)
}

func TestGormOrderRepository_FindByID(t *testing.T) {
	t.Run("finds existing order with items", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()
		buyerID := uuid.New()
		itemID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE orders\.id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(orderID, 1).
			WillReturnRows(orderRows(orderID, "RLV-20260830120000-ABCD1234", buyerID))

		itemRows := sqlmock.NewRows([]string{"id", "order_id", "product_id", "seller_id", "title", "price", "status"}).
			AddRow(itemID, orderID, uuid.New(), uuid.New(), "Vintage jacket", decimal.NewFromInt(100), order.ItemStatusPending)
		mock.ExpectQuery(`SELECT \* FROM "order_items" WHERE "order_items"\."order_id" = \$1 ORDER BY order_items\.created_at ASC`).
			WithArgs(orderID).
			WillReturnRows(itemRows)

		txnRows := sqlmock.NewRows([]string{"id", "order_item_id", "amount", "platform_fee", "seller_amount", "fee_percent", "escrow_status"}).
			AddRow(uuid.New(), itemID, decimal.NewFromInt(100), decimal.NewFromInt(10), decimal.NewFromInt(90), decimal.NewFromInt(10), "")
		mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE "transactions"\."order_item_id" = \$1`).
			WithArgs(itemID).
			WillReturnRows(txnRows)

		o, err := repo.FindByID(context.Background(), orderID)

		assert.NoError(t, err)
		require.NotNil(t, o)
		assert.Equal(t, orderID, o.ID)
		require.Len(t, o.Items, 1)
		assert.Equal(t, itemID, o.Items[0].ID)
		assert.Equal(t, itemID, o.Items[0].Transaction.OrderItemID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing order", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE orders\.id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(orderID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		o, err := repo.FindByID(context.Background(), orderID)

		assert.Error(t, err)
		assert.Nil(t, o)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_FindByCode(t *testing.T) {
	t.Run("finds order by code", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()
		code := "RLV-20260830120000-ABCD1234"

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE orders\.order_code = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(code, 1).
			WillReturnRows(orderRows(orderID, code, uuid.New()))
		mock.ExpectQuery(`SELECT \* FROM "order_items"`).
			WithArgs(orderID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))

		o, err := repo.FindByCode(context.Background(), code)

		assert.NoError(t, err)
		require.NotNil(t, o)
		assert.Equal(t, code, o.OrderCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_SaveWithLock(t *testing.T) {
	t.Run("rejects stale version", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		o := &order.Order{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
		o.Version = 3

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "orders" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE id = \$1`).
			WithArgs(o.ID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		err := repo.SaveWithLock(context.Background(), o)

		assert.Error(t, err)
		assert.Equal(t, shared.ErrConcurrencyConflict, err)
		assert.Equal(t, 3, o.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for deleted order", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		o := &order.Order{BaseAggregateRoot: shared.NewBaseAggregateRoot()}

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "orders" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE id = \$1`).
			WithArgs(o.ID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectRollback()

		err := repo.SaveWithLock(context.Background(), o)

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("increments version on success", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		o := &order.Order{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
		o.Version = 2

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "orders" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.SaveWithLock(context.Background(), o)

		assert.NoError(t, err)
		assert.Equal(t, 3, o.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_FindIDsPendingBefore(t *testing.T) {
	t.Run("returns ids of stale unpaid orders", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		id1 := uuid.New()
		id2 := uuid.New()
		cutoff := time.Now().Add(-30 * time.Minute)

		mock.ExpectQuery(`SELECT "id" FROM "orders" WHERE status = \$1 AND paid_at IS NULL AND created_at < \$2 ORDER BY created_at ASC LIMIT .*`).
			WithArgs(order.OrderStatusPending, cutoff, 100).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id1).AddRow(id2))

		ids, err := repo.FindIDsPendingBefore(context.Background(), cutoff, 100)

		assert.NoError(t, err)
		assert.Equal(t, []uuid.UUID{id1, id2}, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_FindIDsWithEscrowDue(t *testing.T) {
	t.Run("returns distinct order ids with elapsed windows", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT DISTINCT order_items\.order_id FROM "order_items" JOIN transactions ON transactions\.order_item_id = order_items\.id WHERE transactions\.escrow_status = \$1 AND transactions\.dispute_open = \$2 AND transactions\.release_due_at <= \$3 LIMIT .*`).
			WithArgs("AWAITING_RELEASE", false, now, 50).
			WillReturnRows(sqlmock.NewRows([]string{"order_id"}).AddRow(orderID))

		ids, err := repo.FindIDsWithEscrowDue(context.Background(), now, 50)

		assert.NoError(t, err)
		assert.Equal(t, []uuid.UUID{orderID}, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_FindIDsWithTransferFailed(t *testing.T) {
	t.Run("returns order ids with parked payouts", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()

		mock.ExpectQuery(`SELECT DISTINCT order_items\.order_id FROM "order_items" JOIN transactions ON transactions\.order_item_id = order_items\.id WHERE transactions\.escrow_status = \$1 LIMIT .*`).
			WithArgs("TRANSFER_FAILED", 50).
			WillReturnRows(sqlmock.NewRows([]string{"order_id"}).AddRow(orderID))

		ids, err := repo.FindIDsWithTransferFailed(context.Background(), 50)

		assert.NoError(t, err)
		assert.Equal(t, []uuid.UUID{orderID}, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_InterfaceCompliance(t *testing.T) {
	t.Run("implements order.Repository", func(t *testing.T) {
		repo, _, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		var _ order.Repository = repo
	})
}
