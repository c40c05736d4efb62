// Package testutil provides database fixtures and fakes shared by tests.
package testutil

import (
	"context"
	"digital-storefront/internal/client"
	"digital-storefront/internal/config"
	"digital-storefront/internal/model"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB returns a migrated in-memory sqlite database. A single connection
// is used, so code under test must route all statements of a transaction
// through the transaction handle.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, client.Migrate(db))
	return db
}

// OpenFileDB opens a sqlite file in a temp dir through the production
// connection setup, with its default pool size.
func OpenFileDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := client.InitDBClient(context.Background(), config.Database{
		Driver:       "sqlite",
		URL:          filepath.Join(t.TempDir(), "storefront.db"),
		MaxOpenConns: 50,
		MaxIdleConns: 10,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// OpenMockDB returns a gorm handle backed by sqlmock, for store-failure paths.
func OpenMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)

	return db, mock
}

// SeedPurchase stores a COMPLETED order for one product at purchasedAt.
func SeedPurchase(t *testing.T, db *gorm.DB, orderID, productID, email string, amount int32, purchasedAt time.Time) *model.Order {
	t.Helper()

	order := &model.Order{
		OrderID:       orderID,
		Status:        model.OrderStatusCompleted,
		CustomerEmail: email,
		Amount:        amount,
		Currency:      "USD",
		CreatedAt:     purchasedAt,
		CompletedAt:   &purchasedAt,
	}
	require.NoError(t, db.Create(order).Error)
	require.NoError(t, db.Create(&model.OrderItem{
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  1,
		UnitPrice: amount,
		Currency:  "USD",
		CreatedAt: purchasedAt,
	}).Error)

	return order
}

// CountRequests returns how many refund requests exist for a purchase.
func CountRequests(t *testing.T, db *gorm.DB, orderID, productID string) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&model.RefundRequest{}).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Count(&count).Error)
	return count
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// FakeRefunder records refund instructions and returns Err when set.
type FakeRefunder struct {
	mu    sync.Mutex
	Calls []client.RefundInstruction
	ID    string
	Err   error
}

func (f *FakeRefunder) Refund(_ context.Context, in client.RefundInstruction) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, in)
	if f.Err != nil {
		return "", f.Err
	}
	return f.ID, nil
}
