// internal/services/transaction_service_test.go
package services

import (
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bookswap/bookswap-backend/internal/config"
	"github.com/bookswap/bookswap-backend/internal/models"
)

// testDB opens the database named by TEST_DATABASE_DSN, or skips the test.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Book{}, &models.Transaction{}, &models.Notification{},
	))

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()

	suffix := uuid.NewString()[:8]
	user := &models.User{
		Username:     fmt.Sprintf("%s-%s", role, suffix),
		Email:        fmt.Sprintf("%s-%s@example.com", role, suffix),
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)
	t.Cleanup(func() { db.Unscoped().Delete(user) })

	return user
}

func TestCreatePurchaseConcurrentBuyersSingleWinner(t *testing.T) {
	db := testDB(t)

	cfg := &config.Config{}
	cfg.Payment.PlatformFeePercent = 10

	svc := NewTransactionService(db, cfg, NewPaymentService(cfg), NewNotificationService(db, cfg))

	seller := createTestUser(t, db, "seller")
	buyers := []*models.User{
		createTestUser(t, db, "buyer-a"),
		createTestUser(t, db, "buyer-b"),
	}

	book := &models.Book{
		SellerID:    seller.ID,
		Title:       "The Left Hand of Darkness",
		Author:      "Ursula K. Le Guin",
		Condition:   models.BookConditionGood,
		Price:       20,
		ListingType: models.ListingTypeSale,
		Status:      models.BookStatusAvailable,
	}
	require.NoError(t, db.Create(book).Error)
	t.Cleanup(func() {
		db.Unscoped().Where("book_id = ?", book.ID).Delete(&models.Transaction{})
		db.Unscoped().Delete(book)
	})

	address := &models.ShippingAddress{
		Name: "Test Buyer", Street: "1 Main St", City: "Springfield",
		State: "IL", ZipCode: "62701", Country: "US",
	}

	var wg sync.WaitGroup
	results := make([]error, len(buyers))
	for i, buyer := range buyers {
		wg.Add(1)
		go func(i int, buyerID uuid.UUID) {
			defer wg.Done()
			_, err := svc.CreatePurchase(buyerID, &CreatePurchaseRequest{
				BookID:          book.ID,
				PaymentMethod:   "cash",
				ShippingAddress: address,
			})
			results[i] = err
		}(i, buyer.ID)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		// The loser hits either the conditional reservation (conflict) or,
		// if their read came after the winner committed, the availability
		// pre-check (invalid state).
		code := CodeOf(err)
		require.Contains(t, []ErrorCode{CodeConflict, CodeInvalidState}, code, "unexpected error: %v", err)
		losses++
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)

	var reloaded models.Book
	require.NoError(t, db.First(&reloaded, "id = ?", book.ID).Error)
	assert.Equal(t, models.BookStatusReserved, reloaded.Status)

	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Where("book_id = ?", book.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
