package ledger

import (
	"path/filepath"
	"testing"

	"finanz-server/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Category{},
		&models.CreditCard{},
		&models.Invoice{},
		&models.Transaction{},
		&models.Planning{},
		&models.PlanningCategory{},
		&models.Holding{},
		&models.Moviment{},
		&models.Objective{},
	))
	return db
}

func seedAccount(t *testing.T, db *gorm.DB, balance string) *models.Account {
	t.Helper()
	user := models.User{Name: "Tester", Email: "tester@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	account := models.Account{UserID: user.ID, CurrentValue: dec(balance), Currency: "BRL"}
	require.NoError(t, db.Create(&account).Error)
	return &account
}

func seedCategory(t *testing.T, db *gorm.DB, accountID, name string) *models.Category {
	t.Helper()
	category := models.Category{AccountID: accountID, Name: name}
	require.NoError(t, db.Create(&category).Error)
	return &category
}

func seedCard(t *testing.T, db *gorm.DB, accountID, limit string, closeDay int) *models.CreditCard {
	t.Helper()
	card := models.CreditCard{
		AccountID:      accountID,
		Company:        "Visa",
		Limit:          dec(limit),
		AvailableLimit: dec(limit),
		CloseDay:       closeDay,
		ExpireDay:      closeDay,
	}
	require.NoError(t, db.Create(&card).Error)
	return &card
}

func reloadAccount(t *testing.T, db *gorm.DB, id string) models.Account {
	t.Helper()
	var account models.Account
	require.NoError(t, db.First(&account, "id = ?", id).Error)
	return account
}

func reloadCard(t *testing.T, db *gorm.DB, id string) models.CreditCard {
	t.Helper()
	var card models.CreditCard
	require.NoError(t, db.First(&card, "id = ?", id).Error)
	return card
}

func reloadHolding(t *testing.T, db *gorm.DB, id string) models.Holding {
	t.Helper()
	var holding models.Holding
	require.NoError(t, db.First(&holding, "id = ?", id).Error)
	return holding
}
