package bootstrap

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"freshmart/internal/models"
)

// MigrateAndSeed ensures required tables exist and inserts the default
// payment method rows on first run.
func MigrateAndSeed(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	if err := seedDefaults(db); err != nil {
		return fmt.Errorf("seed defaults failed: %w", err)
	}
	return nil
}

func allModels() []interface{} {
	return []interface{}{
		&models.PaymentMethod{},
		&models.Payment{},
		&models.Refund{},
		&models.PaymentEvent{},
	}
}

func seedDefaults(db *gorm.DB) error {
	return db.Transaction(ensureDefaultMethods)
}

// ensureDefaultMethods seeds one row per rail. Existing rows are left
// alone; administrators own them after the first boot.
func ensureDefaultMethods(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&models.PaymentMethod{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	dec := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }

	defaults := []models.PaymentMethod{
		{
			Gateway:     models.GatewayPaystack,
			DisplayName: "Card (Paystack)",
			IsActive:    true,
			MinAmount:   dec("100"),
			MaxAmount:   dec("10000000"),
			FeeType:     models.FeePercentage,
			FeeValue:    dec("1.5"),
			SortOrder:   1,
		},
		{
			Gateway:     models.GatewayFlutterwave,
			DisplayName: "Card (Flutterwave)",
			IsActive:    true,
			MinAmount:   dec("100"),
			MaxAmount:   dec("10000000"),
			FeeType:     models.FeePercentage,
			FeeValue:    dec("1.4"),
			SortOrder:   2,
		},
		{
			Gateway:     models.GatewayWhatsApp,
			DisplayName: "WhatsApp Order",
			IsActive:    true,
			MinAmount:   dec("500"),
			MaxAmount:   dec("500000"),
			FeeType:     models.FeeFixed,
			FeeValue:    dec("0"),
			SortOrder:   3,
		},
		{
			Gateway:     models.GatewayBankTransfer,
			DisplayName: "Bank Transfer",
			IsActive:    true,
			MinAmount:   dec("1000"),
			MaxAmount:   dec("10000000"),
			FeeType:     models.FeeFixed,
			FeeValue:    dec("0"),
			SortOrder:   4,
		},
		{
			Gateway:     models.GatewayCOD,
			DisplayName: "Cash on Delivery",
			IsActive:    true,
			MinAmount:   dec("500"),
			MaxAmount:   dec("100000"),
			FeeType:     models.FeeFixed,
			FeeValue:    dec("200"),
			SortOrder:   5,
		},
	}

	for i := range defaults {
		if err := tx.Create(&defaults[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
