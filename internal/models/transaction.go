package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction types.
const (
	TypeBuy                = "BUY"
	TypeSell               = "SELL"
	TypeCycleSettlement    = "CYCLE_SETTLEMENT"
	TypeDepositCorrection  = "DEPOSIT_BALANCE_CORRECTION"
	TypeWithdrawCorrection = "WITHDRAW_BALANCE_CORRECTION"
)

// Currencies.
const (
	CurrencyUSD = "USD"
	CurrencyTRY = "TRY"
)

// Transaction 表示一条周期内的交易记录
// 金额全部用 decimal 存储，避免二进制浮点在链式换算里累计误差
type Transaction struct {
	ID      string `gorm:"primaryKey;size:36"`
	CycleID string `gorm:"size:36;index;not null"`
	Cycle   Cycle  `gorm:"constraint:OnDelete:CASCADE"`
	Type    string `gorm:"size:32;index;not null"`

	OccurredAt time.Time `gorm:"index;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// BUY: what was paid and in which currency.
	TransactionValue    decimal.NullDecimal `gorm:"type:decimal(30,10)"`
	TransactionCurrency *string             `gorm:"size:8"`
	UsdTryRateAtBuy     decimal.NullDecimal `gorm:"type:decimal(30,10)"`

	// USDT gained / removed by this row.
	AmountReceived decimal.Decimal     `gorm:"type:decimal(30,10);not null"`
	AmountSold     decimal.NullDecimal `gorm:"type:decimal(30,10)"`

	PricePerUnit      decimal.NullDecimal `gorm:"type:decimal(30,10)"`
	ReceivedCurrency  string              `gorm:"size:8;not null;default:TRY"`
	CommissionPercent decimal.NullDecimal `gorm:"type:decimal(30,10)"`
	EffectiveRateTry  decimal.NullDecimal `gorm:"type:decimal(30,10)"`

	// Shared by the two legs of a cycle settlement.
	SettlementGroup *string `gorm:"size:36;index"`

	// Counterparty metadata (free text except the resolved institution).
	SenderInstitution      *string      `gorm:"size:128"`
	SenderIban             *string      `gorm:"size:64"`
	SenderName             *string      `gorm:"size:128"`
	RecipientInstitutionID *string      `gorm:"size:36;index"`
	RecipientInstitution   *Institution `gorm:"foreignKey:RecipientInstitutionID"`
	RecipientIban          *string      `gorm:"size:64"`
	RecipientName          *string      `gorm:"size:128"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
