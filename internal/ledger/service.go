package ledger

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/samislam/exchange-profitbook/internal/models"
)

// Service orchestrates cycle/transaction/institution operations on top of the
// invariant engine. Multi-step writes run inside a single store transaction so
// that a balance read can never interleave with a conflicting write.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// TransactionInput 创建/修改交易时的入参，按 type 取用对应字段
type TransactionInput struct {
	Cycle      string `json:"cycle"`
	Type       string `json:"type"`
	OccurredAt string `json:"occurredAt"`

	TransactionValue    *decimal.Decimal `json:"transactionValue"`
	TransactionCurrency string           `json:"transactionCurrency"`
	UsdTryRateAtBuy     *decimal.Decimal `json:"usdTryRateAtBuy"`
	AmountReceived      *decimal.Decimal `json:"amountReceived"`
	AmountSold          *decimal.Decimal `json:"amountSold"`
	PricePerUnit        *decimal.Decimal `json:"pricePerUnit"`
	CommissionPercent   *decimal.Decimal `json:"commissionPercent"`

	// Balance corrections and settlements.
	Amount    *decimal.Decimal `json:"amount"`
	FromCycle string           `json:"fromCycle"`
	ToCycle   string           `json:"toCycle"`

	SenderInstitution    string `json:"senderInstitution"`
	SenderIban           string `json:"senderIban"`
	SenderName           string `json:"senderName"`
	RecipientInstitution string `json:"recipientInstitution"`
	RecipientIban        string `json:"recipientIban"`
	RecipientName        string `json:"recipientName"`
}

// occurredAtLayouts 支持的交易时间格式
var occurredAtLayouts = []string{
	time.RFC3339,          // 2025-12-03T00:00:00+03:00
	"2006-01-02T15:04:05", // 2025-12-03T00:00:00
	"2006-01-02",          // 2025-12-03
}

func parseOccurredAt(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	for _, layout := range occurredAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return fallback
}

func normalizeOptional(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// getOrCreateCycle resolves a cycle by trimmed name, creating it when absent.
// Insert-or-return-existing against the unique name index; a concurrent loser
// observes the winner's row instead of erroring.
func getOrCreateCycle(tx *gorm.DB, name string) (*models.Cycle, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, Validationf("cycle name is required")
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&models.Cycle{Name: trimmed}).Error; err != nil {
		return nil, err
	}
	// 冲突时 hook 已经生成了无效主键，必须重新查一次拿到真正的行
	var cycle models.Cycle
	if err := tx.Where("name = ?", trimmed).First(&cycle).Error; err != nil {
		return nil, err
	}
	return &cycle, nil
}

// resolveInstitutionID 按名称查找或创建机构，返回其 ID；空名返回 nil
func resolveInstitutionID(tx *gorm.DB, name string) (*string, error) {
	normalized := normalizeOptional(name)
	if normalized == nil {
		return nil, nil
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&models.Institution{Name: *normalized}).Error; err != nil {
		return nil, err
	}
	var inst models.Institution
	if err := tx.Where("name = ?", *normalized).First(&inst).Error; err != nil {
		return nil, err
	}
	return &inst.ID, nil
}

// cycleBalance folds the cycle's rows, optionally excluding one transaction
// (edit-in-place re-validation runs against the balance without it).
func cycleBalance(tx *gorm.DB, cycleID, excludeID string) (decimal.Decimal, error) {
	q := tx.Where("cycle_id = ?", cycleID)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var rows []models.Transaction
	if err := q.Select("type", "amount_received", "amount_sold").Find(&rows).Error; err != nil {
		return decimal.Zero, err
	}
	return BalanceOf(rows), nil
}

func loadTransaction(tx *gorm.DB, id string) (*models.Transaction, error) {
	var row models.Transaction
	err := tx.Preload("Cycle").Preload("RecipientInstitution").First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundf("transaction not found")
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// CreateTransaction persists one transaction, or the linked pair of rows for a
// cycle settlement. The returned slice holds one element except for settlements.
func (s *Service) CreateTransaction(in TransactionInput) ([]models.Transaction, error) {
	occurredAt := parseOccurredAt(in.OccurredAt, time.Now())

	switch in.Type {
	case models.TypeCycleSettlement:
		return s.createSettlement(in, occurredAt)
	case models.TypeDepositCorrection, models.TypeWithdrawCorrection:
		row, err := s.writeCorrection(in, occurredAt, "")
		if err != nil {
			return nil, err
		}
		return []models.Transaction{*row}, nil
	case models.TypeBuy:
		row, err := s.writeBuy(in, occurredAt, "")
		if err != nil {
			return nil, err
		}
		return []models.Transaction{*row}, nil
	case models.TypeSell:
		row, err := s.writeSell(in, occurredAt, "")
		if err != nil {
			return nil, err
		}
		return []models.Transaction{*row}, nil
	default:
		return nil, Validationf("unknown transaction type %q", in.Type)
	}
}

// UpdateTransaction rewrites an existing transaction in place. Cycle
// settlements are structurally paired and rejected outright.
func (s *Service) UpdateTransaction(id string, in TransactionInput) (*models.Transaction, error) {
	existing, err := loadTransaction(s.db, id)
	if err != nil {
		return nil, err
	}
	if existing.Type == models.TypeCycleSettlement {
		return nil, Immutablef("cycle settlement transactions are not editable")
	}
	if in.Type == models.TypeCycleSettlement {
		return nil, Validationf("a transaction cannot be turned into a cycle settlement")
	}

	occurredAt := parseOccurredAt(in.OccurredAt, existing.OccurredAt)

	switch in.Type {
	case models.TypeDepositCorrection, models.TypeWithdrawCorrection:
		return s.writeCorrection(in, occurredAt, id)
	case models.TypeBuy:
		return s.writeBuy(in, occurredAt, id)
	case models.TypeSell:
		return s.writeSell(in, occurredAt, id)
	default:
		return nil, Validationf("unknown transaction type %q", in.Type)
	}
}

// createSettlement moves value between two cycles as a debit/credit pair that
// is created together or not at all.
func (s *Service) createSettlement(in TransactionInput, occurredAt time.Time) ([]models.Transaction, error) {
	if in.Amount == nil {
		return nil, Validationf("amount is required")
	}
	amount := *in.Amount
	if err := ValidateSettlement(in.FromCycle, in.ToCycle, amount); err != nil {
		return nil, err
	}

	var pair []models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		fromCycle, err := getOrCreateCycle(tx, in.FromCycle)
		if err != nil {
			return err
		}
		toCycle, err := getOrCreateCycle(tx, in.ToCycle)
		if err != nil {
			return err
		}

		balance, err := cycleBalance(tx, fromCycle.ID, "")
		if err != nil {
			return err
		}
		if err := CheckSufficient("settlement amount", amount, balance); err != nil {
			return err
		}

		group := uuid.NewString()
		debit := models.Transaction{
			CycleID:          fromCycle.ID,
			Type:             models.TypeCycleSettlement,
			OccurredAt:       occurredAt,
			AmountReceived:   decimal.Zero,
			AmountSold:       decimal.NullDecimal{Decimal: amount, Valid: true},
			ReceivedCurrency: models.CurrencyTRY,
			SettlementGroup:  &group,
		}
		credit := models.Transaction{
			CycleID:          toCycle.ID,
			Type:             models.TypeCycleSettlement,
			OccurredAt:       occurredAt,
			AmountReceived:   amount,
			ReceivedCurrency: models.CurrencyTRY,
			SettlementGroup:  &group,
		}
		if err := tx.Create(&debit).Error; err != nil {
			return err
		}
		if err := tx.Create(&credit).Error; err != nil {
			return err
		}

		debitRow, err := loadTransaction(tx, debit.ID)
		if err != nil {
			return err
		}
		creditRow, err := loadTransaction(tx, credit.ID)
		if err != nil {
			return err
		}
		pair = []models.Transaction{*debitRow, *creditRow}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// writeCorrection creates (updateID == "") or rewrites a balance correction.
func (s *Service) writeCorrection(in TransactionInput, occurredAt time.Time, updateID string) (*models.Transaction, error) {
	if in.Amount == nil || !in.Amount.IsPositive() {
		return nil, Validationf("correction amount must be greater than 0")
	}
	amount := *in.Amount

	var result *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		cycle, err := getOrCreateCycle(tx, in.Cycle)
		if err != nil {
			return err
		}

		if in.Type == models.TypeWithdrawCorrection {
			balance, err := cycleBalance(tx, cycle.ID, updateID)
			if err != nil {
				return err
			}
			if err := CheckSufficient("withdraw correction amount", amount, balance); err != nil {
				return err
			}
		}

		row := models.Transaction{
			ID:               updateID,
			CycleID:          cycle.ID,
			Type:             in.Type,
			OccurredAt:       occurredAt,
			ReceivedCurrency: models.CurrencyTRY,
		}
		if in.Type == models.TypeDepositCorrection {
			row.AmountReceived = amount
		} else {
			row.AmountReceived = decimal.Zero
			row.AmountSold = decimal.NullDecimal{Decimal: amount, Valid: true}
		}

		if err := saveRow(tx, &row, updateID); err != nil {
			return err
		}
		result, err = loadTransaction(tx, row.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) writeBuy(in TransactionInput, occurredAt time.Time, updateID string) (*models.Transaction, error) {
	if in.TransactionValue == nil || in.AmountReceived == nil {
		return nil, Validationf("transactionValue and amountReceived are required")
	}
	derived, err := DeriveBuy(BuyInput{
		TransactionValue:    *in.TransactionValue,
		TransactionCurrency: in.TransactionCurrency,
		UsdTryRateAtBuy:     in.UsdTryRateAtBuy,
		AmountReceived:      *in.AmountReceived,
		CommissionPercent:   in.CommissionPercent,
	})
	if err != nil {
		return nil, err
	}

	var result *models.Transaction
	err = s.db.Transaction(func(tx *gorm.DB) error {
		cycle, err := getOrCreateCycle(tx, in.Cycle)
		if err != nil {
			return err
		}
		recipientID, err := resolveInstitutionID(tx, in.RecipientInstitution)
		if err != nil {
			return err
		}

		currency := in.TransactionCurrency
		row := models.Transaction{
			ID:                     updateID,
			CycleID:                cycle.ID,
			Type:                   models.TypeBuy,
			OccurredAt:             occurredAt,
			TransactionValue:       decimal.NullDecimal{Decimal: *in.TransactionValue, Valid: true},
			TransactionCurrency:    &currency,
			AmountReceived:         *in.AmountReceived,
			ReceivedCurrency:       models.CurrencyTRY,
			SenderInstitution:      normalizeOptional(in.SenderInstitution),
			SenderIban:             normalizeOptional(in.SenderIban),
			SenderName:             normalizeOptional(in.SenderName),
			RecipientInstitutionID: recipientID,
			RecipientIban:          normalizeOptional(in.RecipientIban),
			RecipientName:          normalizeOptional(in.RecipientName),
		}
		if in.UsdTryRateAtBuy != nil {
			row.UsdTryRateAtBuy = decimal.NullDecimal{Decimal: *in.UsdTryRateAtBuy, Valid: true}
		}
		if derived.CommissionPercent != nil {
			row.CommissionPercent = decimal.NullDecimal{Decimal: *derived.CommissionPercent, Valid: true}
		}
		if derived.EffectiveRateTry != nil {
			row.EffectiveRateTry = decimal.NullDecimal{Decimal: *derived.EffectiveRateTry, Valid: true}
		}

		if err := saveRow(tx, &row, updateID); err != nil {
			return err
		}
		result, err = loadTransaction(tx, row.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) writeSell(in TransactionInput, occurredAt time.Time, updateID string) (*models.Transaction, error) {
	if in.AmountSold == nil {
		return nil, Validationf("amountSold is required")
	}
	derived, err := DeriveSell(SellInput{
		AmountSold:        *in.AmountSold,
		AmountReceived:    in.AmountReceived,
		PricePerUnit:      in.PricePerUnit,
		CommissionPercent: in.CommissionPercent,
	})
	if err != nil {
		return nil, err
	}

	var result *models.Transaction
	err = s.db.Transaction(func(tx *gorm.DB) error {
		cycle, err := getOrCreateCycle(tx, in.Cycle)
		if err != nil {
			return err
		}
		recipientID, err := resolveInstitutionID(tx, in.RecipientInstitution)
		if err != nil {
			return err
		}

		row := models.Transaction{
			ID:                     updateID,
			CycleID:                cycle.ID,
			Type:                   models.TypeSell,
			OccurredAt:             occurredAt,
			AmountReceived:         derived.AmountReceived,
			AmountSold:             decimal.NullDecimal{Decimal: *in.AmountSold, Valid: true},
			PricePerUnit:           decimal.NullDecimal{Decimal: derived.PricePerUnit, Valid: true},
			ReceivedCurrency:       models.CurrencyTRY,
			EffectiveRateTry:       decimal.NullDecimal{Decimal: derived.PricePerUnit, Valid: true},
			SenderInstitution:      normalizeOptional(in.SenderInstitution),
			SenderIban:             normalizeOptional(in.SenderIban),
			SenderName:             normalizeOptional(in.SenderName),
			RecipientInstitutionID: recipientID,
			RecipientIban:          normalizeOptional(in.RecipientIban),
			RecipientName:          normalizeOptional(in.RecipientName),
		}
		if in.CommissionPercent != nil {
			row.CommissionPercent = decimal.NullDecimal{Decimal: *in.CommissionPercent, Valid: true}
		}

		if err := saveRow(tx, &row, updateID); err != nil {
			return err
		}
		result, err = loadTransaction(tx, row.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// saveRow inserts a fresh row or overwrites every column of an existing one.
// Updates rewrite the full type-dependent field set so stale values from the
// previous type cannot survive.
func saveRow(tx *gorm.DB, row *models.Transaction, updateID string) error {
	if updateID == "" {
		return tx.Create(row).Error
	}
	var existing models.Transaction
	if err := tx.First(&existing, "id = ?", updateID).Error; err != nil {
		return err
	}
	row.CreatedAt = existing.CreatedAt
	return tx.Model(&models.Transaction{}).Where("id = ?", updateID).
		Select("*").Omit("id", "created_at").Updates(row).Error
}

// ListTransactions returns every transaction ordered by occurrence, then
// creation time.
func (s *Service) ListTransactions() ([]models.Transaction, error) {
	var rows []models.Transaction
	err := s.db.Preload("Cycle").Preload("RecipientInstitution").
		Order("occurred_at ASC, created_at ASC").
		Find(&rows).Error
	return rows, err
}

// DeleteTransaction removes one transaction and reports its id.
func (s *Service) DeleteTransaction(id string) (string, error) {
	res := s.db.Delete(&models.Transaction{}, "id = ?", id)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", NotFoundf("transaction not found")
	}
	return id, nil
}

// ListCycles returns all cycles ordered by creation time.
func (s *Service) ListCycles() ([]models.Cycle, error) {
	var cycles []models.Cycle
	err := s.db.Order("created_at ASC").Find(&cycles).Error
	return cycles, err
}

// CreateCycle resolves or creates a cycle by name.
func (s *Service) CreateCycle(name string) (*models.Cycle, error) {
	return getOrCreateCycle(s.db, name)
}

// RenameCycle changes a cycle's display name.
func (s *Service) RenameCycle(id, name string) (*models.Cycle, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, Validationf("cycle name is required")
	}
	var cycle models.Cycle
	if err := s.db.First(&cycle, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("cycle not found")
		}
		return nil, err
	}
	cycle.Name = trimmed
	if err := s.db.Save(&cycle).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Validationf("cycle name %q is already in use", trimmed)
		}
		return nil, err
	}
	return &cycle, nil
}

// DeleteCycle removes a cycle and all of its transactions as one unit.
func (s *Service) DeleteCycle(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var cycle models.Cycle
		if err := tx.First(&cycle, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundf("cycle not found")
			}
			return err
		}
		if err := tx.Where("cycle_id = ?", id).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(&cycle).Error
	})
}

// ResetCycle deletes all transactions under a cycle, keeping the cycle itself.
func (s *Service) ResetCycle(id string) (int64, error) {
	var deleted int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cycle models.Cycle
		if err := tx.First(&cycle, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundf("cycle not found")
			}
			return err
		}
		res := tx.Where("cycle_id = ?", id).Delete(&models.Transaction{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}

// UndoLastTransaction deletes the cycle's most recent transaction by
// (occurredAt, createdAt) and reports its id.
func (s *Service) UndoLastTransaction(id string) (string, error) {
	var deletedID string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cycle models.Cycle
		if err := tx.First(&cycle, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundf("cycle not found")
			}
			return err
		}
		var last models.Transaction
		err := tx.Where("cycle_id = ?", id).
			Order("occurred_at DESC, created_at DESC").
			First(&last).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundf("no transactions found in this cycle")
		}
		if err != nil {
			return err
		}
		if err := tx.Delete(&last).Error; err != nil {
			return err
		}
		deletedID = last.ID
		return nil
	})
	return deletedID, err
}

// ListInstitutions returns all institutions ordered by name.
func (s *Service) ListInstitutions() ([]models.Institution, error) {
	var institutions []models.Institution
	err := s.db.Order("name ASC").Find(&institutions).Error
	return institutions, err
}

// CreateInstitution resolves or creates an institution by trimmed name.
// A provided icon file name replaces the stored one even when the institution
// already exists.
func (s *Service) CreateInstitution(name string, iconFileName *string) (*models.Institution, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, Validationf("institution name is required")
	}

	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}
	if iconFileName != nil {
		onConflict = clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"icon_file_name": *iconFileName,
				"updated_at":     time.Now(),
			}),
		}
	}

	if err := s.db.Clauses(onConflict).
		Create(&models.Institution{Name: trimmed, IconFileName: iconFileName}).Error; err != nil {
		return nil, err
	}
	var inst models.Institution
	if err := s.db.Where("name = ?", trimmed).First(&inst).Error; err != nil {
		return nil, err
	}
	return &inst, nil
}
