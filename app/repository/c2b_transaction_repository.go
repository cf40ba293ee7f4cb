package repository

import (
	"github.com/aquaflow/aquaflow/app/models"
	"gorm.io/gorm"
)

type gormC2BTransactionRepository struct {
	db *gorm.DB
}

// NewC2BTransactionRepository creates a C2B transaction repository backed by GORM.
func NewC2BTransactionRepository(db *gorm.DB) C2BTransactionRepository {
	return &gormC2BTransactionRepository{db: db}
}

func (r *gormC2BTransactionRepository) Create(tx *models.C2BTransaction) error {
	return r.db.Create(tx).Error
}

func (r *gormC2BTransactionRepository) Update(tx *models.C2BTransaction) error {
	return r.db.Save(tx).Error
}

func (r *gormC2BTransactionRepository) GetByTransID(transID string) (*models.C2BTransaction, error) {
	var tx models.C2BTransaction
	err := r.db.Where("trans_id = ?", transID).First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *gormC2BTransactionRepository) ExistsByTransID(transID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.C2BTransaction{}).Where("trans_id = ?", transID).Count(&count).Error
	return count > 0, err
}

func (r *gormC2BTransactionRepository) GetAllByBillRefNumber(billRefNumber string) ([]models.C2BTransaction, error) {
	var txs []models.C2BTransaction
	err := r.db.Where("bill_ref_number = ?", billRefNumber).
		Order("created_at DESC").
		Find(&txs).Error
	return txs, err
}

func (r *gormC2BTransactionRepository) GetAllByMSISDN(msisdn string) ([]models.C2BTransaction, error) {
	var txs []models.C2BTransaction
	err := r.db.Where("msisdn = ?", msisdn).
		Order("created_at DESC").
		Find(&txs).Error
	return txs, err
}
