package repository

import (
	"github.com/aquaflow/aquaflow/app/models"
	"gorm.io/gorm"
)

type gormB2BTransactionRepository struct {
	db *gorm.DB
}

// NewB2BTransactionRepository creates a B2B transaction repository backed by GORM.
func NewB2BTransactionRepository(db *gorm.DB) B2BTransactionRepository {
	return &gormB2BTransactionRepository{db: db}
}

func (r *gormB2BTransactionRepository) Create(tx *models.B2BTransaction) error {
	return r.db.Create(tx).Error
}

func (r *gormB2BTransactionRepository) Update(tx *models.B2BTransaction) error {
	return r.db.Save(tx).Error
}

func (r *gormB2BTransactionRepository) GetByConversationID(conversationID string) (*models.B2BTransaction, error) {
	var tx models.B2BTransaction
	err := r.db.Where("conversation_id = ?", conversationID).First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *gormB2BTransactionRepository) GetByOriginatorConversationID(originatorConversationID string) (*models.B2BTransaction, error) {
	var tx models.B2BTransaction
	err := r.db.Where("originator_conversation_id = ?", originatorConversationID).First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *gormB2BTransactionRepository) GetByC2BTransactionID(c2bTransactionID uint) (*models.B2BTransaction, error) {
	var tx models.B2BTransaction
	err := r.db.Where("c2b_transaction_id = ?", c2bTransactionID).First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}
