package repository

import (
	"github.com/aquaflow/aquaflow/app/models"
)

// C2BTransactionRepository defines the database operations for inbound
// payment records.
type C2BTransactionRepository interface {
	Create(tx *models.C2BTransaction) error
	Update(tx *models.C2BTransaction) error
	GetByTransID(transID string) (*models.C2BTransaction, error)
	ExistsByTransID(transID string) (bool, error)
	// GetAllByBillRefNumber returns transactions for an account reference,
	// most recent first.
	GetAllByBillRefNumber(billRefNumber string) ([]models.C2BTransaction, error)
	// GetAllByMSISDN returns transactions for a phone number, most recent
	// first.
	GetAllByMSISDN(msisdn string) ([]models.C2BTransaction, error)
}

// B2BTransactionRepository defines the database operations for disbursement
// records. Both conversation identifiers serve as correlation keys.
type B2BTransactionRepository interface {
	Create(tx *models.B2BTransaction) error
	Update(tx *models.B2BTransaction) error
	GetByConversationID(conversationID string) (*models.B2BTransaction, error)
	GetByOriginatorConversationID(originatorConversationID string) (*models.B2BTransaction, error)
	GetByC2BTransactionID(c2bTransactionID uint) (*models.B2BTransaction, error)
}
