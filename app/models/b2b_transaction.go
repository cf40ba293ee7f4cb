package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	B2BStatusInitiated = "INITIATED"
	B2BStatusSuccess   = "SUCCESS"
	B2BStatusFailed    = "FAILED"
	B2BStatusTimeout   = "TIMEOUT"
)

// B2BTransaction is one outbound disbursement, owned by exactly one
// C2BTransaction. Safaricom may echo either the conversation ID or the
// originator conversation ID on the result callback, so both are indexed as
// correlation keys. Raw request and result payloads are retained for audit.
type B2BTransaction struct {
	ID                       uint      `gorm:"primaryKey" json:"id"`
	UUID                     string    `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	C2BTransactionID         uint      `gorm:"not null;index" json:"c2b_transaction_id"`
	ConversationID           string    `gorm:"type:varchar(100);index" json:"conversation_id"`
	OriginatorConversationID string    `gorm:"type:varchar(100);index" json:"originator_conversation_id"`
	SenderShortcode          string    `gorm:"type:varchar(20)" json:"sender_shortcode"`
	ReceiverShortcode        string    `gorm:"type:varchar(20)" json:"receiver_shortcode"`
	Amount                   int64     `gorm:"not null" json:"amount"`
	CommandID                string    `gorm:"type:varchar(50)" json:"command_id"`
	Status                   string    `gorm:"type:varchar(20);not null;default:'INITIATED';index" json:"status"`
	ResultType               *int      `json:"result_type,omitempty"`
	ResultCode               *int      `json:"result_code,omitempty"`
	ResultDesc               string    `gorm:"type:varchar(255)" json:"result_desc"`
	TransactionID            string    `gorm:"type:varchar(50)" json:"transaction_id"`
	DebitAccountBalance      string    `gorm:"type:varchar(255)" json:"debit_account_balance"`
	CreditAccountBalance     string    `gorm:"type:varchar(255)" json:"credit_account_balance"`
	TransactionCompletedTime string    `gorm:"type:varchar(50)" json:"transaction_completed_time"`
	RawRequest               string    `gorm:"type:longtext" json:"raw_request"`
	RawResult                string    `gorm:"type:longtext" json:"raw_result"`
	CreatedAt                time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *B2BTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.UUID == "" {
		t.UUID = uuid.New().String()
	}
	return nil
}
