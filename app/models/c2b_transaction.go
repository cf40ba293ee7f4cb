package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	C2BStatusReceived  = "RECEIVED"
	C2BStatusValidated = "VALIDATED"
	C2BStatusConfirmed = "CONFIRMED"
)

// C2BTransaction is one inbound customer payment as reported by Safaricom.
// TransID is the gateway-assigned reference and globally unique; records are
// never deleted and only move forward through their lifecycle.
type C2BTransaction struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UUID              string    `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	TransactionType   string    `gorm:"type:varchar(50)" json:"transaction_type"`
	TransID           string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"trans_id"`
	TransTime         string    `gorm:"type:varchar(20)" json:"trans_time"`
	TransAmount       float64   `gorm:"type:decimal(12,2);not null" json:"trans_amount"`
	BusinessShortcode string    `gorm:"type:varchar(20)" json:"business_shortcode"`
	BillRefNumber     string    `gorm:"type:varchar(50);index" json:"bill_ref_number"`
	InvoiceNumber     string    `gorm:"type:varchar(50)" json:"invoice_number"`
	OrgAccountBalance float64   `gorm:"type:decimal(14,2)" json:"org_account_balance"`
	ThirdPartyTransID string    `gorm:"type:varchar(50)" json:"third_party_trans_id"`
	MSISDN            string    `gorm:"type:varchar(20);index" json:"msisdn"`
	FirstName         string    `gorm:"type:varchar(100)" json:"first_name"`
	MiddleName        string    `gorm:"type:varchar(100)" json:"middle_name"`
	LastName          string    `gorm:"type:varchar(100)" json:"last_name"`
	Status            string    `gorm:"type:varchar(20);not null;default:'RECEIVED';index" json:"status"`
	B2BDisbursed      bool      `gorm:"not null;default:false" json:"b2b_disbursed"`
	CreatedAt         time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *C2BTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.UUID == "" {
		t.UUID = uuid.New().String()
	}
	return nil
}

// CustomerName assembles the display name from the payer name parts.
func (t *C2BTransaction) CustomerName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{t.FirstName, t.MiddleName, t.LastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
