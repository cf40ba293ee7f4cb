package c2b

import (
	"context"
	"errors"
	"log"

	"github.com/aquaflow/aquaflow/app/models"
	"github.com/aquaflow/aquaflow/app/repository"
	"github.com/aquaflow/aquaflow/internal/pkg/daraja"
	"gorm.io/gorm"
)

// ErrValidationRejected is reserved for business-rule rejection of a
// validation callback. No rule currently rejects; callbacks always resolve to
// the accept acknowledgment and rule violations are only logged.
var ErrValidationRejected = errors.New("c2b validation rejected")

// Disburser triggers the payout for a confirmed collection.
type Disburser interface {
	Disburse(ctx context.Context, c2bTx *models.C2BTransaction) (*models.B2BTransaction, error)
}

// Service ingests C2B validation and confirmation callbacks. Safaricom may
// redeliver any callback and delivers them without ordering guarantees, so
// every handler must tolerate duplicates and confirmations without a
// preceding validation.
type Service struct {
	c2bRepo   repository.C2BTransactionRepository
	disburser Disburser
}

func NewService(c2bRepo repository.C2BTransactionRepository, disburser Disburser) *Service {
	return &Service{
		c2bRepo:   c2bRepo,
		disburser: disburser,
	}
}

// HandleValidation records an incoming payment before Safaricom processes
// it. A duplicate delivery returns the existing record unchanged.
func (s *Service) HandleValidation(ctx context.Context, payload *daraja.C2BCallbackPayload) (*models.C2BTransaction, error) {
	log.Printf("C2B validation received: trans_id=%s, amount=%.2f, msisdn=%s, account=%s",
		payload.TransID, payload.TransAmount, payload.MSISDN, payload.BillRefNumber)

	exists, err := s.c2bRepo.ExistsByTransID(payload.TransID)
	if err != nil {
		return nil, err
	}
	if exists {
		log.Printf("Duplicate C2B validation for trans_id=%s", payload.TransID)
		return s.c2bRepo.GetByTransID(payload.TransID)
	}

	tx := mapPayload(payload, models.C2BStatusValidated)
	if err := s.c2bRepo.Create(tx); err != nil {
		return nil, err
	}

	log.Printf("C2B transaction validated: id=%d, trans_id=%s", tx.ID, tx.TransID)
	return tx, nil
}

// HandleConfirmation finalizes a payment and triggers the disbursement. A
// confirmation arriving without a prior validation creates the record
// directly in CONFIRMED. A disbursement failure is logged and swallowed; the
// payout is eventually consistent and independently retryable.
func (s *Service) HandleConfirmation(ctx context.Context, payload *daraja.C2BCallbackPayload) (*models.C2BTransaction, error) {
	log.Printf("C2B confirmation received: trans_id=%s, amount=%.2f, msisdn=%s, account=%s",
		payload.TransID, payload.TransAmount, payload.MSISDN, payload.BillRefNumber)

	tx, err := s.c2bRepo.GetByTransID(payload.TransID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		tx = mapPayload(payload, models.C2BStatusConfirmed)
		if err := s.c2bRepo.Create(tx); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		tx.Status = models.C2BStatusConfirmed
		tx.OrgAccountBalance = payload.OrgAccountBalance
		if err := s.c2bRepo.Update(tx); err != nil {
			return nil, err
		}
	}

	if tx.B2BDisbursed {
		log.Printf("C2B trans_id=%s already disbursed, skipping B2B trigger", tx.TransID)
		return tx, nil
	}

	log.Printf("Triggering B2B disbursement for C2B trans_id=%s, amount=%.2f", tx.TransID, tx.TransAmount)
	if _, err := s.disburser.Disburse(ctx, tx); err != nil {
		// The confirmation outcome must not depend on the payout; the B2B
		// leg can be retried separately.
		log.Printf("B2B disbursement failed for C2B trans_id=%s: %v", tx.TransID, err)
	}

	return tx, nil
}

func mapPayload(payload *daraja.C2BCallbackPayload, status string) *models.C2BTransaction {
	return &models.C2BTransaction{
		TransactionType:   payload.TransactionType,
		TransID:           payload.TransID,
		TransTime:         payload.TransTime,
		TransAmount:       payload.TransAmount,
		BusinessShortcode: payload.BusinessShortCode,
		BillRefNumber:     payload.BillRefNumber,
		InvoiceNumber:     payload.InvoiceNumber,
		OrgAccountBalance: payload.OrgAccountBalance,
		ThirdPartyTransID: payload.ThirdPartyTransID,
		MSISDN:            payload.MSISDN,
		FirstName:         payload.FirstName,
		MiddleName:        payload.MiddleName,
		LastName:          payload.LastName,
		Status:            status,
		B2BDisbursed:      false,
	}
}
