package transactions

import (
	"context"
	"errors"
	"time"

	"github.com/aquaflow/aquaflow/app/models"
	"github.com/aquaflow/aquaflow/app/repository"
	"gorm.io/gorm"
)

// C2BTransactionResponse is the read-side view of a collection, enriched
// with its linked payout when one exists.
type C2BTransactionResponse struct {
	ID                uint                    `json:"id"`
	UUID              string                  `json:"uuid"`
	TransactionType   string                  `json:"transaction_type"`
	TransID           string                  `json:"trans_id"`
	TransTime         string                  `json:"trans_time"`
	TransAmount       float64                 `json:"trans_amount"`
	BusinessShortcode string                  `json:"business_shortcode"`
	BillRefNumber     string                  `json:"bill_ref_number"`
	MSISDN            string                  `json:"msisdn"`
	CustomerName      string                  `json:"customer_name"`
	Status            string                  `json:"status"`
	B2BDisbursed      bool                    `json:"b2b_disbursed"`
	CreatedAt         time.Time               `json:"created_at"`
	B2BTransaction    *B2BTransactionResponse `json:"b2b_transaction,omitempty"`
}

type B2BTransactionResponse struct {
	ID                       uint      `json:"id"`
	UUID                     string    `json:"uuid"`
	ConversationID           string    `json:"conversation_id"`
	OriginatorConversationID string    `json:"originator_conversation_id"`
	SenderShortcode          string    `json:"sender_shortcode"`
	ReceiverShortcode        string    `json:"receiver_shortcode"`
	Amount                   int64     `json:"amount"`
	CommandID                string    `json:"command_id"`
	Status                   string    `json:"status"`
	ResultCode               *int      `json:"result_code,omitempty"`
	ResultDesc               string    `json:"result_desc"`
	TransactionID            string    `json:"transaction_id"`
	CreatedAt                time.Time `json:"created_at"`
}

// QueryService joins collection records with their payouts for external
// lookup. It owns no writes.
type QueryService struct {
	c2bRepo repository.C2BTransactionRepository
	b2bRepo repository.B2BTransactionRepository
}

func NewQueryService(c2bRepo repository.C2BTransactionRepository, b2bRepo repository.B2BTransactionRepository) *QueryService {
	return &QueryService{
		c2bRepo: c2bRepo,
		b2bRepo: b2bRepo,
	}
}

// GetByTransactionRef fetches one collection by its Safaricom reference
// (e.g. RKTQDM7W6S). A miss surfaces as gorm.ErrRecordNotFound.
func (s *QueryService) GetByTransactionRef(ctx context.Context, transID string) (*C2BTransactionResponse, error) {
	tx, err := s.c2bRepo.GetByTransID(transID)
	if err != nil {
		return nil, err
	}
	return s.enrich(tx)
}

// GetByAccountNumber lists collections for an account reference, most recent
// first. An empty result is not an error.
func (s *QueryService) GetByAccountNumber(ctx context.Context, accountNumber string) ([]C2BTransactionResponse, error) {
	txs, err := s.c2bRepo.GetAllByBillRefNumber(accountNumber)
	if err != nil {
		return nil, err
	}
	return s.enrichAll(txs)
}

// GetByPhoneNumber lists collections for a phone number (MSISDN format),
// most recent first.
func (s *QueryService) GetByPhoneNumber(ctx context.Context, msisdn string) ([]C2BTransactionResponse, error) {
	txs, err := s.c2bRepo.GetAllByMSISDN(msisdn)
	if err != nil {
		return nil, err
	}
	return s.enrichAll(txs)
}

func (s *QueryService) enrichAll(txs []models.C2BTransaction) ([]C2BTransactionResponse, error) {
	responses := make([]C2BTransactionResponse, 0, len(txs))
	for i := range txs {
		resp, err := s.enrich(&txs[i])
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

// enrich attaches the payout, if any. A collection without a payout is a
// normal state, not an error.
func (s *QueryService) enrich(tx *models.C2BTransaction) (*C2BTransactionResponse, error) {
	resp := &C2BTransactionResponse{
		ID:                tx.ID,
		UUID:              tx.UUID,
		TransactionType:   tx.TransactionType,
		TransID:           tx.TransID,
		TransTime:         tx.TransTime,
		TransAmount:       tx.TransAmount,
		BusinessShortcode: tx.BusinessShortcode,
		BillRefNumber:     tx.BillRefNumber,
		MSISDN:            tx.MSISDN,
		CustomerName:      tx.CustomerName(),
		Status:            tx.Status,
		B2BDisbursed:      tx.B2BDisbursed,
		CreatedAt:         tx.CreatedAt,
	}

	b2bTx, err := s.b2bRepo.GetByC2BTransactionID(tx.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return resp, nil
		}
		return nil, err
	}

	resp.B2BTransaction = &B2BTransactionResponse{
		ID:                       b2bTx.ID,
		UUID:                     b2bTx.UUID,
		ConversationID:           b2bTx.ConversationID,
		OriginatorConversationID: b2bTx.OriginatorConversationID,
		SenderShortcode:          b2bTx.SenderShortcode,
		ReceiverShortcode:        b2bTx.ReceiverShortcode,
		Amount:                   b2bTx.Amount,
		CommandID:                b2bTx.CommandID,
		Status:                   b2bTx.Status,
		ResultCode:               b2bTx.ResultCode,
		ResultDesc:               b2bTx.ResultDesc,
		TransactionID:            b2bTx.TransactionID,
		CreatedAt:                b2bTx.CreatedAt,
	}
	return resp, nil
}
