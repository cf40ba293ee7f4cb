package b2b

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"

	"github.com/aquaflow/aquaflow/app/models"
	"github.com/aquaflow/aquaflow/app/repository"
	"github.com/aquaflow/aquaflow/internal/pkg/daraja"
	"gorm.io/gorm"
)

// ErrPayoutNotFound is returned when a result callback matches no recorded
// disbursement by either correlation ID.
var ErrPayoutNotFound = errors.New("no b2b transaction matches the result correlation ids")

// Gateway is the outbound slice of the Daraja client this service needs.
type Gateway interface {
	SendB2BPayment(ctx context.Context, req *daraja.B2BPaymentRequest) (*daraja.B2BPaymentResponse, error)
}

// Service orchestrates disbursements: it computes the payout amount for a
// confirmed collection, issues the B2B request, records the payout, and later
// reconciles the asynchronous result or timeout callback against it.
type Service struct {
	cfg     *daraja.Config
	gateway Gateway
	b2bRepo repository.B2BTransactionRepository
	c2bRepo repository.C2BTransactionRepository
}

func NewService(
	cfg *daraja.Config,
	gateway Gateway,
	b2bRepo repository.B2BTransactionRepository,
	c2bRepo repository.C2BTransactionRepository,
) *Service {
	return &Service{
		cfg:     cfg,
		gateway: gateway,
		b2bRepo: b2bRepo,
		c2bRepo: c2bRepo,
	}
}

// DisbursementAmount computes the payout for a collected amount with floor
// rounding. Amounts below one shilling are not transferable.
func DisbursementAmount(transAmount float64, percentage int) int64 {
	return int64(math.Floor(transAmount * float64(percentage) / 100))
}

// Disburse pays out the configured percentage of a confirmed collection.
// Returns (nil, nil) when the computed amount is below the smallest
// transferable unit; that is a deliberate no-op, not an error.
func (s *Service) Disburse(ctx context.Context, c2bTx *models.C2BTransaction) (*models.B2BTransaction, error) {
	pct := s.cfg.B2B.DisbursementPercentage
	amount := DisbursementAmount(c2bTx.TransAmount, pct)
	if amount < 1 {
		log.Printf("B2B disbursement amount too small (%d) for C2B trans_id=%s, skipping", amount, c2bTx.TransID)
		return nil, nil
	}

	req := &daraja.B2BPaymentRequest{
		Initiator:              s.cfg.B2B.InitiatorName,
		SecurityCredential:     s.cfg.B2B.SecurityCredential,
		CommandID:              s.cfg.B2B.CommandID,
		SenderIdentifierType:   "4", // organization shortcode
		ReceiverIdentifierType: "4",
		Amount:                 amount,
		PartyA:                 s.cfg.B2B.SenderShortcode,
		PartyB:                 s.cfg.B2B.ReceiverShortcode,
		AccountReference:       "AquaFlow-" + c2bTx.TransID,
		Remarks:                "Auto disbursement for C2B " + c2bTx.TransID,
		QueueTimeOutURL:        s.cfg.B2B.QueueTimeoutURL,
		ResultURL:              s.cfg.B2B.ResultURL,
	}
	rawRequest, _ := json.Marshal(req)

	log.Printf("Initiating B2B disbursement: amount=%d (%d%% of %.2f), sender=%s, receiver=%s",
		amount, pct, c2bTx.TransAmount, req.PartyA, req.PartyB)

	resp, err := s.gateway.SendB2BPayment(ctx, req)
	if err != nil {
		return nil, err
	}

	log.Printf("B2B payment initiated: conversation_id=%s, response_code=%s, desc=%s",
		resp.ConversationID, resp.ResponseCode, resp.ResponseDescription)

	b2bTx := &models.B2BTransaction{
		C2BTransactionID:         c2bTx.ID,
		ConversationID:           resp.ConversationID,
		OriginatorConversationID: resp.OriginatorConversationID,
		SenderShortcode:          s.cfg.B2B.SenderShortcode,
		ReceiverShortcode:        s.cfg.B2B.ReceiverShortcode,
		Amount:                   amount,
		CommandID:                s.cfg.B2B.CommandID,
		Status:                   models.B2BStatusInitiated,
		RawRequest:               string(rawRequest),
	}
	if err := s.b2bRepo.Create(b2bTx); err != nil {
		// The gateway accepted the payout but we failed to record it. Log
		// both correlation IDs so the payout can be reconciled against
		// Safaricom's records out of band.
		log.Printf("B2B record write failed after gateway accept: conversation_id=%s originator_id=%s: %v",
			resp.ConversationID, resp.OriginatorConversationID, err)
		return nil, err
	}

	c2bTx.B2BDisbursed = true
	if err := s.c2bRepo.Update(c2bTx); err != nil {
		return nil, err
	}

	return b2bTx, nil
}

// HandleResult reconciles an asynchronous result callback with its payout.
// Result code zero is success; anything else is a failure. Replaying the same
// payload re-derives the same terminal state.
func (s *Service) HandleResult(ctx context.Context, payload *daraja.B2BResultPayload) (*models.B2BTransaction, error) {
	result := payload.Result
	log.Printf("B2B result received: conversation_id=%s, result_code=%v, desc=%s",
		result.ConversationID, result.ResultCode, result.ResultDesc)

	b2bTx, err := s.findByCorrelationIDs(result.ConversationID, result.OriginatorConversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: conversation_id=%s originator_id=%s",
				ErrPayoutNotFound, result.ConversationID, result.OriginatorConversationID)
		}
		return nil, err
	}

	rawResult, _ := json.Marshal(payload)

	b2bTx.ResultType = result.ResultType
	b2bTx.ResultCode = result.ResultCode
	b2bTx.ResultDesc = result.ResultDesc
	b2bTx.TransactionID = result.TransactionID
	b2bTx.RawResult = string(rawResult)

	if result.ResultCode != nil && *result.ResultCode == 0 {
		b2bTx.Status = models.B2BStatusSuccess
		extractResultParams(&result, b2bTx)
	} else {
		b2bTx.Status = models.B2BStatusFailed
	}

	if err := s.b2bRepo.Update(b2bTx); err != nil {
		return nil, err
	}
	return b2bTx, nil
}

// HandleTimeout marks a payout as timed out. A timeout for an untracked
// payout is not actionable and is tolerated silently.
func (s *Service) HandleTimeout(ctx context.Context, payload *daraja.B2BResultPayload) (*models.B2BTransaction, error) {
	result := payload.Result
	log.Printf("B2B timeout received: conversation_id=%s", result.ConversationID)

	b2bTx, err := s.findByCorrelationIDs(result.ConversationID, result.OriginatorConversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("B2B timeout for unknown payout: conversation_id=%s originator_id=%s",
				result.ConversationID, result.OriginatorConversationID)
			return nil, nil
		}
		return nil, err
	}

	b2bTx.Status = models.B2BStatusTimeout
	b2bTx.ResultCode = result.ResultCode
	b2bTx.ResultDesc = result.ResultDesc

	if err := s.b2bRepo.Update(b2bTx); err != nil {
		return nil, err
	}
	return b2bTx, nil
}

// findByCorrelationIDs tries the conversation ID first and falls back to the
// originator conversation ID; the gateway is not guaranteed to echo both.
func (s *Service) findByCorrelationIDs(conversationID, originatorConversationID string) (*models.B2BTransaction, error) {
	if conversationID != "" {
		tx, err := s.b2bRepo.GetByConversationID(conversationID)
		if err == nil {
			return tx, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if originatorConversationID != "" {
		return s.b2bRepo.GetByOriginatorConversationID(originatorConversationID)
	}
	return nil, gorm.ErrRecordNotFound
}

func extractResultParams(result *daraja.B2BResult, b2bTx *models.B2BTransaction) {
	for _, param := range result.ResultParameters.ResultParameter {
		value := formatParamValue(param.Value)
		switch param.Key {
		case "DebitAccountBalance":
			b2bTx.DebitAccountBalance = value
		case "CreditAccountBalance":
			b2bTx.CreditAccountBalance = value
		case "TransCompletedTime":
			b2bTx.TransactionCompletedTime = value
		default:
			log.Printf("B2B result param ignored: %s=%v", param.Key, param.Value)
		}
	}
}

// formatParamValue renders a result parameter for storage. JSON numbers
// arrive as float64; Sprintf would turn a large integral value like a
// completion timestamp into scientific notation.
func formatParamValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
