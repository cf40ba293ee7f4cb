package b2b

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aquaflow/aquaflow/app/models"
	"github.com/aquaflow/aquaflow/internal/pkg/daraja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGateway struct {
	lastRequest *daraja.B2BPaymentRequest
	response    *daraja.B2BPaymentResponse
	err         error
	calls       int
}

func (g *fakeGateway) SendB2BPayment(ctx context.Context, req *daraja.B2BPaymentRequest) (*daraja.B2BPaymentResponse, error) {
	g.calls++
	g.lastRequest = req
	if g.err != nil {
		return nil, g.err
	}
	return g.response, nil
}

type fakeB2BRepo struct {
	txs       []*models.B2BTransaction
	createErr error
	updates   int
}

func (r *fakeB2BRepo) Create(tx *models.B2BTransaction) error {
	if r.createErr != nil {
		return r.createErr
	}
	tx.ID = uint(len(r.txs) + 1)
	r.txs = append(r.txs, tx)
	return nil
}

func (r *fakeB2BRepo) Update(tx *models.B2BTransaction) error {
	r.updates++
	return nil
}

func (r *fakeB2BRepo) GetByConversationID(conversationID string) (*models.B2BTransaction, error) {
	for _, tx := range r.txs {
		if tx.ConversationID == conversationID {
			return tx, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeB2BRepo) GetByOriginatorConversationID(originatorConversationID string) (*models.B2BTransaction, error) {
	for _, tx := range r.txs {
		if tx.OriginatorConversationID == originatorConversationID {
			return tx, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeB2BRepo) GetByC2BTransactionID(c2bTransactionID uint) (*models.B2BTransaction, error) {
	for _, tx := range r.txs {
		if tx.C2BTransactionID == c2bTransactionID {
			return tx, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeC2BRepo struct {
	txs       map[string]*models.C2BTransaction
	updateErr error
}

func newFakeC2BRepo() *fakeC2BRepo {
	return &fakeC2BRepo{txs: map[string]*models.C2BTransaction{}}
}

func (r *fakeC2BRepo) Create(tx *models.C2BTransaction) error {
	tx.ID = uint(len(r.txs) + 1)
	r.txs[tx.TransID] = tx
	return nil
}

func (r *fakeC2BRepo) Update(tx *models.C2BTransaction) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.txs[tx.TransID] = tx
	return nil
}

func (r *fakeC2BRepo) GetByTransID(transID string) (*models.C2BTransaction, error) {
	if tx, ok := r.txs[transID]; ok {
		return tx, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeC2BRepo) ExistsByTransID(transID string) (bool, error) {
	_, ok := r.txs[transID]
	return ok, nil
}

func (r *fakeC2BRepo) GetAllByBillRefNumber(billRefNumber string) ([]models.C2BTransaction, error) {
	var out []models.C2BTransaction
	for _, tx := range r.txs {
		if tx.BillRefNumber == billRefNumber {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (r *fakeC2BRepo) GetAllByMSISDN(msisdn string) ([]models.C2BTransaction, error) {
	var out []models.C2BTransaction
	for _, tx := range r.txs {
		if tx.MSISDN == msisdn {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func testConfig() *daraja.Config {
	return &daraja.Config{
		BaseURL:        "https://sandbox.safaricom.co.ke",
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		B2B: daraja.B2BConfig{
			InitiatorName:          "apiuser",
			SecurityCredential:     "encrypted",
			SenderShortcode:        "600999",
			ReceiverShortcode:      "600000",
			CommandID:              "BusinessPayBill",
			QueueTimeoutURL:        "https://example.com/api/v1/mpesa/b2b/timeout",
			ResultURL:              "https://example.com/api/v1/mpesa/b2b/result",
			DisbursementPercentage: 50,
		},
	}
}

func intPtr(v int) *int { return &v }

func TestDisbursementAmount(t *testing.T) {
	tests := []struct {
		name        string
		transAmount float64
		percentage  int
		want        int64
	}{
		{"half of 1000", 1000, 50, 500},
		{"floors fractional shillings", 99.99, 50, 49},
		{"floors odd split", 101, 50, 50},
		{"full percentage", 250, 100, 250},
		{"one percent of small amount", 50, 1, 0},
		{"below one shilling", 1, 50, 0},
		{"zero amount", 0, 50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisbursementAmount(tt.transAmount, tt.percentage))
		})
	}
}

func TestDisburse(t *testing.T) {
	gateway := &fakeGateway{response: &daraja.B2BPaymentResponse{
		OriginatorConversationID: "5118-111210482-1",
		ConversationID:           "AG_20230420_5678",
		ResponseCode:             "0",
		ResponseDescription:      "Accept the service request successfully.",
	}}
	b2bRepo := &fakeB2BRepo{}
	c2bRepo := newFakeC2BRepo()
	svc := NewService(testConfig(), gateway, b2bRepo, c2bRepo)

	c2bTx := &models.C2BTransaction{TransID: "RKTQDM7W6S", TransAmount: 1000}
	require.NoError(t, c2bRepo.Create(c2bTx))

	b2bTx, err := svc.Disburse(context.Background(), c2bTx)
	require.NoError(t, err)
	require.NotNil(t, b2bTx)

	assert.Equal(t, int64(500), b2bTx.Amount)
	assert.Equal(t, models.B2BStatusInitiated, b2bTx.Status)
	assert.Equal(t, "AG_20230420_5678", b2bTx.ConversationID)
	assert.Equal(t, "5118-111210482-1", b2bTx.OriginatorConversationID)
	assert.Equal(t, c2bTx.ID, b2bTx.C2BTransactionID)
	assert.NotEmpty(t, b2bTx.RawRequest)

	assert.True(t, c2bTx.B2BDisbursed)

	require.NotNil(t, gateway.lastRequest)
	assert.Equal(t, int64(500), gateway.lastRequest.Amount)
	assert.Equal(t, "600999", gateway.lastRequest.PartyA)
	assert.Equal(t, "600000", gateway.lastRequest.PartyB)
	assert.Equal(t, "4", gateway.lastRequest.SenderIdentifierType)
	assert.Equal(t, "4", gateway.lastRequest.ReceiverIdentifierType)
	assert.Contains(t, gateway.lastRequest.AccountReference, "RKTQDM7W6S")
}

func TestDisburseSkipsAmountBelowOne(t *testing.T) {
	gateway := &fakeGateway{}
	svc := NewService(testConfig(), gateway, &fakeB2BRepo{}, newFakeC2BRepo())

	b2bTx, err := svc.Disburse(context.Background(), &models.C2BTransaction{TransID: "TINY1", TransAmount: 1})
	require.NoError(t, err)
	assert.Nil(t, b2bTx)
	assert.Zero(t, gateway.calls)
}

func TestDisburseGatewayError(t *testing.T) {
	gateway := &fakeGateway{err: &daraja.APIError{StatusCode: 500, Body: "internal"}}
	b2bRepo := &fakeB2BRepo{}
	c2bRepo := newFakeC2BRepo()
	svc := NewService(testConfig(), gateway, b2bRepo, c2bRepo)

	c2bTx := &models.C2BTransaction{TransID: "RKTQDM7W6S", TransAmount: 1000}
	require.NoError(t, c2bRepo.Create(c2bTx))

	_, err := svc.Disburse(context.Background(), c2bTx)
	require.Error(t, err)
	assert.Empty(t, b2bRepo.txs)
	assert.False(t, c2bTx.B2BDisbursed)
}

func TestDisburseRecordWriteFailure(t *testing.T) {
	gateway := &fakeGateway{response: &daraja.B2BPaymentResponse{ConversationID: "AG_1"}}
	b2bRepo := &fakeB2BRepo{createErr: errors.New("db gone")}
	c2bRepo := newFakeC2BRepo()
	svc := NewService(testConfig(), gateway, b2bRepo, c2bRepo)

	c2bTx := &models.C2BTransaction{TransID: "RKTQDM7W6S", TransAmount: 1000}
	require.NoError(t, c2bRepo.Create(c2bTx))

	_, err := svc.Disburse(context.Background(), c2bTx)
	require.Error(t, err)
	assert.False(t, c2bTx.B2BDisbursed)
}

func TestHandleResultSuccess(t *testing.T) {
	b2bRepo := &fakeB2BRepo{txs: []*models.B2BTransaction{{
		ID:                       1,
		ConversationID:           "AG_20230420_5678",
		OriginatorConversationID: "5118-111210482-1",
		Status:                   models.B2BStatusInitiated,
	}}}
	svc := NewService(testConfig(), &fakeGateway{}, b2bRepo, newFakeC2BRepo())

	payload := &daraja.B2BResultPayload{Result: daraja.B2BResult{
		ResultType:               intPtr(0),
		ResultCode:               intPtr(0),
		ResultDesc:               "The service request is processed successfully.",
		ConversationID:           "AG_20230420_5678",
		OriginatorConversationID: "5118-111210482-1",
		TransactionID:            "QKA81LK5CY",
		ResultParameters: daraja.ResultParameters{ResultParameter: []daraja.ResultParameter{
			{Key: "DebitAccountBalance", Value: "Working Account|KES|500.00|500.00|0.00|0.00"},
			{Key: "CreditAccountBalance", Value: "Utility Account|KES|1500.00"},
			{Key: "TransCompletedTime", Value: float64(20230420103045)},
			{Key: "InitiatorAccountCurrentBalance", Value: "ignored"},
		}},
	}}

	tx, err := svc.HandleResult(context.Background(), payload)
	require.NoError(t, err)

	assert.Equal(t, models.B2BStatusSuccess, tx.Status)
	assert.Equal(t, "QKA81LK5CY", tx.TransactionID)
	assert.Equal(t, "Working Account|KES|500.00|500.00|0.00|0.00", tx.DebitAccountBalance)
	assert.Equal(t, "Utility Account|KES|1500.00", tx.CreditAccountBalance)
	assert.Equal(t, "20230420103045", tx.TransactionCompletedTime)
	assert.NotEmpty(t, tx.RawResult)
	assert.Equal(t, 1, b2bRepo.updates)
}

func TestHandleResultNumericParamsKeepDigits(t *testing.T) {
	b2bRepo := &fakeB2BRepo{txs: []*models.B2BTransaction{{
		ID:             1,
		ConversationID: "AG_20230420_5678",
		Status:         models.B2BStatusInitiated,
	}}}
	svc := NewService(testConfig(), &fakeGateway{}, b2bRepo, newFakeC2BRepo())

	// Decoded from wire JSON so numeric values take the float64 path.
	raw := `{"Result":{"ResultType":0,"ResultCode":0,"ResultDesc":"ok",
		"ConversationID":"AG_20230420_5678","TransactionID":"QKA81LK5CY",
		"ResultParameters":{"ResultParameter":[
			{"Key":"TransCompletedTime","Value":20230420103045},
			{"Key":"DebitAccountBalance","Value":500.25}
		]}}}`
	var payload daraja.B2BResultPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	tx, err := svc.HandleResult(context.Background(), &payload)
	require.NoError(t, err)
	assert.Equal(t, "20230420103045", tx.TransactionCompletedTime)
	assert.Equal(t, "500.25", tx.DebitAccountBalance)
}

func TestHandleResultFailureCode(t *testing.T) {
	b2bRepo := &fakeB2BRepo{txs: []*models.B2BTransaction{{
		ID:             1,
		ConversationID: "AG_1",
		Status:         models.B2BStatusInitiated,
	}}}
	svc := NewService(testConfig(), &fakeGateway{}, b2bRepo, newFakeC2BRepo())

	payload := &daraja.B2BResultPayload{Result: daraja.B2BResult{
		ResultCode:     intPtr(2001),
		ResultDesc:     "The initiator information is invalid.",
		ConversationID: "AG_1",
	}}

	tx, err := svc.HandleResult(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, models.B2BStatusFailed, tx.Status)
	require.NotNil(t, tx.ResultCode)
	assert.Equal(t, 2001, *tx.ResultCode)
}

func TestHandleResultFallsBackToOriginatorID(t *testing.T) {
	b2bRepo := &fakeB2BRepo{txs: []*models.B2BTransaction{{
		ID:                       1,
		OriginatorConversationID: "5118-111210482-1",
		Status:                   models.B2BStatusInitiated,
	}}}
	svc := NewService(testConfig(), &fakeGateway{}, b2bRepo, newFakeC2BRepo())

	payload := &daraja.B2BResultPayload{Result: daraja.B2BResult{
		ResultCode:               intPtr(0),
		ConversationID:           "AG_unknown",
		OriginatorConversationID: "5118-111210482-1",
	}}

	tx, err := svc.HandleResult(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, models.B2BStatusSuccess, tx.Status)
}

func TestHandleResultUnknownPayout(t *testing.T) {
	svc := NewService(testConfig(), &fakeGateway{}, &fakeB2BRepo{}, newFakeC2BRepo())

	payload := &daraja.B2BResultPayload{Result: daraja.B2BResult{
		ResultCode:     intPtr(0),
		ConversationID: "AG_nope",
	}}

	_, err := svc.HandleResult(context.Background(), payload)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPayoutNotFound))
}

func TestHandleTimeout(t *testing.T) {
	b2bRepo := &fakeB2BRepo{txs: []*models.B2BTransaction{{
		ID:             1,
		ConversationID: "AG_1",
		Status:         models.B2BStatusInitiated,
	}}}
	svc := NewService(testConfig(), &fakeGateway{}, b2bRepo, newFakeC2BRepo())

	payload := &daraja.B2BResultPayload{Result: daraja.B2BResult{
		ResultCode:     intPtr(1),
		ResultDesc:     "The service request timed out.",
		ConversationID: "AG_1",
	}}

	tx, err := svc.HandleTimeout(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, models.B2BStatusTimeout, tx.Status)
}

func TestHandleTimeoutUnknownPayoutIsSilent(t *testing.T) {
	svc := NewService(testConfig(), &fakeGateway{}, &fakeB2BRepo{}, newFakeC2BRepo())

	payload := &daraja.B2BResultPayload{Result: daraja.B2BResult{ConversationID: "AG_nope"}}

	tx, err := svc.HandleTimeout(context.Background(), payload)
	require.NoError(t, err)
	assert.Nil(t, tx)
}
