package daraja

// Wire types for the Safaricom Daraja API. Field names are fixed by the
// gateway and must not be changed, including documented inconsistencies such
// as OriginatorCoversationID in the URL-registration response.

// AuthResponse is the body of the OAuth token endpoint. Safaricom reports
// expires_in as a string.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// C2BCallbackPayload is what Safaricom posts to the validation and
// confirmation URLs.
type C2BCallbackPayload struct {
	TransactionType   string  `json:"TransactionType"`
	TransID           string  `json:"TransID"`
	TransTime         string  `json:"TransTime"`
	TransAmount       float64 `json:"TransAmount"`
	BusinessShortCode string  `json:"BusinessShortCode"`
	BillRefNumber     string  `json:"BillRefNumber"`
	InvoiceNumber     string  `json:"InvoiceNumber"`
	OrgAccountBalance float64 `json:"OrgAccountBalance"`
	ThirdPartyTransID string  `json:"ThirdPartyTransID"`
	MSISDN            string  `json:"MSISDN"`
	FirstName         string  `json:"FirstName"`
	MiddleName        string  `json:"MiddleName"`
	LastName          string  `json:"LastName"`
}

// C2BRegisterURLRequest registers the validation and confirmation callback
// URLs for a shortcode.
type C2BRegisterURLRequest struct {
	ShortCode       string `json:"ShortCode"`
	ResponseType    string `json:"ResponseType"`
	ConfirmationURL string `json:"ConfirmationURL"`
	ValidationURL   string `json:"ValidationURL"`
}

type C2BRegisterURLResponse struct {
	OriginatorConversationID string `json:"OriginatorCoversationID"`
	ConversationID           string `json:"ConversationID"`
	ResponseDescription      string `json:"ResponseDescription"`
}

// B2BPaymentRequest is the outbound business-to-business payment request.
type B2BPaymentRequest struct {
	Initiator              string `json:"Initiator"`
	SecurityCredential     string `json:"SecurityCredential"`
	CommandID              string `json:"CommandID"`
	SenderIdentifierType   string `json:"SenderIdentifierType"`
	ReceiverIdentifierType string `json:"ReceiverIdentifierType"`
	Amount                 int64  `json:"Amount"`
	PartyA                 string `json:"PartyA"`
	PartyB                 string `json:"PartyB"`
	AccountReference       string `json:"AccountReference"`
	Remarks                string `json:"Remarks"`
	QueueTimeOutURL        string `json:"QueueTimeOutURL"`
	ResultURL              string `json:"ResultURL"`
}

// B2BPaymentResponse acknowledges an accepted payment request. The actual
// outcome arrives later on the result URL, correlated by either ID.
type B2BPaymentResponse struct {
	OriginatorConversationID string `json:"OriginatorConversationID"`
	ConversationID           string `json:"ConversationID"`
	ResponseCode             string `json:"ResponseCode"`
	ResponseDescription      string `json:"ResponseDescription"`
}

// B2BResultPayload is the asynchronous result (or timeout) callback for a
// previously issued B2B payment request.
type B2BResultPayload struct {
	Result B2BResult `json:"Result"`
}

type B2BResult struct {
	ResultType               *int             `json:"ResultType"`
	ResultCode               *int             `json:"ResultCode"`
	ResultDesc               string           `json:"ResultDesc"`
	OriginatorConversationID string           `json:"OriginatorConversationID"`
	ConversationID           string           `json:"ConversationID"`
	TransactionID            string           `json:"TransactionID"`
	ResultParameters         ResultParameters `json:"ResultParameters"`
	ReferenceData            ReferenceData    `json:"ReferenceData"`
}

type ResultParameters struct {
	ResultParameter []ResultParameter `json:"ResultParameter"`
}

// ResultParameter is one entry of the flat key/value list attached to a
// successful result. Values may be strings or numbers depending on the key.
type ResultParameter struct {
	Key   string      `json:"Key"`
	Value interface{} `json:"Value"`
}

type ReferenceData struct {
	ReferenceItem ReferenceItem `json:"ReferenceItem"`
}

type ReferenceItem struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

// AckResponse is the acknowledgment Safaricom expects from every callback
// endpoint.
type AckResponse struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

// AcceptedAck is the fixed accept acknowledgment. Callback endpoints return
// it unconditionally; rejecting a live customer payment has asymmetric cost.
func AcceptedAck() AckResponse {
	return AckResponse{ResultCode: 0, ResultDesc: "Accepted"}
}
