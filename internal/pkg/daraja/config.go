package daraja

import (
	"fmt"
	"strconv"

	"github.com/aquaflow/aquaflow/internal/pkg/env"
	"github.com/go-playground/validator/v10"
)

// DefaultDisbursementPercentage is the share of a confirmed C2B amount that
// is paid out via B2B when no explicit percentage is configured.
const DefaultDisbursementPercentage = 50

// Config carries all Daraja gateway settings. Loaded once at startup and
// treated as read-only afterwards.
type Config struct {
	BaseURL        string `validate:"required,url"`
	ConsumerKey    string `validate:"required"`
	ConsumerSecret string `validate:"required"`
	C2B            C2BConfig
	B2B            B2BConfig
}

// C2BConfig holds the collection-side settings (paybill shortcode and the
// callback URLs registered with Safaricom).
type C2BConfig struct {
	Shortcode       string `validate:"required"`
	ResponseType    string `validate:"required,oneof=Completed Cancelled"`
	ConfirmationURL string `validate:"required,url"`
	ValidationURL   string `validate:"required,url"`
}

// B2BConfig holds the disbursement-side settings. SecurityCredential is the
// initiator password already encrypted with the M-Pesa public certificate.
type B2BConfig struct {
	InitiatorName          string `validate:"required"`
	SecurityCredential     string `validate:"required"`
	SenderShortcode        string `validate:"required"`
	ReceiverShortcode      string `validate:"required"`
	CommandID              string `validate:"required"`
	QueueTimeoutURL        string `validate:"required,url"`
	ResultURL              string `validate:"required,url"`
	DisbursementPercentage int    `validate:"min=1,max=100"`
}

// LoadConfig materializes the gateway configuration from the environment and
// validates it. A broken configuration should stop the app at startup rather
// than surface as failed payouts later.
func LoadConfig() (*Config, error) {
	pct := DefaultDisbursementPercentage
	if raw := env.GetEnv("DARAJA_B2B_DISBURSEMENT_PERCENTAGE", ""); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid DARAJA_B2B_DISBURSEMENT_PERCENTAGE %q: %w", raw, err)
		}
		pct = v
	}

	cfg := &Config{
		BaseURL:        env.GetEnv("DARAJA_BASE_URL", "https://sandbox.safaricom.co.ke"),
		ConsumerKey:    env.GetEnv("DARAJA_CONSUMER_KEY", ""),
		ConsumerSecret: env.GetEnv("DARAJA_CONSUMER_SECRET", ""),
		C2B: C2BConfig{
			Shortcode:       env.GetEnv("DARAJA_C2B_SHORTCODE", ""),
			ResponseType:    env.GetEnv("DARAJA_C2B_RESPONSE_TYPE", "Completed"),
			ConfirmationURL: env.GetEnv("DARAJA_C2B_CONFIRMATION_URL", ""),
			ValidationURL:   env.GetEnv("DARAJA_C2B_VALIDATION_URL", ""),
		},
		B2B: B2BConfig{
			InitiatorName:          env.GetEnv("DARAJA_B2B_INITIATOR_NAME", ""),
			SecurityCredential:     env.GetEnv("DARAJA_B2B_SECURITY_CREDENTIAL", ""),
			SenderShortcode:        env.GetEnv("DARAJA_B2B_SENDER_SHORTCODE", ""),
			ReceiverShortcode:      env.GetEnv("DARAJA_B2B_RECEIVER_SHORTCODE", ""),
			CommandID:              env.GetEnv("DARAJA_B2B_COMMAND_ID", "BusinessPayBill"),
			QueueTimeoutURL:        env.GetEnv("DARAJA_B2B_QUEUE_TIMEOUT_URL", ""),
			ResultURL:              env.GetEnv("DARAJA_B2B_RESULT_URL", ""),
			DisbursementPercentage: pct,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("daraja config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	v := validator.New()

	return v.Struct(c)
}
