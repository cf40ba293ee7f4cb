package daraja

import (
	"testing"

	"github.com/aquaflow/aquaflow/internal/pkg/env"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestEnv() map[string]string {
	return map[string]string{
		"DARAJA_BASE_URL":                "https://sandbox.safaricom.co.ke",
		"DARAJA_CONSUMER_KEY":            "key",
		"DARAJA_CONSUMER_SECRET":         "secret",
		"DARAJA_C2B_SHORTCODE":           "600999",
		"DARAJA_C2B_CONFIRMATION_URL":    "https://example.com/api/v1/c2b/confirmation",
		"DARAJA_C2B_VALIDATION_URL":      "https://example.com/api/v1/c2b/validation",
		"DARAJA_B2B_INITIATOR_NAME":      "apiuser",
		"DARAJA_B2B_SECURITY_CREDENTIAL": "encrypted",
		"DARAJA_B2B_SENDER_SHORTCODE":    "600999",
		"DARAJA_B2B_RECEIVER_SHORTCODE":  "600000",
		"DARAJA_B2B_QUEUE_TIMEOUT_URL":   "https://example.com/api/v1/mpesa/b2b/timeout",
		"DARAJA_B2B_RESULT_URL":          "https://example.com/api/v1/mpesa/b2b/result",
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	env.Env = validTestEnv()
	defer func() { env.Env = nil }()

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "Completed", cfg.C2B.ResponseType)
	assert.Equal(t, "BusinessPayBill", cfg.B2B.CommandID)
	assert.Equal(t, DefaultDisbursementPercentage, cfg.B2B.DisbursementPercentage)
}

func TestLoadConfigCustomPercentage(t *testing.T) {
	e := validTestEnv()
	e["DARAJA_B2B_DISBURSEMENT_PERCENTAGE"] = "30"
	env.Env = e
	defer func() { env.Env = nil }()

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.B2B.DisbursementPercentage)
}

func TestLoadConfigInvalidPercentage(t *testing.T) {
	for _, raw := range []string{"abc", "0", "101"} {
		e := validTestEnv()
		e["DARAJA_B2B_DISBURSEMENT_PERCENTAGE"] = raw
		env.Env = e

		_, err := LoadConfig()
		assert.Error(t, err, "percentage %q must be rejected", raw)
	}
	env.Env = nil
}

func TestLoadConfigMissingCredentials(t *testing.T) {
	e := validTestEnv()
	delete(e, "DARAJA_CONSUMER_KEY")
	env.Env = e
	defer func() { env.Env = nil }()

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestConfigValidateResponseType(t *testing.T) {
	e := validTestEnv()
	e["DARAJA_C2B_RESPONSE_TYPE"] = "Maybe"
	env.Env = e
	defer func() { env.Env = nil }()

	_, err := LoadConfig()
	require.Error(t, err)
}
