package daraja

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	registerURLPath = "/mpesa/c2b/v1/registerurl"
	b2bPaymentPath  = "/mpesa/b2b/v1/paymentrequest"
)

// Client issues typed calls against the Daraja API. It carries no retry
// logic; retry policy belongs to the caller.
type Client struct {
	cfg        *Config
	auth       *TokenCache
	httpClient *http.Client
}

func NewClient(cfg *Config) *Client {
	return &Client{
		cfg:  cfg,
		auth: NewTokenCache(cfg),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// RegisterC2BURLs registers the configured validation and confirmation URLs
// with Safaricom. Meant to be called once per shortcode setup.
func (c *Client) RegisterC2BURLs(ctx context.Context) (*C2BRegisterURLResponse, error) {
	req := C2BRegisterURLRequest{
		ShortCode:       c.cfg.C2B.Shortcode,
		ResponseType:    c.cfg.C2B.ResponseType,
		ConfirmationURL: c.cfg.C2B.ConfirmationURL,
		ValidationURL:   c.cfg.C2B.ValidationURL,
	}

	log.Printf("Registering C2B URLs: confirmation=%s validation=%s",
		req.ConfirmationURL, req.ValidationURL)

	var out C2BRegisterURLResponse
	if err := c.postJSON(ctx, registerURLPath, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendB2BPayment submits a payment request and returns the gateway's
// acceptance, carrying the correlation IDs for the asynchronous result.
func (c *Client) SendB2BPayment(ctx context.Context, req *B2BPaymentRequest) (*B2BPaymentResponse, error) {
	var out B2BPaymentResponse
	if err := c.postJSON(ctx, b2bPaymentPath, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	token, err := c.auth.GetToken(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return json.Unmarshal(respBody, out)
}
