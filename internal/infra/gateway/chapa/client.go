package chapa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"staybook/internal/app/policies"
)

const (
	initializePath = "/v1/transaction/initialize"
	verifyPath     = "/v1/transaction/verify/"

	statusSuccess = "success"
)

// Client talks to the Chapa transaction API. Transport failures surface as
// policies.ErrGatewayUnavailable, definitive refusals as ErrGatewayRejected.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		http:      &http.Client{Timeout: timeout},
	}
}

type initializeRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	TxRef       string `json:"tx_ref"`
	CallbackURL string `json:"callback_url,omitempty"`
	ReturnURL   string `json:"return_url,omitempty"`
	Customization struct {
		Title       string `json:"title,omitempty"`
		Description string `json:"description,omitempty"`
	} `json:"customization,omitempty"`
}

type apiEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type checkoutData struct {
	CheckoutURL string `json:"checkout_url"`
}

type verifyData struct {
	Status string `json:"status"`
	TxRef  string `json:"tx_ref"`
}

func (c *Client) Initialize(ctx context.Context, params policies.CheckoutParams) (policies.Checkout, error) {
	body := initializeRequest{
		Amount:      params.Amount.DecimalString(),
		Currency:    params.Amount.Currency,
		Email:       params.Email,
		FirstName:   params.FirstName,
		LastName:    params.LastName,
		PhoneNumber: params.Phone,
		TxRef:       params.TxRef,
		CallbackURL: params.CallbackURL,
		ReturnURL:   params.ReturnURL,
	}
	body.Customization.Title = params.Title
	body.Customization.Description = params.Description

	envelope, err := c.post(ctx, initializePath, body)
	if err != nil {
		return policies.Checkout{}, err
	}
	if envelope.Status != statusSuccess {
		return policies.Checkout{}, fmt.Errorf("%w: %s", policies.ErrGatewayRejected, envelope.Message)
	}
	var data checkoutData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return policies.Checkout{}, fmt.Errorf("%w: malformed response", policies.ErrGatewayUnavailable)
	}
	return policies.Checkout{CheckoutURL: data.CheckoutURL, TxRef: params.TxRef}, nil
}

func (c *Client) Verify(ctx context.Context, txRef string) (policies.VerifyResult, error) {
	envelope, err := c.get(ctx, verifyPath+txRef)
	if err != nil {
		return policies.VerifyResult{}, err
	}
	if envelope.Status != statusSuccess {
		return policies.VerifyResult{Succeeded: false}, nil
	}
	var data verifyData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return policies.VerifyResult{}, fmt.Errorf("%w: malformed response", policies.ErrGatewayUnavailable)
	}
	return policies.VerifyResult{Succeeded: data.Status == statusSuccess}, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (apiEnvelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return apiEnvelope{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return apiEnvelope{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) (apiEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return apiEnvelope{}, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (apiEnvelope, error) {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return apiEnvelope{}, fmt.Errorf("%w: %v", policies.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiEnvelope{}, fmt.Errorf("%w: %v", policies.ErrGatewayUnavailable, err)
	}
	if resp.StatusCode >= 500 {
		return apiEnvelope{}, fmt.Errorf("%w: status %d", policies.ErrGatewayUnavailable, resp.StatusCode)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return apiEnvelope{}, fmt.Errorf("%w: malformed response", policies.ErrGatewayUnavailable)
	}
	if resp.StatusCode >= 400 {
		return apiEnvelope{}, fmt.Errorf("%w: %s", policies.ErrGatewayRejected, envelope.Message)
	}
	return envelope, nil
}
