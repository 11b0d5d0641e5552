package payment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Config holds the gateway credentials and endpoints.
type Config struct {
	BaseURL              string
	MerchantSerialNumber string
	SubscriptionKey      string
	ClientID             string
	ClientSecret         string
	CallbackPrefix       string
	FallbackPrefix       string
	Timeout              time.Duration
}

// VippsClient proxies payment initiation and refund calls to the Vipps
// eCommerce API. Every call exchanges credentials for a fresh bearer token
// first; the gateway's own responses are passed back untranslated.
type VippsClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewVippsClient creates a gateway client with a bounded request timeout.
func NewVippsClient(cfg Config) *VippsClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &VippsClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// getAccessToken exchanges the merchant credentials for a bearer token.
func (c *VippsClient) getAccessToken() (string, error) {
	req, err := http.NewRequest(http.MethodPost, c.cfg.BaseURL+"/accesstoken/get", nil)
	if err != nil {
		return "", fmt.Errorf("failed to build access token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("client_id", c.cfg.ClientID)
	req.Header.Set("client_secret", c.cfg.ClientSecret)
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.SubscriptionKey)
	req.Header.Set("Merchant-Serial-Number", c.cfg.MerchantSerialNumber)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("access token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("access token request returned status %d", resp.StatusCode)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode access token response: %w", err)
	}
	token, ok := body["access_token"].(string)
	if !ok || token == "" {
		return "", fmt.Errorf("access token missing from gateway response")
	}
	return token, nil
}

// postJSON sends an authenticated JSON request and decodes the gateway's
// JSON response.
func (c *VippsClient) postJSON(url, accessToken string, payload interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gateway request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.SubscriptionKey)
	req.Header.Set("Merchant-Serial-Number", c.cfg.MerchantSerialNumber)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return body, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return body, nil
}

// InitiatePayment submits a payment request keyed by orderID. The amount is
// given in NOK and converted to øre for the gateway.
func (c *VippsClient) InitiatePayment(orderID string, amount float64, description string) (map[string]interface{}, error) {
	accessToken, err := c.getAccessToken()
	if err != nil {
		return nil, err
	}

	requestBody := map[string]interface{}{
		"merchantInfo": map[string]interface{}{
			"merchantSerialNumber": c.cfg.MerchantSerialNumber,
			"callbackPrefix":       c.cfg.CallbackPrefix,
			"fallBack":             c.cfg.FallbackPrefix + "/" + orderID,
		},
		"transaction": map[string]interface{}{
			"orderId":         orderID,
			"amount":          int64(amount * 100), // Convert to øre
			"transactionText": description,
		},
	}

	return c.postJSON(c.cfg.BaseURL+"/ecomm/v2/payments", accessToken, requestBody)
}

// RefundPayment submits a refund for a previously captured payment.
func (c *VippsClient) RefundPayment(orderID string, amount float64) (map[string]interface{}, error) {
	accessToken, err := c.getAccessToken()
	if err != nil {
		return nil, err
	}

	requestBody := map[string]interface{}{
		"amount": map[string]interface{}{
			"currency": "NOK",
			"value":    int64(amount * 100), // Convert to øre
		},
	}

	return c.postJSON(c.cfg.BaseURL+"/ecomm/v2/payments/"+orderID+"/refund", accessToken, requestBody)
}
