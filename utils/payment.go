package utils

import (
	"fmt"
	"lms/config"

	"github.com/go-resty/resty/v2"
)

// GatewayClient verifies payment transactions against the configured
// gateway. It satisfies the enrollment service's PaymentVerifier.
type GatewayClient struct {
	client *resty.Client
}

// NewGatewayClient builds a client from the loaded AppConfig
func NewGatewayClient() *GatewayClient {
	client := resty.New().
		SetBaseURL(config.AppConfig.PaymentGatewayURL).
		SetHeader("x-api-key", config.AppConfig.PaymentGatewayKey)
	return &GatewayClient{client: client}
}

type transactionStatus struct {
	Data struct {
		Status string  `json:"status"`
		Amount float64 `json:"amount"`
	} `json:"data"`
	Message string `json:"message"`
}

// VerifyTransaction checks that the transaction exists, succeeded and
// covers the expected amount.
func (g *GatewayClient) VerifyTransaction(transactionID string, amount float64) error {
	var status transactionStatus

	resp, err := g.client.R().
		SetResult(&status).
		SetPathParam("transactionId", transactionID).
		Get("transactions/{transactionId}")
	if err != nil {
		return fmt.Errorf("payment gateway request failed: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("payment gateway returned %s: %s", resp.Status(), status.Message)
	}

	if status.Data.Status != "success" {
		return fmt.Errorf("transaction %s is not successful (status %q)", transactionID, status.Data.Status)
	}
	if status.Data.Amount+0.01 < amount {
		return fmt.Errorf("transaction %s amount %.2f does not cover %.2f", transactionID, status.Data.Amount, amount)
	}

	return nil
}
