package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/partline/marketplace/internal/domain"
)

// AcquiringClient asks the payment gateway for a card payment link. The
// gateway's callback settles the order through the payment endpoints, this
// client only opens the session.
type AcquiringClient struct {
	baseURL string
	client  *http.Client
}

func NewAcquiringClient(baseURL string) *AcquiringClient {
	return &AcquiringClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type paymentLinkRequest struct {
	OrderRequestID string `json:"orderRequestId"`
	OrderNumber    string `json:"orderNumber"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
}

type paymentLinkResponse struct {
	Link string `json:"link"`
}

func (c *AcquiringClient) CreatePaymentLink(ctx context.Context, req domain.OrderRequest) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("acquiring gateway is not configured")
	}

	total := domain.NewMoney(req.SelectedTotal())

	body, err := json.Marshal(paymentLinkRequest{
		OrderRequestID: req.ID.String(),
		OrderNumber:    req.Number,
		Amount:         total.Amount.String(),
		Currency:       total.Currency.String(),
	})
	if err != nil {
		return "", fmt.Errorf("json.Marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/payments/link", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("client.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("acquiring gateway returned %d", resp.StatusCode)
	}

	var link paymentLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return link.Link, nil
}
