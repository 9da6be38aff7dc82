// Package integration holds thin HTTP clients for the neighbouring services:
// the document renderer and the acquiring gateway. Both degrade to no-ops
// when unconfigured, so the lifecycle runs in local setups without them.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/partline/marketplace/internal/domain"
	"go.uber.org/zap"
)

type DocumentClient struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

func NewDocumentClient(baseURL string, log *zap.Logger) *DocumentClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &DocumentClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

type invoicesRequest struct {
	OrderRequestID string   `json:"orderRequestId"`
	PayerOrgID     string   `json:"payerOrganizationId"`
	OfferIDs       []string `json:"offerIds"`
}

func (c *DocumentClient) GenerateInvoices(ctx context.Context, req domain.OrderRequest, payerOrgID uuid.UUID) error {
	if c.baseURL == "" {
		c.log.Debug("document service not configured, skipping invoices",
			zap.String("order_request_id", req.ID.String()))
		return nil
	}

	payload := invoicesRequest{
		OrderRequestID: req.ID.String(),
		PayerOrgID:     payerOrgID.String(),
	}
	for _, offer := range req.SelectedOffers() {
		payload.OfferIDs = append(payload.OfferIDs, offer.ID.String())
	}

	return c.post(ctx, "/api/documents/invoices", payload)
}

type specificationRequest struct {
	OrderRequestID string `json:"orderRequestId"`
	OfferID        string `json:"offerId"`
}

func (c *DocumentClient) GenerateSpecification(ctx context.Context, req domain.OrderRequest, offer domain.Offer) error {
	if c.baseURL == "" {
		c.log.Debug("document service not configured, skipping specification",
			zap.String("offer_id", offer.ID.String()))
		return nil
	}

	return c.post(ctx, "/api/documents/specification", specificationRequest{
		OrderRequestID: req.ID.String(),
		OfferID:        offer.ID.String(),
	})
}

func (c *DocumentClient) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("client.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("document service returned %d for %s", resp.StatusCode, path)
	}

	return nil
}
