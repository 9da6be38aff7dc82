package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/partline/marketplace/internal/domain"
)

// DocumentGenerator produces the printable artifacts for an order. The
// rendering itself (PDF/XLSX) lives outside this module.
type DocumentGenerator interface {
	// GenerateInvoices rebuilds the full invoice set for the request on
	// behalf of the paying legal entity. Re-approval regenerates documents,
	// this is designed behavior.
	GenerateInvoices(ctx context.Context, req domain.OrderRequest, payerOrgID uuid.UUID) error

	// GenerateSpecification rebuilds the specification document for one
	// offer, required for the designated special organization.
	GenerateSpecification(ctx context.Context, req domain.OrderRequest, offer domain.Offer) error
}

// PaymentGateway creates acquiring payment links for card payments.
type PaymentGateway interface {
	CreatePaymentLink(ctx context.Context, req domain.OrderRequest) (string, error)
}

// EventPublisher pushes a persisted notification over the delivery channel
// (message broker feeding sockets/e-mail). Publishing runs inside the
// business transaction; a failure aborts the whole operation.
type EventPublisher interface {
	Publish(ctx context.Context, n domain.Notification) error
}
