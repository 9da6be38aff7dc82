package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// The projector derives the role-specific display status of an order request
// from its persisted state. Each role is an ordered chain of guarded rules,
// first match wins, so the precedence stays auditable rule by rule.
//
// The projector is pure: it never mutates the request or its offers, and the
// clock is an argument so expiry checks stay deterministic.

type projection struct {
	Request  OrderRequest
	SellerID uuid.UUID
	Now      time.Time
}

type projectorRule struct {
	name string
	eval func(projection) (DisplayStatus, bool)
}

// ProjectStatus returns the display status of the request for the given
// role. sellerID is only consulted for RoleSeller.
func ProjectStatus(req OrderRequest, role Role, sellerID uuid.UUID, now time.Time) DisplayStatus {
	in := projection{Request: req, SellerID: sellerID, Now: now}

	var rules []projectorRule
	switch role {
	case RoleSeller:
		rules = sellerRules
	case RoleEmployee:
		rules = employeeRules
	default:
		rules = customerRules
	}

	for _, rule := range rules {
		if status, ok := rule.eval(in); ok {
			return status
		}
	}

	// The chains below are exhaustive; this is unreachable.
	return DisplayStatus(req.Status)
}

// ProjectionRuleNames lists the rule chain for a role in evaluation order.
// Used by audits and tests; the order is part of the contract.
func ProjectionRuleNames(role Role) []string {
	var rules []projectorRule
	switch role {
	case RoleSeller:
		rules = sellerRules
	case RoleEmployee:
		rules = employeeRules
	default:
		rules = customerRules
	}

	return lo.Map(rules, func(r projectorRule, _ int) string { return r.name })
}

// Shared customer/employee rules; the employee chain adds a reward-paid
// early exit after the postponement short-circuit.

func rulePaymentPostponed(in projection) (DisplayStatus, bool) {
	if in.Request.Status == OrderRequestStatusPaymentPostponed {
		return DisplayPaymentPostponed, true
	}
	return "", false
}

func ruleAllRewardsGiven(in projection) (DisplayStatus, bool) {
	offers := in.Request.Offers
	if len(offers) > 0 && lo.EveryBy(offers, Offer.RewardGiven) {
		return DisplayRewardPaid, true
	}
	return "", false
}

func rulePaidAndShipped(in projection) (DisplayStatus, bool) {
	if in.Request.Status != OrderRequestStatusPaid {
		return "", false
	}
	if lo.SomeBy(in.Request.Offers, func(o Offer) bool { return o.DepartureDate != nil }) {
		return DisplayShipped, true
	}
	return "", false
}

func ruleKeepPersisted(in projection) (DisplayStatus, bool) {
	if in.Request.Status != OrderRequestStatusRequested {
		return DisplayStatus(in.Request.Status), true
	}
	return "", false
}

func ruleAnyUpdateRequested(in projection) (DisplayStatus, bool) {
	if lo.SomeBy(in.Request.Offers, Offer.UpdateRequested) {
		return DisplayOfferUpdateRequest, true
	}
	return "", false
}

func ruleAnyOfferExpired(in projection) (DisplayStatus, bool) {
	if lo.SomeBy(in.Request.Offers, func(o Offer) bool { return o.Expired(in.Now) }) {
		return DisplayOfferExpired, true
	}
	return "", false
}

func ruleUnreadOfferUpdate(in projection) (DisplayStatus, bool) {
	if in.Request.HasUnreadOfferUpdate {
		return DisplayOfferUpdated, true
	}
	return "", false
}

func noOffers(in projection) bool {
	return len(in.Request.Offers) == 0
}

var customerRules = []projectorRule{
	{"payment-postponed", rulePaymentPostponed},
	{"paid-and-shipped", rulePaidAndShipped},
	{"keep-persisted", ruleKeepPersisted},
	{"offer-update-requested", ruleAnyUpdateRequested},
	{"offer-expired", ruleAnyOfferExpired},
	{"offer-updated-unread", ruleUnreadOfferUpdate},
	{"no-offers", func(in projection) (DisplayStatus, bool) {
		if noOffers(in) {
			return DisplayRequested, true
		}
		return "", false
	}},
	{"offer-received", func(projection) (DisplayStatus, bool) {
		return DisplayOfferReceived, true
	}},
}

var employeeRules = []projectorRule{
	{"payment-postponed", rulePaymentPostponed},
	{"all-rewards-given", ruleAllRewardsGiven},
	{"paid-and-shipped", rulePaidAndShipped},
	{"keep-persisted", ruleKeepPersisted},
	{"offer-update-requested", ruleAnyUpdateRequested},
	{"offer-expired", ruleAnyOfferExpired},
	{"offer-updated-unread", ruleUnreadOfferUpdate},
	{"no-offers", func(in projection) (DisplayStatus, bool) {
		if !noOffers(in) {
			return "", false
		}
		if in.Request.HasDescribedItems() {
			return DisplayOrderRequestByPhoto, true
		}
		return DisplayOrderRequest, true
	}},
	{"offer-received", func(projection) (DisplayStatus, bool) {
		return DisplayOfferReceived, true
	}},
}

// Seller rules are keyed to the caller's own offer within the request.

var sellerRules = []projectorRule{
	{"request-payment-postponed", func(in projection) (DisplayStatus, bool) {
		if in.Request.Status != OrderRequestStatusPaymentPostponed {
			return "", false
		}
		own, ok := in.Request.SellerOffer(in.SellerID)
		if !ok {
			// The seller's offer was dropped at postponement time.
			return DisplayOrderRequest, true
		}
		if own.Status == OfferStatusPaid {
			return DisplayPaid, true
		}
		return DisplayPaymentPostponed, true
	}},
	{"request-paid-offer-behind", func(in projection) (DisplayStatus, bool) {
		if in.Request.Status != OrderRequestStatusPaid {
			return "", false
		}
		own, ok := in.Request.SellerOffer(in.SellerID)
		if !ok || own.Status == OfferStatusOffer {
			return DisplayApproved, true
		}
		return "", false
	}},
	{"request-approved-not-chosen", func(in projection) (DisplayStatus, bool) {
		if in.Request.Status != OrderRequestStatusApproved {
			return "", false
		}
		own, ok := in.Request.SellerOffer(in.SellerID)
		if !ok || len(own.SelectedItems()) == 0 {
			return DisplayOrderRequest, true
		}
		return "", false
	}},
	{"request-requested", func(in projection) (DisplayStatus, bool) {
		if in.Request.Status != OrderRequestStatusRequested {
			return "", false
		}
		own, ok := in.Request.SellerOffer(in.SellerID)
		if !ok {
			if in.Request.HasDescribedItems() {
				return DisplayOrderRequestByPhoto, true
			}
			return DisplayOrderRequest, true
		}
		if own.UpdateRequested() {
			return DisplayOfferUpdateRequest, true
		}
		if own.Expired(in.Now) {
			return DisplayOfferExpired, true
		}
		return DisplayOfferSent, true
	}},
	{"own-reward-given", func(in projection) (DisplayStatus, bool) {
		if own, ok := in.Request.SellerOffer(in.SellerID); ok && own.RewardGiven() {
			return DisplayRewardPaid, true
		}
		return "", false
	}},
	{"own-received", func(in projection) (DisplayStatus, bool) {
		if own, ok := in.Request.SellerOffer(in.SellerID); ok && own.ReceivingDate != nil {
			return DisplayCompleted, true
		}
		return "", false
	}},
	{"own-shipped", func(in projection) (DisplayStatus, bool) {
		if own, ok := in.Request.SellerOffer(in.SellerID); ok && own.DepartureDate != nil {
			return DisplayShipped, true
		}
		return "", false
	}},
	{"keep-persisted", func(in projection) (DisplayStatus, bool) {
		return DisplayStatus(in.Request.Status), true
	}},
}
