package payments

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/grandesports/training_platform/services"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/paymentmethod"
	"github.com/stripe/stripe-go/v76/refund"
	"github.com/stripe/stripe-go/v76/setupintent"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeService drives the payment processor: hosted checkouts, off-session
// charges on saved cards, refunds, card management, and webhook verification.
type StripeService struct {
	webhookSecret string
}

func NewStripeService(secretKey, webhookSecret string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{webhookSecret: webhookSecret}
}

func (s *StripeService) CreateCustomer(email, fullName string, userID uuid.UUID) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(fullName),
	}
	params.AddMetadata("user_id", userID.String())

	cust, err := customer.New(params)
	if err != nil {
		return "", err
	}
	return cust.ID, nil
}

func (s *StripeService) CreateCheckoutSession(p services.CheckoutSessionParams) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(p.CustomerID),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(p.Title),
						Description: stripe.String(p.Description),
					},
					UnitAmount: stripe.Int64(p.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			SetupFutureUsage: stripe.String("off_session"),
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
	}
	params.AddMetadata("user_id", p.UserID.String())
	params.AddMetadata("session_id", p.SessionID.String())
	params.AddMetadata("discount_code_id", p.DiscountCodeID)
	params.AddMetadata("discount_amount", p.DiscountAmount)

	cs, err := session.New(params)
	if err != nil {
		return "", err
	}
	return cs.URL, nil
}

func (s *StripeService) ChargeSavedMethod(p services.ChargeParams) (*services.ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(p.AmountCents),
		Currency:      stripe.String(string(stripe.CurrencyUSD)),
		Customer:      stripe.String(p.CustomerID),
		PaymentMethod: stripe.String(p.PaymentMethodID),
		OffSession:    stripe.Bool(true),
		Confirm:       stripe.Bool(true),
		Description:   stripe.String(p.Description),
	}
	params.AddMetadata("user_id", p.UserID.String())
	params.AddMetadata("session_id", p.SessionID.String())

	pi, err := paymentintent.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			// authentication_required comes back as an error on off-session
			// confirms; the intent is retrievable from the error payload
			if stripeErr.Code == stripe.ErrorCodeAuthenticationRequired && stripeErr.PaymentIntent != nil {
				return &services.ChargeResult{
					PaymentIntentID: stripeErr.PaymentIntent.ID,
					RequiresAction:  true,
					ClientSecret:    stripeErr.PaymentIntent.ClientSecret,
				}, nil
			}
			if stripeErr.Type == stripe.ErrorTypeCard {
				return &services.ChargeResult{FailureMessage: stripeErr.Msg}, nil
			}
		}
		return nil, err
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return &services.ChargeResult{PaymentIntentID: pi.ID, Succeeded: true}, nil
	case stripe.PaymentIntentStatusRequiresAction:
		return &services.ChargeResult{PaymentIntentID: pi.ID, RequiresAction: true, ClientSecret: pi.ClientSecret}, nil
	default:
		return &services.ChargeResult{PaymentIntentID: pi.ID, FailureMessage: fmt.Sprintf("payment not completed (status %s)", pi.Status)}, nil
	}
}

func (s *StripeService) Refund(paymentIntentID string) (*services.RefundResult, error) {
	r, err := refund.New(&stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
	})
	if err != nil {
		return nil, err
	}
	if r.Status != stripe.RefundStatusSucceeded && r.Status != stripe.RefundStatusPending {
		return nil, fmt.Errorf("refund not accepted, status %s", r.Status)
	}
	return &services.RefundResult{RefundID: r.ID, Status: string(r.Status)}, nil
}

func (s *StripeService) ListSavedCards(customerID string) ([]services.SavedCard, error) {
	params := &stripe.PaymentMethodListParams{
		Customer: stripe.String(customerID),
		Type:     stripe.String(string(stripe.PaymentMethodTypeCard)),
	}

	cards := []services.SavedCard{}
	iter := paymentmethod.List(params)
	for iter.Next() {
		pm := iter.PaymentMethod()
		if pm.Card == nil {
			continue
		}
		cards = append(cards, services.SavedCard{
			ID:       pm.ID,
			Brand:    string(pm.Card.Brand),
			Last4:    pm.Card.Last4,
			ExpMonth: pm.Card.ExpMonth,
			ExpYear:  pm.Card.ExpYear,
		})
	}
	return cards, iter.Err()
}

func (s *StripeService) DetachCard(paymentMethodID string) error {
	_, err := paymentmethod.Detach(paymentMethodID, nil)
	return err
}

func (s *StripeService) CreateSetupIntent(customerID string) (string, error) {
	si, err := setupintent.New(&stripe.SetupIntentParams{
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Usage:              stripe.String("off_session"),
	})
	if err != nil {
		return "", err
	}
	return si.ClientSecret, nil
}

// ParseWebhook verifies the delivery signature against the signing secret and
// maps the event into the reconciler's shape. An invalid signature is
// rejected outright.
func (s *StripeService) ParseWebhook(payload []byte, signature string) (*services.WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("verify webhook signature: %w", err)
	}

	out := &services.WebhookEvent{ID: event.ID, Type: string(event.Type)}

	switch event.Type {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("parse checkout session: %w", err)
		}
		completed, err := completedFromCheckoutSession(event.ID, string(event.Type), &cs)
		if err != nil {
			return nil, err
		}
		out.Completed = completed

	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("parse payment intent: %w", err)
		}
		out.FailedPaymentIntentID = pi.ID

	default:
		log.Printf("Ignoring webhook event type %s", event.Type)
	}

	return out, nil
}

func completedFromCheckoutSession(eventID, eventType string, cs *stripe.CheckoutSession) (*services.CompletedCheckout, error) {
	userID, err := uuid.Parse(cs.Metadata["user_id"])
	if err != nil {
		return nil, fmt.Errorf("checkout metadata missing user_id: %w", err)
	}
	sessionID, err := uuid.Parse(cs.Metadata["session_id"])
	if err != nil {
		return nil, fmt.Errorf("checkout metadata missing session_id: %w", err)
	}

	completed := &services.CompletedCheckout{
		EventID:          eventID,
		EventType:        eventType,
		UserID:           userID,
		SessionID:        sessionID,
		AmountTotalCents: cs.AmountTotal,
	}

	if raw := cs.Metadata["discount_code_id"]; raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			completed.DiscountCodeID = &id
		}
	}
	if raw := cs.Metadata["discount_amount"]; raw != "" {
		if amount, err := decimal.NewFromString(raw); err == nil {
			completed.DiscountAmount = amount
		}
	}
	if cs.PaymentIntent != nil {
		completed.PaymentIntentID = cs.PaymentIntent.ID
	}

	return completed, nil
}
