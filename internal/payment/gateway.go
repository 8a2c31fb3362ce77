// Package payment talks to the card payment gateway.
package payment

import (
	"context"
	"errors"
	"fmt"

	"virtualvault/internal/config"
	"virtualvault/internal/models"

	"github.com/braintree-go/braintree-go"
	"github.com/shopspring/decimal"
)

// ErrNotConfigured is returned when no merchant credentials were provided.
var ErrNotConfigured = errors.New("payment gateway is not configured")

// Gateway issues client tokens and charges payment method nonces.
type Gateway interface {
	ClientToken(ctx context.Context) (string, error)
	// Sale charges amount and submits the transaction for settlement.
	Sale(ctx context.Context, amount decimal.Decimal, nonce string) (*models.Payment, error)
}

// Braintree is the Gateway backed by the Braintree API.
type Braintree struct {
	bt *braintree.Braintree
}

// NewBraintree builds a gateway from the merchant credentials.
func NewBraintree(cfg config.BraintreeConfig) (*Braintree, error) {
	if cfg.MerchantID == "" || cfg.PublicKey == "" || cfg.PrivateKey == "" {
		return nil, ErrNotConfigured
	}
	var env braintree.Environment
	switch cfg.Environment {
	case "", "sandbox":
		env = braintree.Sandbox
	case "production":
		env = braintree.Production
	default:
		return nil, fmt.Errorf("unknown braintree environment %q", cfg.Environment)
	}
	return &Braintree{bt: braintree.New(env, cfg.MerchantID, cfg.PublicKey, cfg.PrivateKey)}, nil
}

func (g *Braintree) ClientToken(ctx context.Context) (string, error) {
	token, err := g.bt.ClientToken().Generate(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to generate client token: %w", err)
	}
	return token, nil
}

func (g *Braintree) Sale(ctx context.Context, amount decimal.Decimal, nonce string) (*models.Payment, error) {
	cents := amount.Round(2).Shift(2).IntPart()
	tx, err := g.bt.Transaction().Create(ctx, &braintree.TransactionRequest{
		Type:               "sale",
		Amount:             braintree.NewDecimal(cents, 2),
		PaymentMethodNonce: nonce,
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	charged := amount.StringFixed(2)
	if tx.Amount != nil {
		charged = tx.Amount.String()
	}
	return &models.Payment{
		TransactionID: tx.Id,
		Status:        string(tx.Status),
		Amount:        charged,
		Success:       true,
	}, nil
}

// Unconfigured is the Gateway used when no credentials are set. Every call
// fails with ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) ClientToken(context.Context) (string, error) { return "", ErrNotConfigured }

func (Unconfigured) Sale(context.Context, decimal.Decimal, string) (*models.Payment, error) {
	return nil, ErrNotConfigured
}

// New returns the Braintree gateway, or Unconfigured when credentials are missing.
func New(cfg config.BraintreeConfig) (Gateway, error) {
	g, err := NewBraintree(cfg)
	if errors.Is(err, ErrNotConfigured) {
		return Unconfigured{}, nil
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}
