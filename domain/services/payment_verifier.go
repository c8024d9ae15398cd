package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lambolotto/domain/entities"
	"lambolotto/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// paymentVerifier confirms a claimed payment transaction is final,
// succeeded, and moved funds from the player to the payment router.
type paymentVerifier struct {
	chain         interfaces.ChainQuerier
	routerAddress string
	timeout       time.Duration
}

// NewPaymentVerifier creates a payment verifier gated on the configured
// payment-router contract address.
func NewPaymentVerifier(chain interfaces.ChainQuerier, routerAddress string, timeout time.Duration) interfaces.PaymentVerifier {
	return &paymentVerifier{
		chain:         chain,
		routerAddress: routerAddress,
		timeout:       timeout,
	}
}

// VerifyPurchase waits for the transaction to finalize and validates it.
// The wait is bounded by the configured timeout and cancellable through
// the caller's context; no locks are held while waiting.
func (v *paymentVerifier) VerifyPurchase(ctx context.Context, txRef, playerAddress string) error {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	receipt, err := v.chain.GetTransactionReceipt(ctx, txRef)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.WithField("txRef", txRef).Warn("payment verification timed out")
			return fmt.Errorf("%w: %s", entities.ErrVerificationTimeout, txRef)
		}
		return fmt.Errorf("failed to query transaction %s: %w", txRef, err)
	}

	if !receipt.Succeeded {
		return fmt.Errorf("%w: %s", entities.ErrOnchainFailure, txRef)
	}
	if !strings.EqualFold(receipt.To, v.routerAddress) {
		return fmt.Errorf("%w: got %s", entities.ErrWrongRecipient, receipt.To)
	}
	if !strings.EqualFold(receipt.From, playerAddress) {
		return fmt.Errorf("%w: got %s", entities.ErrWrongSender, receipt.From)
	}

	log.WithFields(log.Fields{
		"txRef":  txRef,
		"player": playerAddress,
	}).Info("payment verified")
	return nil
}
