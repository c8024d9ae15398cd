package entities

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Validation errors. Reported before any state is read or written.
var (
	ErrInvalidNumberRange = errors.New("ticket numbers must be between 1 and 100")
	ErrDuplicateNumbers   = errors.New("duplicate ticket numbers in request")
	ErrTooManyTickets     = errors.New("at most 10 tickets per purchase")
)

// State-conflict errors. No side effects; the caller may retry with
// adjusted input.
var (
	ErrNoActiveRound         = errors.New("no active round")
	ErrRoundNotActive        = errors.New("round is not active")
	ErrRoundNotExpired       = errors.New("round end time has not passed")
	ErrRoundCapacityExceeded = errors.New("maximum 10 tickets per player per round")
	ErrNumberTaken           = errors.New("ticket number already taken")
	ErrInvalidCode           = errors.New("invalid or inactive code")
	ErrAlreadyUsedThisCode   = errors.New("code already redeemed by this player")
	ErrCodeExhausted         = errors.New("code redemption cap reached")
	ErrDailyLimitReached     = errors.New("a code was already redeemed today")
	ErrSubscriptionRequired  = errors.New("notification subscription required")
	ErrRoundFull             = errors.New("player already holds the maximum tickets for this round")
	ErrInsufficientNumbers   = errors.New("not enough unsold numbers in this round")
	ErrWinningNotFound       = errors.New("winning not found")
	ErrAlreadyClaimed        = errors.New("prize already claimed")
	ErrNotClaimed            = errors.New("prize is not claimed")
)

// External-dependency errors. Never masked as success; the operation
// leaves no partial record.
var (
	ErrVerificationTimeout = errors.New("transaction verification timed out")
	ErrWrongRecipient      = errors.New("transaction recipient is not the payment router")
	ErrWrongSender         = errors.New("transaction sender does not match the player address")
	ErrOnchainFailure      = errors.New("on-chain transaction failed")
	ErrPayoutFailed        = errors.New("prize payout transfer failed")

	// ErrPaymentNotCredited marks the critical case where the on-chain
	// payment verified but ticket registration could not be committed.
	// Callers must surface it as a manual-support condition, not retry it.
	ErrPaymentNotCredited = errors.New("payment verified but tickets were not credited; contact support")
)

// NumberTakenError reports which requested numbers conflict with
// already-sold tickets. It matches ErrNumberTaken under errors.Is.
type NumberTakenError struct {
	Numbers []int
}

func (e *NumberTakenError) Error() string {
	if len(e.Numbers) == 0 {
		return ErrNumberTaken.Error()
	}
	sorted := make([]int, len(e.Numbers))
	copy(sorted, e.Numbers)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, n := range sorted {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("ticket numbers already taken: %s", strings.Join(parts, ", "))
}

func (e *NumberTakenError) Is(target error) bool {
	return target == ErrNumberTaken
}
