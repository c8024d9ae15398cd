package interfaces

import "context"

// TransactionReceipt is the narrow view of an on-chain transaction the
// core needs: whether it succeeded and who paid whom.
type TransactionReceipt struct {
	Succeeded bool
	From      string
	To        string
}

// ChainQuerier looks up finalized transactions on the payment chain.
// GetTransactionReceipt blocks until the transaction is mined or the
// context is cancelled; callers bound the wait with a context deadline.
type ChainQuerier interface {
	GetTransactionReceipt(ctx context.Context, txRef string) (*TransactionReceipt, error)
}

// PayoutSender initiates off-chain-settled token transfers to winners.
// amount is in whole-token units; implementations handle decimals.
type PayoutSender interface {
	Transfer(ctx context.Context, destinationAddress string, amount int64) (transferRef string, err error)
}

// RandomSource supplies uniformly distributed integers. Injected so draw
// outcomes are reproducible in tests.
type RandomSource interface {
	// Intn returns a uniform integer in [0, n). n must be > 0.
	Intn(n int) int
}
