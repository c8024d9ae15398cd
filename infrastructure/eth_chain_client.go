package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lambolotto/domain/interfaces"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	log "github.com/sirupsen/logrus"
)

const receiptPollInterval = 2 * time.Second

// EthChainClient queries transaction receipts from a JSON-RPC node.
type EthChainClient struct {
	client *ethclient.Client
}

// NewEthChainClient dials the node at rpcURL
func NewEthChainClient(rpcURL string) (*EthChainClient, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rpc node: %w", err)
	}
	return &EthChainClient{client: client}, nil
}

// GetTransactionReceipt polls until the transaction is mined or the
// context ends. A pending transaction is not an error, only a reason
// to keep waiting.
func (c *EthChainClient) GetTransactionReceipt(ctx context.Context, txRef string) (*interfaces.TransactionReceipt, error) {
	hash := common.HexToHash(txRef)

	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.client.TransactionReceipt(ctx, hash)
		if err == nil {
			return c.buildReceipt(ctx, hash, receipt)
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("failed to get receipt for %s: %w", txRef, err)
		}

		log.WithField("txRef", txRef).Debug("transaction not mined yet")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *EthChainClient) buildReceipt(ctx context.Context, hash common.Hash, receipt *types.Receipt) (*interfaces.TransactionReceipt, error) {
	tx, _, err := c.client.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", hash.Hex(), err)
	}

	from, err := c.client.TransactionSender(ctx, tx, receipt.BlockHash, receipt.TransactionIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sender of %s: %w", hash.Hex(), err)
	}

	to := ""
	if tx.To() != nil {
		to = tx.To().Hex()
	}

	return &interfaces.TransactionReceipt{
		Succeeded: receipt.Status == types.ReceiptStatusSuccessful,
		From:      from.Hex(),
		To:        to,
	}, nil
}

// Close releases the underlying RPC connection
func (c *EthChainClient) Close() {
	c.client.Close()
}
