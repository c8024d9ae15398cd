package infrastructure

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	log "github.com/sirupsen/logrus"
)

const erc20TransferABI = `[{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"}]`

// tokenDecimalsScale converts whole-token amounts to the 18-decimal
// on-chain representation.
var tokenDecimalsScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// EthPayoutClient sends ERC-20 prize transfers from the treasury wallet.
type EthPayoutClient struct {
	client   *ethclient.Client
	contract *bind.BoundContract
	opts     *bind.TransactOpts
}

// NewEthPayoutClient wires the token contract to the treasury signer
func NewEthPayoutClient(rpcURL, tokenAddress, treasuryPrivateKey string, chainID int64) (*EthPayoutClient, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rpc node: %w", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(erc20TransferABI))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to parse token ABI: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(treasuryPrivateKey, "0x"))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to parse treasury key: %w", err)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(chainID))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	contract := bind.NewBoundContract(common.HexToAddress(tokenAddress), parsedABI, client, client, client)

	return &EthPayoutClient{
		client:   client,
		contract: contract,
		opts:     opts,
	}, nil
}

// Transfer sends amount whole tokens to destinationAddress and returns
// the transaction hash. The transaction is broadcast, not awaited;
// callers treat a returned hash as payout initiated.
func (c *EthPayoutClient) Transfer(ctx context.Context, destinationAddress string, amount int64) (string, error) {
	value := new(big.Int).Mul(big.NewInt(amount), tokenDecimalsScale)

	opts := *c.opts
	opts.Context = ctx

	tx, err := c.contract.Transact(&opts, "transfer", common.HexToAddress(destinationAddress), value)
	if err != nil {
		return "", fmt.Errorf("failed to send token transfer: %w", err)
	}

	log.WithFields(log.Fields{
		"to":     destinationAddress,
		"amount": amount,
		"txHash": tx.Hash().Hex(),
	}).Info("prize transfer broadcast")

	return tx.Hash().Hex(), nil
}

// Close releases the underlying RPC connection
func (c *EthPayoutClient) Close() {
	c.client.Close()
}
