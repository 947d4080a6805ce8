package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Backend is the slice of the JSON-RPC surface the client needs. ethclient
// satisfies it; tests substitute a fake.
type Backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// TxStatus is the finality outcome of a submitted transaction.
type TxStatus string

const (
	StatusConfirmed TxStatus = "confirmed"
	StatusReverted  TxStatus = "reverted"
	StatusTimedOut  TxStatus = "timed_out"
)

// Options configure the client against a deployed election contract.
type Options struct {
	ContractAddress string
	ChainID         int64
	// GasMultiplier boosts the observed network price; it trades fee cost
	// for inclusion speed and has no correctness role.
	GasMultiplier float64
	// StakeWei is the fixed amount transferred to each fresh voter identity.
	StakeWei *big.Int
	// PollInterval is the receipt polling cadence inside AwaitFinality.
	PollInterval time.Duration
	Logger       *slog.Logger
}

const (
	voteGasLimit         = 300000
	defaultGasMultiplier = 1.5
	defaultPollInterval  = 3 * time.Second
)

// DefaultStakeWei is 0.005 ether.
var DefaultStakeWei = new(big.Int).Mul(big.NewInt(5_000_000), big.NewInt(1_000_000_000))

// Client wraps transaction submission and tally reads against the election
// contract.
type Client struct {
	backend       Backend
	abi           abi.ABI
	contract      common.Address
	chainID       *big.Int
	gasMultiplier float64
	stakeWei      *big.Int
	pollInterval  time.Duration
	logger        *slog.Logger
}

// Dial connects over JSON-RPC and builds a client.
func Dial(rpcURL string, opts Options) (*Client, error) {
	backend, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial ledger rpc %s: %w", rpcURL, err)
	}
	return NewClient(backend, opts)
}

func NewClient(backend Backend, opts Options) (*Client, error) {
	if !common.IsHexAddress(opts.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", opts.ContractAddress)
	}
	parsed, err := parseElectionABI()
	if err != nil {
		return nil, err
	}
	multiplier := opts.GasMultiplier
	if multiplier <= 0 {
		multiplier = defaultGasMultiplier
	}
	stake := opts.StakeWei
	if stake == nil || stake.Sign() <= 0 {
		stake = DefaultStakeWei
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		backend:       backend,
		abi:           parsed,
		contract:      common.HexToAddress(opts.ContractAddress),
		chainID:       big.NewInt(opts.ChainID),
		gasMultiplier: multiplier,
		stakeWei:      stake,
		pollInterval:  pollInterval,
		logger:        logger,
	}, nil
}

func (c *Client) ChainID() *big.Int {
	return c.chainID
}

// Backend exposes the JSON-RPC connection so a Funder can share it.
func (c *Client) Backend() Backend {
	return c.backend
}

func (c *Client) StakeWei() *big.Int {
	return new(big.Int).Set(c.stakeWei)
}

// BoostedGasPrice observes the current network price and applies the
// configured multiplier.
func (c *Client) BoostedGasPrice(ctx context.Context) (*big.Int, error) {
	price, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("observe gas price: %w", err)
	}
	boosted := new(big.Int).Mul(price, big.NewInt(int64(c.gasMultiplier*100)))
	return boosted.Div(boosted, big.NewInt(100)), nil
}

// SubmitVote signs vote(candidateID) with the fresh identity's key at nonce
// zero and submits it.
func (c *Client) SubmitVote(ctx context.Context, identity Identity, candidateID int64, gasPrice *big.Int) (common.Hash, error) {
	data, err := c.packVote(candidateID)
	if err != nil {
		return common.Hash{}, err
	}
	tx := types.NewTransaction(0, c.contract, new(big.Int), voteGasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), identity.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign vote transaction: %w", err)
	}
	if err := c.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("submit vote transaction: %w", err)
	}
	return signed.Hash(), nil
}

// AwaitFinality polls for the receipt until it appears or the timeout
// elapses. A timeout is not a verdict: the transaction may still confirm
// later, which is exactly why callers roll back instead of assuming success.
func (c *Client) AwaitFinality(ctx context.Context, txHash common.Hash, timeout time.Duration) (TxStatus, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.backend.TransactionReceipt(waitCtx, txHash)
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusSuccessful {
				return StatusConfirmed, nil
			}
			return StatusReverted, nil
		case errors.Is(err, ethereum.NotFound):
			// Not mined yet; keep polling.
		case waitCtx.Err() != nil:
			return StatusTimedOut, nil
		default:
			return "", fmt.Errorf("fetch receipt %s: %w", txHash.Hex(), err)
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			c.logger.Warn("finality wait timed out",
				"event", "chain_finality_timeout",
				"module", "platform/chain",
				"layer", "platform",
				"tx_hash", txHash.Hex(),
				"timeout", timeout.String(),
			)
			return StatusTimedOut, nil
		case <-ticker.C:
		}
	}
}

// ReadTally calls getVotes(candidateID) without submitting a transaction.
func (c *Client) ReadTally(ctx context.Context, candidateID int64) (uint64, error) {
	data, err := c.packGetVotes(candidateID)
	if err != nil {
		return 0, err
	}
	output, err := c.backend.CallContract(ctx, ethereum.CallMsg{
		To:   &c.contract,
		Data: data,
	}, nil)
	if err != nil {
		return 0, fmt.Errorf("call getVotes(%d): %w", candidateID, err)
	}
	return c.unpackTally(output)
}
