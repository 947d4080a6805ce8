package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Funder holds the long-lived funding identity that stakes every fresh voter
// identity. Its nonce is the one piece of shared mutable signing state in
// the system: the mutex is held from the nonce read through the raw submit,
// so nonces are assigned and land on the ledger in the same order.
type Funder struct {
	mu      sync.Mutex
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
	backend Backend
}

// NewFunder parses the hex-encoded funding key. An empty key yields a nil
// Funder, which the vote path reports as a configuration error before any
// reservation is made.
func NewFunder(hexKey string, chainID *big.Int, backend Backend) (*Funder, error) {
	if hexKey == "" {
		return nil, nil
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parse funding key: %w", err)
	}
	return &Funder{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
		backend: backend,
	}, nil
}

func (f *Funder) Address() common.Address {
	return f.address
}

const fundGasLimit = 21000

// Fund transfers the stake to a fresh voter identity at the given gas price.
// Waiting for finality happens outside the lock; only nonce assignment and
// submission are serialized.
func (f *Funder) Fund(ctx context.Context, to common.Address, amount *big.Int, gasPrice *big.Int) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	nonce, err := f.backend.PendingNonceAt(ctx, f.address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("read funding nonce: %w", err)
	}
	tx := types.NewTransaction(nonce, to, amount, fundGasLimit, gasPrice, nil)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(f.chainID), f.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign funding transaction: %w", err)
	}
	if err := f.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("submit funding transaction: %w", err)
	}
	return signed.Hash(), nil
}
