package chain

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Identity is a single-use signing identity provisioned for one vote. Its
// transaction stream starts at nonce zero and shares no state with any other
// vote, so it needs no serialization.
type Identity struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

func NewIdentity() (Identity, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return Identity{}, fmt.Errorf("generate voter key: %w", err)
	}
	return Identity{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (i Identity) Address() string {
	return i.address.Hex()
}
