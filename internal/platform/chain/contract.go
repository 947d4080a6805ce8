package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// electionABI is the deployed tally contract's interface: vote(candidateId)
// and getVotes(candidateId), callable by any funded identity. Access control
// lives entirely on this side of the boundary.
const electionABI = `[
	{"inputs":[{"internalType":"uint256","name":"candidateId","type":"uint256"}],"name":"vote","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"internalType":"uint256","name":"candidateId","type":"uint256"}],"name":"getVotes","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

func parseElectionABI() (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(electionABI))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse election contract abi: %w", err)
	}
	return parsed, nil
}

func (c *Client) packVote(candidateID int64) ([]byte, error) {
	data, err := c.abi.Pack("vote", big.NewInt(candidateID))
	if err != nil {
		return nil, fmt.Errorf("pack vote(%d): %w", candidateID, err)
	}
	return data, nil
}

func (c *Client) packGetVotes(candidateID int64) ([]byte, error) {
	data, err := c.abi.Pack("getVotes", big.NewInt(candidateID))
	if err != nil {
		return nil, fmt.Errorf("pack getVotes(%d): %w", candidateID, err)
	}
	return data, nil
}

func (c *Client) unpackTally(output []byte) (uint64, error) {
	values, err := c.abi.Unpack("getVotes", output)
	if err != nil {
		return 0, fmt.Errorf("unpack getVotes result: %w", err)
	}
	if len(values) != 1 {
		return 0, fmt.Errorf("unexpected getVotes result arity %d", len(values))
	}
	tally, ok := values[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("unexpected getVotes result type %T", values[0])
	}
	return tally.Uint64(), nil
}
