package chainadapter

import (
	"context"
	"fmt"
	"math/big"
	"time"

	domainerrors "ballotchain/contexts/election-core/vote-commit/domain/errors"
	"ballotchain/contexts/election-core/vote-commit/ports"
	"ballotchain/internal/platform/chain"

	"github.com/ethereum/go-ethereum/common"
)

// Submitter adapts the platform ledger client and funder to the vote-commit
// ports. A nil funder means the signing key is absent, which the coordinator
// reports as a configuration error before reserving anything.
type Submitter struct {
	client *chain.Client
	funder *chain.Funder
}

func NewSubmitter(client *chain.Client, funder *chain.Funder) *Submitter {
	return &Submitter{client: client, funder: funder}
}

func (s *Submitter) Configured() bool {
	return s.client != nil && s.funder != nil
}

func (s *Submitter) NewVoterIdentity(_ context.Context) (ports.VoterIdentity, error) {
	return chain.NewIdentity()
}

func (s *Submitter) GasPrice(ctx context.Context) (*big.Int, error) {
	return s.client.BoostedGasPrice(ctx)
}

func (s *Submitter) Fund(ctx context.Context, identity ports.VoterIdentity, gasPrice *big.Int) (ports.TxRef, error) {
	voter, ok := identity.(chain.Identity)
	if !ok {
		return "", fmt.Errorf("unexpected voter identity type %T", identity)
	}
	hash, err := s.funder.Fund(ctx, common.HexToAddress(voter.Address()), s.client.StakeWei(), gasPrice)
	if err != nil {
		return "", err
	}
	return ports.TxRef(hash.Hex()), nil
}

func (s *Submitter) SubmitVote(ctx context.Context, identity ports.VoterIdentity, candidateID int64, gasPrice *big.Int) (ports.TxRef, error) {
	voter, ok := identity.(chain.Identity)
	if !ok {
		return "", fmt.Errorf("unexpected voter identity type %T", identity)
	}
	hash, err := s.client.SubmitVote(ctx, voter, candidateID, gasPrice)
	if err != nil {
		return "", err
	}
	return ports.TxRef(hash.Hex()), nil
}

func (s *Submitter) AwaitFinality(ctx context.Context, ref ports.TxRef, timeout time.Duration) (ports.TxOutcome, error) {
	status, err := s.client.AwaitFinality(ctx, common.HexToHash(string(ref)), timeout)
	if err != nil {
		return "", err
	}
	switch status {
	case chain.StatusConfirmed:
		return ports.TxConfirmed, nil
	case chain.StatusReverted:
		return ports.TxReverted, nil
	default:
		return ports.TxTimedOut, nil
	}
}

func (s *Submitter) ReadTally(ctx context.Context, candidateID int64) (uint64, error) {
	if s.client == nil {
		return 0, domainerrors.ErrLedgerUnavailable
	}
	return s.client.ReadTally(ctx, candidateID)
}

var _ ports.VoteSubmitter = (*Submitter)(nil)
var _ ports.TallyReader = (*Submitter)(nil)
