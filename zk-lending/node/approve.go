package node

import (
	"context"
	"errors"
	"fmt"

	"github.com/praneet25101-blip/ShieldedLending/zk-lending/contract"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/types"
)

var ErrNoLoanRequest = errors.New("no open loan request")

const OpApproveLoan = "approve_loan"

type ApprovalRequest struct {
	Secret    types.Secret
	MinScore  types.MinScore
	Recipient types.WalletAddress

	// Proof, checked by Verifier against the registered commitment, is
	// optional. Without it approval rests on the commitment check alone.
	Proof    []byte
	Verifier contract.ThresholdVerifier
}

// Disbursement is the decision to pay out the open loan request. Executing
// the transfer is up to the caller.
type Disbursement struct {
	Recipient      types.WalletAddress
	Amount         types.Amount
	LoanCommitment types.Commitment
	Seq            uint64 // journal head the decision was taken at
}

// ApproveLoan checks the borrower's credit against the open loan request
// and returns the disbursement. The ledger is not modified.
func (n *Node) ApproveLoan(ctx context.Context, req ApprovalRequest) (*Disbursement, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	view := n.ctr.Ledger()
	if view.LoanRequestCommitment.IsZero() {
		return nil, ErrNoLoanRequest
	}
	if err := n.ctr.ProveCreditThreshold(req.Secret, req.MinScore, req.Recipient); err != nil {
		return nil, err
	}
	if req.Verifier != nil {
		if len(req.Proof) == 0 {
			return nil, &types.VerificationError{Op: OpApproveLoan, Reason: "threshold proof required"}
		}
		if err := req.Verifier.VerifyThreshold(view.BorrowerCommitment, req.MinScore, req.Proof); err != nil {
			return nil, fmt.Errorf("%s: %w", OpApproveLoan, err)
		}
	}

	d := &Disbursement{
		Recipient:      req.Recipient,
		Amount:         view.LoanRequestAmount,
		LoanCommitment: view.LoanRequestCommitment,
		Seq:            n.head,
	}
	n.log.Info().Stringer("recipient", d.Recipient).Uint64("amount", uint64(d.Amount)).
		Uint16("min_score", uint16(req.MinScore)).Bool("zk", req.Verifier != nil).Msg("loan approved")
	return d, nil
}
