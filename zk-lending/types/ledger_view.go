package types

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/rlp"
)

// LedgerView is a read-only snapshot of the three ledger slots.
type LedgerView struct {
	BorrowerCommitment    Commitment
	LoanRequestCommitment Commitment
	LoanRequestAmount     Amount
}

// ledgerViewRLP keeps every field at its fixed width; the amount is carried
// as its 8-byte cell rather than as a minimal RLP integer.
type ledgerViewRLP struct {
	BorrowerCommitment    [32]byte
	LoanRequestCommitment [32]byte
	LoanRequestAmount     [AmountWidth]byte
}

// EncodeRLP implements rlp.Encoder.
func (v LedgerView) EncodeRLP(w io.Writer) error {
	var amt [AmountWidth]byte
	copy(amt[:], v.LoanRequestAmount.Bytes())
	return rlp.Encode(w, &ledgerViewRLP{
		BorrowerCommitment:    v.BorrowerCommitment,
		LoanRequestCommitment: v.LoanRequestCommitment,
		LoanRequestAmount:     amt,
	})
}

// DecodeRLP implements rlp.Decoder. Fields of any other width are rejected.
func (v *LedgerView) DecodeRLP(s *rlp.Stream) error {
	var temp ledgerViewRLP
	if err := s.Decode(&temp); err != nil {
		return err
	}
	amt, err := AmountFromBytes(temp.LoanRequestAmount[:])
	if err != nil {
		return err
	}

	v.BorrowerCommitment = temp.BorrowerCommitment
	v.LoanRequestCommitment = temp.LoanRequestCommitment
	v.LoanRequestAmount = amt
	return nil
}

// Bytes returns the RLP encoding of the view. It panics if the encoding fails.
func (v LedgerView) Bytes() []byte {
	b, err := rlp.EncodeToBytes(v)
	if err != nil {
		panic(fmt.Sprintf("failed to RLP encode LedgerView: %v", err))
	}
	return b
}

func DecodeLedgerView(bz []byte) (LedgerView, error) {
	var v LedgerView
	if err := rlp.DecodeBytes(bz, &v); err != nil {
		return LedgerView{}, err
	}
	return v, nil
}

func (v LedgerView) String() string {
	return fmt.Sprintf("borrower_commitment=%s loan_request_commitment=%s loan_request_amount=%d",
		v.BorrowerCommitment.Hex(), v.LoanRequestCommitment.Hex(), v.LoanRequestAmount)
}
